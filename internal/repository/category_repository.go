package repository

import (
	"context"
	"database/sql"
	"errors"
)

// CategoryRepo provides CRUD for product categories. Categories are never
// hard-deleted; is_active=0 hides them from the public listing while
// products keep their reference.
type CategoryRepo struct{ DB *sql.DB }

func NewCategoryRepo(db *sql.DB) *CategoryRepo { return &CategoryRepo{DB: db} }

// CategoryRow is the public listing projection. ProductCount counts only
// active products in the category.
type CategoryRow struct {
	ID           uint64  `json:"category_id"`
	Name         string  `json:"name"`
	Description  *string `json:"description"`
	ImageURL     *string `json:"image_url"`
	DisplayOrder uint32  `json:"display_order"`
	ProductCount int64   `json:"product_count"`
}

// ListActive returns all active categories with their active-product
// counts, ordered for display.
func (r *CategoryRepo) ListActive(ctx context.Context) ([]CategoryRow, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT c.category_id, c.name, c.description, c.image_url, c.display_order,
		       COUNT(p.product_id)
		FROM categories c
		LEFT JOIN products p ON p.category_id = c.category_id AND p.is_active = 1
		WHERE c.is_active = 1
		GROUP BY c.category_id
		ORDER BY c.display_order, c.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]CategoryRow, 0)
	for rows.Next() {
		var c CategoryRow
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.ImageURL,
			&c.DisplayOrder, &c.ProductCount); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Create inserts a category and returns its id.
func (r *CategoryRepo) Create(ctx context.Context, name string, description, imageURL *string, displayOrder uint32) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO categories (name, description, image_url, display_order) VALUES (?,?,?,?)",
		name, description, imageURL, displayOrder)
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrDuplicate
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	return uint64(id), err
}

// CategoryPatch carries the optional fields of a category update; nil
// fields keep their current value (COALESCE semantics).
type CategoryPatch struct {
	Name         *string
	Description  *string
	ImageURL     *string
	DisplayOrder *uint32
	IsActive     *bool
}

// Update applies a partial update and returns ErrNotFound when the
// category does not exist.
func (r *CategoryRepo) Update(ctx context.Context, id uint64, p CategoryPatch) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE categories SET
			name          = COALESCE(?, name),
			description   = COALESCE(?, description),
			image_url     = COALESCE(?, image_url),
			display_order = COALESCE(?, display_order),
			is_active     = COALESCE(?, is_active),
			updated_at    = NOW()
		WHERE category_id = ?`,
		p.Name, p.Description, p.ImageURL, p.DisplayOrder, p.IsActive, id)
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// MySQL reports zero affected rows for no-op updates too; confirm
		// existence before deciding this is a 404.
		var exists uint64
		if err := r.DB.QueryRowContext(ctx,
			"SELECT category_id FROM categories WHERE category_id=?", id).Scan(&exists); errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		} else if err != nil {
			return err
		}
	}
	return nil
}
