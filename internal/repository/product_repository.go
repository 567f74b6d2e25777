package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// ProductRepo provides catalog access to the products table.
type ProductRepo struct{ DB *sql.DB }

func NewProductRepo(db *sql.DB) *ProductRepo { return &ProductRepo{DB: db} }

// ProductFilter is the structured filter object for catalog listings.
// Every field is translated to a parameterized predicate; filters are
// never assembled by concatenating client input into SQL text.
type ProductFilter struct {
	CategoryID uint64
	Status     string
	Featured   bool
	Search     string
	Page       int
	Limit      int
}

// predicates renders the filter as a WHERE fragment plus its arguments.
// The active-only predicate is always present.
func (f ProductFilter) predicates() (string, []any) {
	where := []string{"p.is_active = 1"}
	args := []any{}
	if f.CategoryID != 0 {
		where = append(where, "p.category_id = ?")
		args = append(args, f.CategoryID)
	}
	if f.Status != "" {
		where = append(where, "p.status = ?")
		args = append(args, f.Status)
	}
	if f.Featured {
		where = append(where, "p.is_featured = 1")
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		where = append(where, "(LOWER(p.name) LIKE ? OR LOWER(p.description) LIKE ?)")
		needle := "%" + strings.ToLower(s) + "%"
		args = append(args, needle, needle)
	}
	return strings.Join(where, " AND "), args
}

// ProductRow is the catalog listing/detail projection.
type ProductRow struct {
	ID           uint64          `json:"product_id"`
	CategoryID   *uint64         `json:"category_id"`
	CategoryName *string         `json:"category_name"`
	Name         string          `json:"name"`
	Description  *string         `json:"description"`
	Barcode      *string         `json:"barcode"`
	SKU          *string         `json:"sku"`
	Price        decimal.Decimal `json:"price"`
	Stock        uint32          `json:"quantity_in_stock"`
	Status       string          `json:"status"`
	ImageURL     *string         `json:"image_url"`
	IsFeatured   bool            `json:"is_featured"`
}

const productRowCols = `p.product_id, p.category_id, c.name, p.name, p.description, p.barcode,
	p.sku, p.price, p.quantity_in_stock, p.status, p.image_url, p.is_featured`

func scanProductRow(s interface{ Scan(...any) error }) (ProductRow, error) {
	var p ProductRow
	err := s.Scan(&p.ID, &p.CategoryID, &p.CategoryName, &p.Name, &p.Description,
		&p.Barcode, &p.SKU, &p.Price, &p.Stock, &p.Status, &p.ImageURL, &p.IsFeatured)
	return p, err
}

// List returns active products matching the filter plus the total count
// for pagination. Count and data queries share the same predicates.
func (r *ProductRepo) List(ctx context.Context, f ProductFilter) ([]ProductRow, int64, error) {
	cond, args := f.predicates()

	var total int64
	if err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM products p WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	dataArgs := append(append([]any{}, args...), f.Limit, (f.Page-1)*f.Limit)
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+productRowCols+`
		FROM products p
		LEFT JOIN categories c ON c.category_id = p.category_id
		WHERE `+cond+`
		ORDER BY p.name
		LIMIT ? OFFSET ?`, dataArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]ProductRow, 0)
	for rows.Next() {
		p, err := scanProductRow(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

// GetActive fetches one active product by id. Returns ErrNotFound for
// missing or soft-deleted products.
func (r *ProductRepo) GetActive(ctx context.Context, id uint64) (ProductRow, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+productRowCols+`
		FROM products p
		LEFT JOIN categories c ON c.category_id = p.category_id
		WHERE p.product_id = ? AND p.is_active = 1`, id)
	p, err := scanProductRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ProductRow{}, ErrNotFound
	}
	return p, err
}

// NewProduct carries the fields for product creation.
type NewProduct struct {
	CategoryID   uint64
	Name         string
	Description  *string
	Barcode      *string
	SKU          *string
	Price        decimal.Decimal
	CostPrice    decimal.Decimal
	TaxRate      decimal.Decimal
	Stock        uint32
	ReorderLevel uint32
	ImageURL     *string
	IsFeatured   bool
}

// Create inserts a product and returns its id. Barcode/SKU uniqueness
// violations map to ErrDuplicate.
func (r *ProductRepo) Create(ctx context.Context, np NewProduct) (uint64, error) {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO products (category_id, name, description, barcode, sku, price,
			cost_price, tax_rate, quantity_in_stock, reorder_level, image_url, is_featured)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		np.CategoryID, np.Name, np.Description, np.Barcode, np.SKU, np.Price,
		np.CostPrice, np.TaxRate, np.Stock, np.ReorderLevel, np.ImageURL, np.IsFeatured)
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrDuplicate
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	return uint64(id), err
}

// ProductPatch carries the optional fields of a product update.
type ProductPatch struct {
	CategoryID   *uint64
	Name         *string
	Description  *string
	Barcode      *string
	SKU          *string
	Price        *decimal.Decimal
	CostPrice    *decimal.Decimal
	TaxRate      *decimal.Decimal
	Stock        *uint32
	ReorderLevel *uint32
	Status       *string
	ImageURL     *string
	IsFeatured   *bool
}

// Update applies a partial update to an active product.
func (r *ProductRepo) Update(ctx context.Context, id uint64, p ProductPatch) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE products SET
			category_id       = COALESCE(?, category_id),
			name              = COALESCE(?, name),
			description       = COALESCE(?, description),
			barcode           = COALESCE(?, barcode),
			sku               = COALESCE(?, sku),
			price             = COALESCE(?, price),
			cost_price        = COALESCE(?, cost_price),
			tax_rate          = COALESCE(?, tax_rate),
			quantity_in_stock = COALESCE(?, quantity_in_stock),
			reorder_level     = COALESCE(?, reorder_level),
			status            = COALESCE(?, status),
			image_url         = COALESCE(?, image_url),
			is_featured       = COALESCE(?, is_featured),
			updated_at        = NOW()
		WHERE product_id = ? AND is_active = 1`,
		p.CategoryID, p.Name, p.Description, p.Barcode, p.SKU, p.Price, p.CostPrice,
		p.TaxRate, p.Stock, p.ReorderLevel, p.Status, p.ImageURL, p.IsFeatured, id)
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	return ensureProductTouched(ctx, r.DB, res, id)
}

// Deactivate soft-deletes a product.
func (r *ProductRepo) Deactivate(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE products SET is_active = 0, updated_at = NOW() WHERE product_id = ? AND is_active = 1", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// LowStockRow is one entry of the reorder alert listing.
type LowStockRow struct {
	ID           uint64  `json:"product_id"`
	Name         string  `json:"name"`
	Stock        uint32  `json:"quantity_in_stock"`
	ReorderLevel uint32  `json:"reorder_level"`
	CategoryName *string `json:"category_name"`
}

// ListLowStock returns active products at or below their reorder level.
func (r *ProductRepo) ListLowStock(ctx context.Context) ([]LowStockRow, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT p.product_id, p.name, p.quantity_in_stock, p.reorder_level, c.name
		FROM products p
		LEFT JOIN categories c ON c.category_id = p.category_id
		WHERE p.is_active = 1 AND p.quantity_in_stock <= p.reorder_level
		ORDER BY p.quantity_in_stock`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]LowStockRow, 0)
	for rows.Next() {
		var l LowStockRow
		if err := rows.Scan(&l.ID, &l.Name, &l.Stock, &l.ReorderLevel, &l.CategoryName); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// ensureProductTouched distinguishes "row missing" from "update was a
// no-op" after an UPDATE reporting zero affected rows.
func ensureProductTouched(ctx context.Context, db *sql.DB, res sql.Result, id uint64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	var exists uint64
	err = db.QueryRowContext(ctx,
		"SELECT product_id FROM products WHERE product_id=? AND is_active=1", id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
