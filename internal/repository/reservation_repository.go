package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Diyor-ux/star/internal/model"
	"github.com/Diyor-ux/star/internal/service"
)

// ReservationRepo persists reservations and their line items. It implements
// service.ReservationStore so the transaction engine can run its whole
// algorithm inside one database transaction, and additionally exposes the
// read, status-update and cancel operations used by the HTTP layer.
type ReservationRepo struct{ DB *sql.DB }

func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{DB: db} }

// RunInTx opens a transaction, runs fn against it and commits; any error
// from fn (or the commit) rolls everything back, so no partial reservation
// is ever visible to another reader.
func (r *ReservationRepo) RunInTx(ctx context.Context, fn func(tx service.ReservationTx) error) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(&reservationTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// reservationTx adapts *sql.Tx to the engine's store contract. All reads
// and writes go through the same transaction handle.
type reservationTx struct{ tx *sql.Tx }

func (t *reservationTx) ActiveProduct(ctx context.Context, productID uint64) (service.ProductSnapshot, error) {
	var snap service.ProductSnapshot
	err := t.tx.QueryRowContext(ctx,
		"SELECT product_id, name, price, quantity_in_stock FROM products WHERE product_id=? AND is_active=1",
		productID).Scan(&snap.ID, &snap.Name, &snap.Price, &snap.Stock)
	if errors.Is(err, sql.ErrNoRows) {
		return service.ProductSnapshot{}, service.ErrProductUnavailable
	}
	return snap, err
}

func (t *reservationTx) InsertReservation(ctx context.Context, row *service.ReservationRow) error {
	var notes any
	if row.Notes != "" {
		notes = row.Notes
	}
	res, err := t.tx.ExecContext(ctx, `
		INSERT INTO reservations (customer_id, reservation_code, status, expiration_date,
			total_amount, notes, source, created_by)
		VALUES (?,?,?,?,?,?,?,?)`,
		row.CustomerID, row.Code, row.Status, row.ExpirationDate,
		row.TotalAmount, notes, row.Source, row.CreatedBy)
	if err != nil {
		if isDuplicate(err) {
			return service.ErrDuplicateCode
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	row.ID = uint64(id)
	return t.tx.QueryRowContext(ctx,
		"SELECT created_at FROM reservations WHERE reservation_id=?", row.ID).Scan(&row.CreatedAt)
}

func (t *reservationTx) InsertItems(ctx context.Context, items []service.ItemRow) error {
	if len(items) == 0 {
		return nil
	}
	query := "INSERT INTO reservation_items (reservation_id, product_id, quantity, unit_price, subtotal) VALUES "
	args := make([]any, 0, len(items)*5)
	for i, it := range items {
		if i > 0 {
			query += ","
		}
		query += "(?,?,?,?,?)"
		args = append(args, it.ReservationID, it.ProductID, it.Quantity, it.UnitPrice, it.Subtotal)
	}
	_, err := t.tx.ExecContext(ctx, query, args...)
	return err
}

// ReservationFilter narrows the employee-facing listing. Zero values mean
// "no predicate"; CustomerID also scopes the listing for customer callers.
type ReservationFilter struct {
	Status     string
	DateFrom   string
	DateTo     string
	CustomerID uint64
}

// ReservationSummary is one row of the reservation listing: the header
// joined with the customer and aggregated over its items.
type ReservationSummary struct {
	ID              uint64          `json:"reservation_id"`
	Code            string          `json:"reservation_code"`
	CustomerID      uint64          `json:"customer_id"`
	CustomerName    string          `json:"customer_name"`
	CustomerPhone   string          `json:"customer_phone"`
	ReservationDate string          `json:"reservation_date"`
	ExpirationDate  string          `json:"expiration_date"`
	Status          model.Status    `json:"status"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	Source          string          `json:"source"`
	Notes           *string         `json:"notes"`
	TotalItems      int64           `json:"total_items"`
	TotalQuantity   int64           `json:"total_quantity"`
}

// List returns reservation summaries newest first. Predicates are
// parameterized; filter fields are never concatenated into the SQL text.
func (r *ReservationRepo) List(ctx context.Context, f ReservationFilter) ([]ReservationSummary, error) {
	where := []string{"1=1"}
	args := []any{}
	if f.CustomerID != 0 {
		where = append(where, "r.customer_id = ?")
		args = append(args, f.CustomerID)
	}
	if f.Status != "" {
		where = append(where, "r.status = ?")
		args = append(args, f.Status)
	}
	if f.DateFrom != "" {
		where = append(where, "r.reservation_date >= ?")
		args = append(args, f.DateFrom)
	}
	if f.DateTo != "" {
		where = append(where, "r.reservation_date <= ?")
		args = append(args, f.DateTo)
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT r.reservation_id, r.reservation_code, r.customer_id,
		       CONCAT(c.first_name, ' ', c.last_name), c.phone,
		       r.reservation_date, r.expiration_date, r.status, r.total_amount,
		       r.source, r.notes,
		       COUNT(ri.item_id), COALESCE(SUM(ri.quantity), 0)
		FROM reservations r
		JOIN customers c ON c.customer_id = r.customer_id
		LEFT JOIN reservation_items ri ON ri.reservation_id = r.reservation_id
		WHERE `+strings.Join(where, " AND ")+`
		GROUP BY r.reservation_id, c.customer_id, c.first_name, c.last_name, c.phone
		ORDER BY r.reservation_date DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ReservationSummary, 0)
	for rows.Next() {
		var (
			s                 ReservationSummary
			reservedAt, expAt time.Time
		)
		if err := rows.Scan(&s.ID, &s.Code, &s.CustomerID, &s.CustomerName, &s.CustomerPhone,
			&reservedAt, &expAt, &s.Status, &s.TotalAmount, &s.Source, &s.Notes,
			&s.TotalItems, &s.TotalQuantity); err != nil {
			return nil, err
		}
		s.ReservationDate = reservedAt.UTC().Format(time.RFC3339)
		s.ExpirationDate = expAt.UTC().Format(time.RFC3339)
		out = append(out, s)
	}
	return out, rows.Err()
}

// ReservationItemDetail is one line of a reservation detail response,
// joined with the current product for display.
type ReservationItemDetail struct {
	ID          uint64          `json:"item_id"`
	ProductID   uint64          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    uint32          `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// ReservationDetail is a full reservation: header, customer contact and
// all line items.
type ReservationDetail struct {
	ReservationSummary
	CustomerEmail string                  `json:"customer_email"`
	CreatedBy     string                  `json:"created_by"`
	Items         []ReservationItemDetail `json:"items"`
}

// GetDetail loads one reservation with its items. When customerID is
// non-zero the lookup is additionally scoped to that customer, so another
// customer's reservation id yields ErrNotFound rather than revealing its
// existence.
func (r *ReservationRepo) GetDetail(ctx context.Context, id, customerID uint64) (*ReservationDetail, error) {
	q := `
		SELECT r.reservation_id, r.reservation_code, r.customer_id,
		       CONCAT(c.first_name, ' ', c.last_name), c.phone, c.email,
		       r.reservation_date, r.expiration_date, r.status, r.total_amount,
		       r.source, r.notes, r.created_by
		FROM reservations r
		JOIN customers c ON c.customer_id = r.customer_id
		WHERE r.reservation_id = ?`
	args := []any{id}
	if customerID != 0 {
		q += " AND r.customer_id = ?"
		args = append(args, customerID)
	}

	var (
		d                 ReservationDetail
		reservedAt, expAt time.Time
	)
	err := r.DB.QueryRowContext(ctx, q, args...).Scan(
		&d.ID, &d.Code, &d.CustomerID, &d.CustomerName, &d.CustomerPhone, &d.CustomerEmail,
		&reservedAt, &expAt, &d.Status, &d.TotalAmount, &d.Source, &d.Notes, &d.CreatedBy)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	d.ReservationDate = reservedAt.UTC().Format(time.RFC3339)
	d.ExpirationDate = expAt.UTC().Format(time.RFC3339)

	rows, err := r.DB.QueryContext(ctx, `
		SELECT ri.item_id, ri.product_id, p.name, ri.quantity, ri.unit_price, ri.subtotal
		FROM reservation_items ri
		JOIN products p ON p.product_id = ri.product_id
		WHERE ri.reservation_id = ?
		ORDER BY ri.item_id`, d.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	d.Items = make([]ReservationItemDetail, 0)
	for rows.Next() {
		var it ReservationItemDetail
		if err := rows.Scan(&it.ID, &it.ProductID, &it.ProductName, &it.Quantity,
			&it.UnitPrice, &it.Subtotal); err != nil {
			return nil, err
		}
		d.Items = append(d.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	d.TotalItems = int64(len(d.Items))
	for _, it := range d.Items {
		d.TotalQuantity += int64(it.Quantity)
	}
	return &d, nil
}

// ReservationRecord mirrors a reservations row for status-change responses.
type ReservationRecord struct {
	ID             uint64          `json:"reservation_id"`
	Code           string          `json:"reservation_code"`
	CustomerID     uint64          `json:"customer_id"`
	Status         model.Status    `json:"status"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	ExpirationDate string          `json:"expiration_date"`
	Source         string          `json:"source"`
	Notes          *string         `json:"notes"`
	CreatedBy      string          `json:"created_by"`
}

func (r *ReservationRepo) getRecordTx(ctx context.Context, q interface {
	QueryRowContext(context.Context, string, ...any) *sql.Row
}, id uint64) (*ReservationRecord, error) {
	var (
		rec   ReservationRecord
		expAt time.Time
	)
	err := q.QueryRowContext(ctx, `
		SELECT reservation_id, reservation_code, customer_id, status, total_amount,
		       expiration_date, source, notes, created_by
		FROM reservations WHERE reservation_id = ?`, id).Scan(
		&rec.ID, &rec.Code, &rec.CustomerID, &rec.Status, &rec.TotalAmount,
		&expAt, &rec.Source, &rec.Notes, &rec.CreatedBy)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	rec.ExpirationDate = expAt.UTC().Format(time.RFC3339)
	return &rec, nil
}

// UpdateStatus moves a reservation to next, enforcing the transition graph
// against the current status read under a row lock in the same
// transaction. Invalid moves return *model.InvalidTransitionError; notes,
// when non-nil, replace the stored notes.
func (r *ReservationRepo) UpdateStatus(ctx context.Context, id uint64, next model.Status, notes *string) (*ReservationRecord, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var current model.Status
	err = tx.QueryRowContext(ctx,
		"SELECT status FROM reservations WHERE reservation_id=? FOR UPDATE", id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if !current.CanTransitionTo(next) {
		return nil, &model.InvalidTransitionError{From: current, To: next}
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE reservations SET status=?, notes=COALESCE(?, notes), updated_at=NOW() WHERE reservation_id=?",
		next, notes, id); err != nil {
		return nil, err
	}
	rec, err := r.getRecordTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return rec, nil
}

// Cancel marks a reservation Cancelled. The guard lives in the statement
// itself: only Pending/Confirmed rows match, and for customer callers the
// row must also belong to the authenticated customer (customerID from the
// request context, never the body). Zero affected rows collapse to
// ErrNotCancellable so a foreign reservation is indistinguishable from a
// missing one.
func (r *ReservationRepo) Cancel(ctx context.Context, id, customerID uint64) (*ReservationRecord, error) {
	q := "UPDATE reservations SET status=?, updated_at=NOW() WHERE reservation_id=? AND status IN (?,?)"
	args := []any{model.StatusCancelled, id, model.StatusPending, model.StatusConfirmed}
	if customerID != 0 {
		q += " AND customer_id=?"
		args = append(args, customerID)
	}
	res, err := r.DB.ExecContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrNotCancellable
	}
	return r.getRecordTx(ctx, r.DB, id)
}
