package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/Diyor-ux/star/internal/model"
)

// CustomerRepo manages customers and their linked app_users login rows.
type CustomerRepo struct{ DB *sql.DB }

func NewCustomerRepo(db *sql.DB) *CustomerRepo { return &CustomerRepo{DB: db} }

// NewCustomer carries the fields needed to register a customer. The
// password arrives already hashed; repositories never see plaintext.
type NewCustomer struct {
	FirstName    string
	LastName     string
	Phone        string
	Email        string
	PasswordHash string
}

// CustomerLogin is the app_users ⋈ customers projection used by customer
// login: the credential hash lives on the app user, the profile and active
// flag on the customer.
type CustomerLogin struct {
	UserID       uint64
	PasswordHash string
	Customer     model.Customer
}

// ExistsByPhoneOrEmail reports whether any customer already uses the given
// phone or email. Registration pre-checks this to return a friendly 400
// before relying on the unique constraints.
func (r *CustomerRepo) ExistsByPhoneOrEmail(ctx context.Context, phone, email string) (bool, error) {
	var id uint64
	err := r.DB.QueryRowContext(ctx,
		"SELECT customer_id FROM customers WHERE phone=? OR email=? LIMIT 1",
		phone, email).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Register inserts a customer and its linked app_user row inside one
// transaction; the pair either exists together or not at all. A race on
// the unique phone/email constraints rolls back and returns ErrDuplicate.
// It returns the new customer id and app-user id.
func (r *CustomerRepo) Register(ctx context.Context, nc NewCustomer) (customerID, userID uint64, err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO customers (first_name, last_name, phone, email, password_hash) VALUES (?,?,?,?,?)",
		nc.FirstName, nc.LastName, nc.Phone, nc.Email, nc.PasswordHash)
	if err != nil {
		if isDuplicate(err) {
			return 0, 0, ErrDuplicate
		}
		return 0, 0, err
	}
	cid, err := res.LastInsertId()
	if err != nil {
		return 0, 0, err
	}

	// The app user is the login identity; username defaults to the email.
	res, err = tx.ExecContext(ctx,
		"INSERT INTO app_users (customer_id, username, email, password_hash) VALUES (?,?,?,?)",
		cid, nc.Email, nc.Email, nc.PasswordHash)
	if err != nil {
		if isDuplicate(err) {
			return 0, 0, ErrDuplicate
		}
		return 0, 0, err
	}
	uid, err := res.LastInsertId()
	if err != nil {
		return 0, 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, err
	}
	committed = true
	return uint64(cid), uint64(uid), nil
}

const customerCols = `c.customer_id, c.first_name, c.last_name, c.phone, c.email, c.password_hash, c.is_active, c.last_login, c.created_at, c.updated_at`

// GetForLogin resolves a login email to the app user and its customer.
// Returns ErrNotFound when no app user matches.
func (r *CustomerRepo) GetForLogin(ctx context.Context, email string) (CustomerLogin, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var (
		cl        CustomerLogin
		lastLogin sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx,
		`SELECT au.user_id, au.password_hash, `+customerCols+`
		 FROM app_users au
		 JOIN customers c ON c.customer_id = au.customer_id
		 WHERE au.email=? LIMIT 1`, email).Scan(
		&cl.UserID, &cl.PasswordHash,
		&cl.Customer.ID, &cl.Customer.FirstName, &cl.Customer.LastName,
		&cl.Customer.Phone, &cl.Customer.Email, &cl.Customer.PasswordHash,
		&cl.Customer.IsActive, &lastLogin, &cl.Customer.CreatedAt, &cl.Customer.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return CustomerLogin{}, ErrNotFound
	}
	if err != nil {
		return CustomerLogin{}, err
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		cl.Customer.LastLogin = &t
	}
	return cl, nil
}

// ActiveCustomerByUser resolves an app-user id to its active customer.
// It backs the customer access guard.
func (r *CustomerRepo) ActiveCustomerByUser(ctx context.Context, userID uint64) (model.Customer, error) {
	var (
		c         model.Customer
		lastLogin sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx,
		`SELECT `+customerCols+`
		 FROM customers c
		 JOIN app_users au ON au.customer_id = c.customer_id
		 WHERE au.user_id=? AND c.is_active=1 LIMIT 1`, userID).Scan(
		&c.ID, &c.FirstName, &c.LastName, &c.Phone, &c.Email, &c.PasswordHash,
		&c.IsActive, &lastLogin, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Customer{}, ErrNotFound
	}
	if err != nil {
		return model.Customer{}, err
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		c.LastLogin = &t
	}
	return c, nil
}

// TouchLastLogin records a successful customer login.
func (r *CustomerRepo) TouchLastLogin(ctx context.Context, customerID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE customers SET last_login=NOW() WHERE customer_id=?", customerID)
	return err
}

// CustomerRow is the employee-facing listing projection.
type CustomerRow struct {
	ID        uint64  `json:"customer_id"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Phone     string  `json:"phone"`
	Email     string  `json:"email"`
	IsActive  bool    `json:"is_active"`
	LastLogin *string `json:"last_login,omitempty"`
	CreatedAt string  `json:"created_at"`
}

// List returns customers for the employee-facing directory with optional
// name/phone/email search and page/limit pagination. The total count uses
// the same predicates as the data query.
func (r *CustomerRepo) List(ctx context.Context, search string, page, limit int) ([]CustomerRow, int64, error) {
	where := "1=1"
	args := []any{}
	if s := strings.TrimSpace(search); s != "" {
		where += " AND (LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR phone LIKE ? OR LOWER(email) LIKE ?)"
		needle := "%" + strings.ToLower(s) + "%"
		args = append(args, needle, needle, "%"+s+"%", needle)
	}

	var total int64
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM customers WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	dataArgs := append(append([]any{}, args...), limit, (page-1)*limit)
	rows, err := r.DB.QueryContext(ctx,
		`SELECT customer_id, first_name, last_name, phone, email, is_active, last_login, created_at
		 FROM customers WHERE `+where+`
		 ORDER BY created_at DESC LIMIT ? OFFSET ?`, dataArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]CustomerRow, 0)
	for rows.Next() {
		var (
			c         CustomerRow
			lastLogin sql.NullTime
			createdAt sql.NullTime
		)
		if err := rows.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Phone, &c.Email,
			&c.IsActive, &lastLogin, &createdAt); err != nil {
			return nil, 0, err
		}
		if lastLogin.Valid {
			s := lastLogin.Time.UTC().Format(time.RFC3339)
			c.LastLogin = &s
		}
		if createdAt.Valid {
			c.CreatedAt = createdAt.Time.UTC().Format(time.RFC3339)
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}
