package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/Diyor-ux/star/internal/model"
)

// EmployeeRepo provides read access to the employees table. Employee rows
// are provisioned out of band (seed data / admin tooling), so the API only
// ever authenticates and resolves them.
type EmployeeRepo struct{ DB *sql.DB }

func NewEmployeeRepo(db *sql.DB) *EmployeeRepo { return &EmployeeRepo{DB: db} }

const employeeCols = `employee_id, first_name, last_name, email, password_hash, position, is_admin, is_active, created_at, updated_at`

// GetByEmail fetches an employee by normalized email for login. Returns
// ErrNotFound when no such employee exists.
func (r *EmployeeRepo) GetByEmail(ctx context.Context, email string) (model.Employee, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+employeeCols+" FROM employees WHERE email=? LIMIT 1", email)
	return scanEmployee(row)
}

// ActiveEmployee fetches an employee by id, requiring is_active. It backs
// the employee access guard: a deactivated account fails resolution even
// with a still-valid token.
func (r *EmployeeRepo) ActiveEmployee(ctx context.Context, id uint64) (model.Employee, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+employeeCols+" FROM employees WHERE employee_id=? AND is_active=1 LIMIT 1", id)
	return scanEmployee(row)
}

func scanEmployee(row *sql.Row) (model.Employee, error) {
	var e model.Employee
	err := row.Scan(&e.ID, &e.FirstName, &e.LastName, &e.Email, &e.PasswordHash,
		&e.Position, &e.IsAdmin, &e.IsActive, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Employee{}, ErrNotFound
	}
	return e, err
}
