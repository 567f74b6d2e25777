package model

import "time"

// Employee represents a row in the `employees` table. Employees log in to
// the POS side of the system; the IsAdmin flag gates the admin-only
// endpoints (employee management, API key provisioning).
//
// Fields:
//  ID           – primary key identifier.
//  FirstName    – given name.
//  LastName     – family name.
//  Email        – unique login email.
//  PasswordHash – bcrypt hashed password.
//  Position     – free-form job title shown in the POS UI.
//  IsAdmin      – whether the employee may perform admin operations.
//  IsActive     – whether the account may authenticate.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type Employee struct {
	ID           uint64    // employees.employee_id
	FirstName    string    // employees.first_name
	LastName     string    // employees.last_name
	Email        string    // employees.email
	PasswordHash string    // employees.password_hash
	Position     string    // employees.position
	IsAdmin      bool      // employees.is_admin
	IsActive     bool      // employees.is_active
	CreatedAt    time.Time // employees.created_at
	UpdatedAt    time.Time // employees.updated_at
}
