package model

import "time"

// Customer mirrors the `customers` table. Customers are the reservation-side
// principals; they authenticate through a linked AppUser row and may only
// operate on their own reservations.
type Customer struct {
	ID           uint64     // customers.customer_id
	FirstName    string     // customers.first_name
	LastName     string     // customers.last_name
	Phone        string     // customers.phone (unique)
	Email        string     // customers.email (unique)
	PasswordHash string     // customers.password_hash
	IsActive     bool       // customers.is_active
	LastLogin    *time.Time // customers.last_login (nullable)
	CreatedAt    time.Time  // customers.created_at
	UpdatedAt    time.Time  // customers.updated_at
}

// AppUser mirrors the `app_users` table. An app user is the login identity
// for a customer; the pair is always created together in one transaction so
// a customer without a login (or the reverse) can never exist.
type AppUser struct {
	ID           uint64    // app_users.user_id
	CustomerID   uint64    // app_users.customer_id
	Username     string    // app_users.username
	Email        string    // app_users.email
	PasswordHash string    // app_users.password_hash
	CreatedAt    time.Time // app_users.created_at
}
