// Package repository implements data access over database/sql. Sentinel
// errors defined here let handlers distinguish failure kinds without
// leaking raw driver error text to clients.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when a requested row does not exist (or is
// soft-deleted). Handlers translate it into HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert or update violates a unique
// constraint (barcode, SKU, customer phone/email). Handlers translate it
// into HTTP 400 with a human-readable message instead of the raw store
// error.
var ErrDuplicate = errors.New("duplicate value")

// ErrNotCancellable is returned when a cancel matched no row: the
// reservation does not exist, is past Pending/Confirmed, or belongs to a
// different customer. One error for all three avoids existence leakage.
var ErrNotCancellable = errors.New("reservation not found or cannot be cancelled")

const mysqlDupEntry = 1062

// isDuplicate pattern-matches the MySQL duplicate-entry error number so
// constraint violations can be re-mapped instead of surfacing driver text.
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDupEntry
}
