package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Status enumerates the reservation lifecycle states.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusConfirmed Status = "Confirmed"
	StatusCompleted Status = "Completed"
	StatusCancelled Status = "Cancelled"
	StatusExpired   Status = "Expired"
)

// validNext encodes the one-directional transition graph. Completed,
// Cancelled and Expired are terminal; Cancelled is reachable only from
// Pending and Confirmed.
var validNext = map[Status]map[Status]bool{
	StatusPending:   {StatusConfirmed: true, StatusCancelled: true, StatusExpired: true},
	StatusConfirmed: {StatusCompleted: true, StatusCancelled: true, StatusExpired: true},
	StatusCompleted: {},
	StatusCancelled: {},
	StatusExpired:   {},
}

// CanTransitionTo reports whether moving from s to next is allowed.
func (s Status) CanTransitionTo(next Status) bool {
	return validNext[s][next]
}

// ParseStatus validates a client-supplied status value.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if _, known := validNext[s]; !known {
		return "", fmt.Errorf("invalid status %q: must be one of Pending, Confirmed, Completed, Cancelled, Expired", raw)
	}
	return s, nil
}

// InvalidTransitionError reports a status update that the transition graph
// forbids, e.g. Completed back to Pending.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot change reservation status from %s to %s", e.From, e.To)
}

// Reservation mirrors the `reservations` table. The header and its items
// are created in one transaction and never partially exist; after creation
// only Status and Notes may change.
type Reservation struct {
	ID              uint64          // reservations.reservation_id
	Code            string          // reservations.reservation_code (unique)
	CustomerID      uint64          // reservations.customer_id
	Status          Status          // reservations.status
	TotalAmount     decimal.Decimal // reservations.total_amount
	ReservationDate time.Time       // reservations.reservation_date
	ExpirationDate  time.Time       // reservations.expiration_date
	Source          string          // reservations.source ("POS" | "Online")
	Notes           *string         // reservations.notes (nullable)
	CreatedBy       string          // reservations.created_by
	CreatedAt       time.Time       // reservations.created_at
	UpdatedAt       time.Time       // reservations.updated_at
}

// ReservationItem mirrors the `reservation_items` table. UnitPrice is the
// product price snapshotted at creation time and is immutable; later
// catalog price changes never touch existing reservations.
type ReservationItem struct {
	ID            uint64          // reservation_items.item_id
	ReservationID uint64          // reservation_items.reservation_id
	ProductID     uint64          // reservation_items.product_id
	Quantity      uint32          // reservation_items.quantity
	UnitPrice     decimal.Decimal // reservation_items.unit_price
	Subtotal      decimal.Decimal // reservation_items.subtotal
}

// Reservation sources and creator tags.
const (
	SourcePOS    = "POS"
	SourceOnline = "Online"
)
