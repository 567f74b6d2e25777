// Package queue defines message payloads exchanged over the message broker
// and the background consumer that turns them into an audit trail.
package queue

// ReservationCreatedEvent is published after a reservation transaction
// commits. It carries enough for downstream consumers to log, notify or
// feed analytics without querying the primary database.
type ReservationCreatedEvent struct {
	ReservationID uint64 `json:"reservation_id"`
	Code          string `json:"reservation_code"`
	CustomerID    uint64 `json:"customer_id"`
	Source        string `json:"source"`
	CreatedBy     string `json:"created_by"`
	TotalAmount   string `json:"total_amount"`
	ItemCount     int    `json:"item_count"`
	CreatedAt     string `json:"created_at"`
}
