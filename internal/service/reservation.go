// Package service holds the reservation transaction engine: the one piece
// of multi-step protocol logic in the system. Everything the engine reads
// and writes happens inside a single database transaction supplied by its
// store, so a reservation and its items either exist together or not at all.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Diyor-ux/star/internal/model"
	"github.com/Diyor-ux/star/internal/utils"
)

// DefaultExpirationHours is applied when the caller does not specify how
// long a reservation should be held.
const DefaultExpirationHours = 24

// ReservationItemInput is one requested line: which product, how many.
type ReservationItemInput struct {
	ProductID uint64 `json:"product_id"`
	Quantity  uint32 `json:"quantity"`
}

// CreateInput carries everything the engine needs to create a reservation.
// Source and CreatedBy are decided by the HTTP layer from the authenticated
// principal, never taken from the request body.
type CreateInput struct {
	CustomerID      uint64
	Items           []ReservationItemInput
	ExpirationHours int
	Notes           string
	Source          string
	CreatedBy       string
}

// ProductSnapshot is the in-transaction view of a product used for the
// availability check and price capture.
type ProductSnapshot struct {
	ID    uint64
	Name  string
	Price decimal.Decimal
	Stock uint32
}

// ReservationRow is the header handed to the store for insertion; the store
// fills ID and CreatedAt from the committed row.
type ReservationRow struct {
	ID             uint64
	Code           string
	CustomerID     uint64
	Status         model.Status
	TotalAmount    decimal.Decimal
	ExpirationDate time.Time
	Notes          string
	Source         string
	CreatedBy      string
	CreatedAt      time.Time
}

// ItemRow is one reservation line ready for insertion. UnitPrice and
// Subtotal are snapshots computed inside the transaction.
type ItemRow struct {
	ReservationID uint64
	ProductID     uint64
	Quantity      uint32
	UnitPrice     decimal.Decimal
	Subtotal      decimal.Decimal
}

// Reservation is the engine's successful result: the committed header plus
// its lines.
type Reservation struct {
	ReservationRow
	Items []ItemRow
}

// ReservationTx is the set of store operations available inside one
// reservation-creation transaction. Implementations must run every call on
// the same underlying transaction so reads and writes share one view.
type ReservationTx interface {
	// ActiveProduct loads the current snapshot of an active product.
	// Missing or inactive products return ErrProductUnavailable.
	ActiveProduct(ctx context.Context, productID uint64) (ProductSnapshot, error)
	// InsertReservation writes the header and fills row.ID / row.CreatedAt.
	// A reservation-code collision returns ErrDuplicateCode.
	InsertReservation(ctx context.Context, row *ReservationRow) error
	// InsertItems writes all line rows in one statement.
	InsertItems(ctx context.Context, items []ItemRow) error
}

// ReservationStore opens the atomic unit the engine runs in. If fn returns
// an error the transaction is rolled back and nothing is visible to any
// other reader; otherwise it is committed.
type ReservationStore interface {
	RunInTx(ctx context.Context, fn func(tx ReservationTx) error) error
}

// Validation and business-rule failures raised by Create. Handlers map
// these to 400-class responses; anything else is a server error.
var (
	ErrNoItems            = errors.New("at least one item is required")
	ErrBadQuantity        = errors.New("item quantity must be greater than zero")
	ErrCustomerRequired   = errors.New("customer id is required")
	ErrProductUnavailable = errors.New("product not found")
	// ErrDuplicateCode reports a reservation-code collision. The whole
	// transaction has been rolled back; the operation is retryable as-is
	// because a retry generates a fresh code.
	ErrDuplicateCode = errors.New("reservation code already exists")
)

// ProductNotFoundError names the offending product of an ErrProductUnavailable.
type ProductNotFoundError struct {
	ProductID uint64
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product with ID %d not found", e.ProductID)
}

func (e *ProductNotFoundError) Unwrap() error { return ErrProductUnavailable }

// InsufficientStockError reports a line whose requested quantity exceeds
// the stock visible inside the transaction.
type InsufficientStockError struct {
	ProductID uint64
	Name      string
	Available uint32
	Requested uint32
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s. Available: %d, Requested: %d",
		e.Name, e.Available, e.Requested)
}

// Engine creates reservations. It validates items against current stock,
// computes the total from in-transaction price snapshots, allocates a
// reservation code and commits header plus items atomically. It performs
// no stock decrement: two concurrent reservations against the same
// low-stock product can both pass the check and both succeed. Stock is
// only consumed when a reservation is fulfilled at the counter.
type Engine struct {
	store ReservationStore
	now   func() time.Time
}

// NewEngine returns an Engine bound to the given store.
func NewEngine(store ReservationStore) *Engine {
	return &Engine{store: store, now: func() time.Time { return time.Now().UTC() }}
}

// Create runs the reservation-creation transaction. On any failure the
// transaction is rolled back and no reservation or item row survives.
func (e *Engine) Create(ctx context.Context, in CreateInput) (*Reservation, error) {
	if in.CustomerID == 0 {
		return nil, ErrCustomerRequired
	}
	if len(in.Items) == 0 {
		return nil, ErrNoItems
	}
	for _, it := range in.Items {
		if it.Quantity == 0 {
			return nil, ErrBadQuantity
		}
	}
	hours := in.ExpirationHours
	if hours <= 0 {
		hours = DefaultExpirationHours
	}

	now := e.now()
	code, err := utils.NewReservationCode(now)
	if err != nil {
		return nil, err
	}

	var res *Reservation
	err = e.store.RunInTx(ctx, func(tx ReservationTx) error {
		total := decimal.Zero
		items := make([]ItemRow, 0, len(in.Items))
		for _, it := range in.Items {
			snap, err := tx.ActiveProduct(ctx, it.ProductID)
			if err != nil {
				if errors.Is(err, ErrProductUnavailable) {
					return &ProductNotFoundError{ProductID: it.ProductID}
				}
				return err
			}
			if snap.Stock < it.Quantity {
				return &InsufficientStockError{
					ProductID: snap.ID,
					Name:      snap.Name,
					Available: snap.Stock,
					Requested: it.Quantity,
				}
			}
			subtotal := snap.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
			total = total.Add(subtotal)
			items = append(items, ItemRow{
				ProductID: it.ProductID,
				Quantity:  it.Quantity,
				UnitPrice: snap.Price,
				Subtotal:  subtotal,
			})
		}

		row := ReservationRow{
			Code:           code,
			CustomerID:     in.CustomerID,
			Status:         model.StatusPending,
			TotalAmount:    total,
			ExpirationDate: now.Add(time.Duration(hours) * time.Hour),
			Notes:          in.Notes,
			Source:         in.Source,
			CreatedBy:      in.CreatedBy,
		}
		if err := tx.InsertReservation(ctx, &row); err != nil {
			return err
		}
		for i := range items {
			items[i].ReservationID = row.ID
		}
		if err := tx.InsertItems(ctx, items); err != nil {
			return err
		}
		res = &Reservation{ReservationRow: row, Items: items}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
