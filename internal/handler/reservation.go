package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Diyor-ux/star/internal/model"
	"github.com/Diyor-ux/star/internal/queue"
	"github.com/Diyor-ux/star/internal/repository"
	"github.com/Diyor-ux/star/internal/service"
)

// ReservationCreator runs the reservation-creation transaction.
type ReservationCreator interface {
	Create(ctx context.Context, in service.CreateInput) (*service.Reservation, error)
}

// ReservationReader covers the read, status-change and cancel operations.
type ReservationReader interface {
	List(ctx context.Context, f repository.ReservationFilter) ([]repository.ReservationSummary, error)
	GetDetail(ctx context.Context, id, customerID uint64) (*repository.ReservationDetail, error)
	UpdateStatus(ctx context.Context, id uint64, next model.Status, notes *string) (*repository.ReservationRecord, error)
	Cancel(ctx context.Context, id, customerID uint64) (*repository.ReservationRecord, error)
}

// ReservationHandler serves the reservation endpoints. Creation routes sit
// behind OptionalAuth: the source and creator attribution come from the
// resolved principal, never from the request body.
type ReservationHandler struct {
	Engine       ReservationCreator
	Reservations ReservationReader
	// Publish emits the post-commit created event. Best effort: a broker
	// outage never fails a reservation that already committed.
	Publish func(ctx context.Context, ev queue.ReservationCreatedEvent) error
}

type reservationCreateRequest struct {
	CustomerID      uint64                         `json:"customer_id"`
	Items           []service.ReservationItemInput `json:"items"`
	ExpirationHours int                            `json:"expiration_hours"`
	Notes           string                         `json:"notes"`
}

// Create builds a reservation for the authenticated principal. Employees
// reserve on behalf of a walk-in customer (customer_id required in the
// body, source pos); customers reserve for themselves (their own id is
// taken from the session, source online); anonymous callers may reserve
// with an explicit customer_id.
func (h *ReservationHandler) Create(c echo.Context) error {
	var req reservationCreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	in := service.CreateInput{
		CustomerID:      req.CustomerID,
		Items:           req.Items,
		ExpirationHours: req.ExpirationHours,
		Notes:           req.Notes,
		Source:          model.SourceOnline,
		CreatedBy:       "Customer",
	}
	if emp, ok := currentEmployee(c); ok {
		in.Source = model.SourcePOS
		in.CreatedBy = fmt.Sprintf("Employee-%d", emp.ID)
	} else if cus, ok := currentCustomer(c); ok {
		// A customer always reserves for themselves, whatever the body says.
		in.CustomerID = cus.ID
	}

	res, err := h.Engine.Create(c.Request().Context(), in)
	if err != nil {
		var stockErr *service.InsufficientStockError
		switch {
		case errors.Is(err, service.ErrCustomerRequired),
			errors.Is(err, service.ErrNoItems),
			errors.Is(err, service.ErrBadQuantity),
			errors.Is(err, service.ErrProductUnavailable),
			errors.As(err, &stockErr):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		case errors.Is(err, service.ErrDuplicateCode):
			return c.JSON(http.StatusConflict, echo.Map{"error": "reservation code conflict, please retry"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create reservation"})
	}

	if h.Publish != nil {
		ev := queue.ReservationCreatedEvent{
			ReservationID: res.ID,
			Code:          res.Code,
			CustomerID:    res.CustomerID,
			Source:        res.Source,
			CreatedBy:     res.CreatedBy,
			TotalAmount:   res.TotalAmount.String(),
			ItemCount:     len(res.Items),
			CreatedAt:     res.CreatedAt.UTC().Format(time.RFC3339),
		}
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = h.Publish(ctx, ev)
		}()
	}

	items := make([]echo.Map, 0, len(res.Items))
	for _, it := range res.Items {
		items = append(items, echo.Map{
			"product_id": it.ProductID,
			"quantity":   it.Quantity,
			"unit_price": it.UnitPrice,
			"subtotal":   it.Subtotal,
		})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"reservation_id":   res.ID,
		"reservation_code": res.Code,
		"customer_id":      res.CustomerID,
		"status":           res.Status,
		"total_amount":     res.TotalAmount,
		"expiration_date":  res.ExpirationDate.UTC().Format(time.RFC3339),
		"source":           res.Source,
		"items":            items,
	})
}

// List returns reservations for the caller: employees see everything and
// may filter, customers see only their own.
func (h *ReservationHandler) List(c echo.Context) error {
	f := repository.ReservationFilter{
		Status:   c.QueryParam("status"),
		DateFrom: c.QueryParam("date_from"),
		DateTo:   c.QueryParam("date_to"),
	}
	if cus, ok := currentCustomer(c); ok {
		f.CustomerID = cus.ID
	} else if _, ok := currentEmployee(c); !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "access denied: no token provided"})
	}

	out, err := h.Reservations.List(c.Request().Context(), f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list reservations"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": out})
}

// Get returns one reservation with its items. Customer callers are scoped
// to their own rows; another customer's reservation id reads as missing.
func (h *ReservationHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}

	var customerID uint64
	if cus, ok := currentCustomer(c); ok {
		customerID = cus.ID
	} else if _, ok := currentEmployee(c); !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "access denied: no token provided"})
	}

	d, err := h.Reservations.GetDetail(c.Request().Context(), id, customerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load reservation"})
	}
	return c.JSON(http.StatusOK, d)
}

type statusUpdateRequest struct {
	Status string  `json:"status"`
	Notes  *string `json:"notes"`
}

// UpdateStatus moves a reservation through its lifecycle. Employee only;
// an invalid transition reports both endpoints of the attempted move.
func (h *ReservationHandler) UpdateStatus(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	var req statusUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	next, err := model.ParseStatus(req.Status)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	rec, err := h.Reservations.UpdateStatus(c.Request().Context(), id, next, req.Notes)
	if err != nil {
		var trErr *model.InvalidTransitionError
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		case errors.As(err, &trErr):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": trErr.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update reservation status"})
	}
	return c.JSON(http.StatusOK, rec)
}

// Cancel cancels a reservation. Customers can only cancel their own; the
// scoping and the cancellable-status guard both live in one statement, so
// a foreign or already-terminal reservation reads as not found.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}

	var customerID uint64
	if cus, ok := currentCustomer(c); ok {
		customerID = cus.ID
	} else if _, ok := currentEmployee(c); !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "access denied: no token provided"})
	}

	rec, err := h.Reservations.Cancel(c.Request().Context(), id, customerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotCancellable) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found or cannot be cancelled"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to cancel reservation"})
	}
	return c.JSON(http.StatusOK, rec)
}
