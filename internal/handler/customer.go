package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Diyor-ux/star/internal/repository"
)

// CustomerDirectory is the employee-facing customer listing.
type CustomerDirectory interface {
	List(ctx context.Context, search string, page, limit int) ([]repository.CustomerRow, int64, error)
}

// CustomerHandler serves the employee-facing customer directory.
type CustomerHandler struct {
	Customers CustomerDirectory
}

// List returns customers with optional search over name, phone and email.
func (h *CustomerHandler) List(c echo.Context) error {
	page, limit := parsePageLimit(c)
	out, total, err := h.Customers.List(c.Request().Context(), c.QueryParam("search"), page, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list customers"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"data":       out,
		"pagination": newPagination(page, limit, total),
	})
}
