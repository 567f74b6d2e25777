// Package handler contains the HTTP handlers. Handlers bind and validate
// request input, call into repositories or the reservation engine, and map
// domain errors onto the response contract: every failure body is
// {"error": "..."} with the status carrying the class of failure.
package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Diyor-ux/star/internal/middleware"
	"github.com/Diyor-ux/star/internal/model"
)

// currentEmployee returns the employee attached by the access guard, if any.
func currentEmployee(c echo.Context) (model.Employee, bool) {
	emp, ok := c.Get(middleware.CtxEmployee).(model.Employee)
	return emp, ok
}

// currentCustomer returns the customer attached by the access guard, if any.
func currentCustomer(c echo.Context) (model.Customer, bool) {
	cus, ok := c.Get(middleware.CtxCustomer).(model.Customer)
	return cus, ok
}

// parseID parses a positive numeric path parameter.
func parseID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// pagination is the standard paging envelope of list responses.
type pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

func newPagination(page, limit int, total int64) pagination {
	pages := total / int64(limit)
	if total%int64(limit) != 0 {
		pages++
	}
	return pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}

// parsePageLimit reads page/limit query parameters with defaults and caps.
func parsePageLimit(c echo.Context) (page, limit int) {
	page, limit = 1, 20
	if v, err := strconv.Atoi(c.QueryParam("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil && v > 0 {
		limit = v
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}
