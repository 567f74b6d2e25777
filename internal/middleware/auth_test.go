package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Diyor-ux/star/internal/model"
	"github.com/Diyor-ux/star/internal/utils"
)

const guardSecret = "guard-secret"

type fakeEmployees struct{ active map[uint64]model.Employee }

func (f *fakeEmployees) ActiveEmployee(_ context.Context, id uint64) (model.Employee, error) {
	if e, ok := f.active[id]; ok {
		return e, nil
	}
	return model.Employee{}, errors.New("not found")
}

type fakeCustomers struct{ active map[uint64]model.Customer }

func (f *fakeCustomers) ActiveCustomerByUser(_ context.Context, userID uint64) (model.Customer, error) {
	if c, ok := f.active[userID]; ok {
		return c, nil
	}
	return model.Customer{}, errors.New("not found")
}

type fakeKeys struct {
	keys    map[string]model.APIKey
	touched []uint64
}

func (f *fakeKeys) ResolveKey(_ context.Context, key string) (model.APIKey, error) {
	if k, ok := f.keys[key]; ok {
		return k, nil
	}
	return model.APIKey{}, errors.New("not found")
}

func (f *fakeKeys) TouchKey(_ context.Context, id uint64) error {
	f.touched = append(f.touched, id)
	return nil
}

func runGuard(t *testing.T, mw echo.MiddlewareFunc, header http.Header) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for k, vals := range header {
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	handler := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, handler(c))
	return rec, c
}

func employeeToken(t *testing.T, id uint64, isAdmin bool) string {
	t.Helper()
	raw, err := utils.NewEmployeeToken(guardSecret, id, isAdmin, time.Hour)
	require.NoError(t, err)
	return raw
}

func customerToken(t *testing.T, userID, customerID uint64) string {
	t.Helper()
	raw, err := utils.NewCustomerToken(guardSecret, userID, customerID, time.Hour)
	require.NoError(t, err)
	return raw
}

func bearer(token string) http.Header {
	h := http.Header{}
	h.Set("Authorization", "Bearer "+token)
	return h
}

func TestEmployeeAuth(t *testing.T) {
	emps := &fakeEmployees{active: map[uint64]model.Employee{
		1: {ID: 1, Email: "staff@example.com", IsActive: true},
	}}
	guard := EmployeeAuth(guardSecret, emps)

	t.Run("missing token", func(t *testing.T) {
		rec, _ := runGuard(t, guard, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		rec, _ := runGuard(t, guard, bearer("garbage"))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("customer token on employee route", func(t *testing.T) {
		rec, _ := runGuard(t, guard, bearer(customerToken(t, 1, 1)))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("inactive employee", func(t *testing.T) {
		rec, _ := runGuard(t, guard, bearer(employeeToken(t, 99, false)))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid", func(t *testing.T) {
		rec, c := runGuard(t, guard, bearer(employeeToken(t, 1, false)))
		assert.Equal(t, http.StatusOK, rec.Code)
		emp, ok := c.Get(CtxEmployee).(model.Employee)
		require.True(t, ok)
		assert.Equal(t, uint64(1), emp.ID)
	})
}

func TestCustomerAuth(t *testing.T) {
	cus := &fakeCustomers{active: map[uint64]model.Customer{
		10: {ID: 3, Email: "ali@example.com", IsActive: true},
	}}
	guard := CustomerAuth(guardSecret, cus)

	t.Run("employee token on customer route", func(t *testing.T) {
		rec, _ := runGuard(t, guard, bearer(employeeToken(t, 1, false)))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("unknown app user", func(t *testing.T) {
		rec, _ := runGuard(t, guard, bearer(customerToken(t, 99, 99)))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid", func(t *testing.T) {
		rec, c := runGuard(t, guard, bearer(customerToken(t, 10, 3)))
		assert.Equal(t, http.StatusOK, rec.Code)
		got, ok := c.Get(CtxCustomer).(model.Customer)
		require.True(t, ok)
		assert.Equal(t, uint64(3), got.ID)
	})
}

func TestOptionalAuth(t *testing.T) {
	emps := &fakeEmployees{active: map[uint64]model.Employee{1: {ID: 1, IsActive: true}}}
	cus := &fakeCustomers{active: map[uint64]model.Customer{10: {ID: 3, IsActive: true}}}
	guard := OptionalAuth(guardSecret, emps, cus)

	t.Run("anonymous passes through", func(t *testing.T) {
		rec, c := runGuard(t, guard, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Nil(t, c.Get(CtxEmployee))
		assert.Nil(t, c.Get(CtxCustomer))
	})

	t.Run("invalid token still fails", func(t *testing.T) {
		rec, _ := runGuard(t, guard, bearer("broken"))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("employee resolved", func(t *testing.T) {
		rec, c := runGuard(t, guard, bearer(employeeToken(t, 1, false)))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.NotNil(t, c.Get(CtxEmployee))
	})

	t.Run("customer resolved", func(t *testing.T) {
		rec, c := runGuard(t, guard, bearer(customerToken(t, 10, 3)))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.NotNil(t, c.Get(CtxCustomer))
	})
}

func TestRequireAdmin(t *testing.T) {
	guard := RequireAdmin()

	t.Run("no employee in context", func(t *testing.T) {
		rec, _ := runGuard(t, guard, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("non-admin employee", func(t *testing.T) {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.Set(CtxEmployee, model.Employee{ID: 1, IsAdmin: false})
		require.NoError(t, guard(func(c echo.Context) error { return c.NoContent(http.StatusOK) })(c))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("admin", func(t *testing.T) {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.Set(CtxEmployee, model.Employee{ID: 1, IsAdmin: true})
		require.NoError(t, guard(func(c echo.Context) error { return c.NoContent(http.StatusOK) })(c))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestAPIKeyAuth(t *testing.T) {
	keys := &fakeKeys{keys: map[string]model.APIKey{
		"valid-key": {ID: 7, AppName: "warehouse-sync", IsActive: true},
	}}
	guard := APIKeyAuth(keys)

	t.Run("missing header", func(t *testing.T) {
		rec, _ := runGuard(t, guard, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unknown key", func(t *testing.T) {
		h := http.Header{}
		h.Set("X-API-Key", "nope")
		rec, _ := runGuard(t, guard, h)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Empty(t, keys.touched)
	})

	t.Run("valid key touches last use", func(t *testing.T) {
		h := http.Header{}
		h.Set("X-API-Key", "valid-key")
		rec, c := runGuard(t, guard, h)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []uint64{7}, keys.touched)
		k, ok := c.Get(CtxAPIKey).(model.APIKey)
		require.True(t, ok)
		assert.Equal(t, "warehouse-sync", k.AppName)
	})
}
