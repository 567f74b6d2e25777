package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Diyor-ux/star/internal/model"
	"github.com/Diyor-ux/star/internal/repository"
	"github.com/Diyor-ux/star/internal/utils"
)

type fakeEmployeeStore struct{ byEmail map[string]model.Employee }

func (f *fakeEmployeeStore) GetByEmail(_ context.Context, email string) (model.Employee, error) {
	if e, ok := f.byEmail[email]; ok {
		return e, nil
	}
	return model.Employee{}, repository.ErrNotFound
}

type fakeCustomerStore struct {
	existing    map[string]bool // phone or email already taken
	logins      map[string]repository.CustomerLogin
	registered  []repository.NewCustomer
	registerErr error
	touched     []uint64
}

func (f *fakeCustomerStore) ExistsByPhoneOrEmail(_ context.Context, phone, email string) (bool, error) {
	return f.existing[phone] || f.existing[email], nil
}

func (f *fakeCustomerStore) Register(_ context.Context, nc repository.NewCustomer) (uint64, uint64, error) {
	if f.registerErr != nil {
		return 0, 0, f.registerErr
	}
	f.registered = append(f.registered, nc)
	return 3, 10, nil
}

func (f *fakeCustomerStore) GetForLogin(_ context.Context, email string) (repository.CustomerLogin, error) {
	if l, ok := f.logins[email]; ok {
		return l, nil
	}
	return repository.CustomerLogin{}, repository.ErrNotFound
}

func (f *fakeCustomerStore) TouchLastLogin(_ context.Context, customerID uint64) error {
	f.touched = append(f.touched, customerID)
	return nil
}

func hash(t *testing.T, plain string) string {
	t.Helper()
	h, err := utils.HashPassword(plain, bcrypt.MinCost)
	require.NoError(t, err)
	return h
}

func newAuthHandler(emps *fakeEmployeeStore, cus *fakeCustomerStore) *AuthHandler {
	return &AuthHandler{
		Employees:   emps,
		Customers:   cus,
		JWTSecret:   "handler-secret",
		EmployeeTTL: 8 * time.Hour,
		CustomerTTL: 30 * 24 * time.Hour,
		BcryptCost:  bcrypt.MinCost,
	}
}

func postJSON(t *testing.T, h echo.HandlerFunc, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(req, rec)))

	var out map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func TestEmployeeLogin(t *testing.T) {
	emps := &fakeEmployeeStore{byEmail: map[string]model.Employee{
		"staff@pos.example": {
			ID: 1, Email: "staff@pos.example", PasswordHash: hash(t, "shift123"),
			IsActive: true, IsAdmin: false,
		},
		"gone@pos.example": {
			ID: 2, Email: "gone@pos.example", PasswordHash: hash(t, "shift123"),
			IsActive: false,
		},
	}}
	h := newAuthHandler(emps, &fakeCustomerStore{})

	t.Run("success issues token", func(t *testing.T) {
		rec, out := postJSON(t, h.EmployeeLogin, `{"email":"staff@pos.example","password":"shift123"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		claims, err := utils.VerifyToken("handler-secret", out["token"].(string))
		require.NoError(t, err)
		assert.Equal(t, uint64(1), claims.ID)
		assert.Equal(t, utils.PrincipalEmployee, claims.Type)
	})

	t.Run("wrong password", func(t *testing.T) {
		rec, out := postJSON(t, h.EmployeeLogin, `{"email":"staff@pos.example","password":"nope"}`)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "invalid credentials", out["error"])
	})

	t.Run("unknown email reads the same as wrong password", func(t *testing.T) {
		rec, out := postJSON(t, h.EmployeeLogin, `{"email":"nobody@pos.example","password":"shift123"}`)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "invalid credentials", out["error"])
	})

	t.Run("deactivated employee", func(t *testing.T) {
		rec, _ := postJSON(t, h.EmployeeLogin, `{"email":"gone@pos.example","password":"shift123"}`)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("missing fields", func(t *testing.T) {
		rec, _ := postJSON(t, h.EmployeeLogin, `{"email":"staff@pos.example"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestCustomerRegister(t *testing.T) {
	const body = `{"first_name":"Ali","last_name":"Valiyev","phone":"+998901234567","email":"ali@example.com","password":"secret1"}`

	t.Run("success returns 201 with token", func(t *testing.T) {
		cus := &fakeCustomerStore{existing: map[string]bool{}}
		h := newAuthHandler(&fakeEmployeeStore{}, cus)

		rec, out := postJSON(t, h.CustomerRegister, body)
		require.Equal(t, http.StatusCreated, rec.Code)

		claims, err := utils.VerifyToken("handler-secret", out["token"].(string))
		require.NoError(t, err)
		assert.Equal(t, utils.PrincipalCustomer, claims.Type)
		assert.Equal(t, uint64(10), claims.ID)
		assert.Equal(t, uint64(3), claims.CustomerID)

		require.Len(t, cus.registered, 1)
		assert.Equal(t, "ali@example.com", cus.registered[0].Email)
		assert.NotEqual(t, "secret1", cus.registered[0].PasswordHash)
	})

	t.Run("duplicate phone or email", func(t *testing.T) {
		cus := &fakeCustomerStore{existing: map[string]bool{"ali@example.com": true}}
		h := newAuthHandler(&fakeEmployeeStore{}, cus)

		rec, out := postJSON(t, h.CustomerRegister, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Customer with this phone or email already exists", out["error"])
		assert.Empty(t, cus.registered)
	})

	t.Run("duplicate race on insert", func(t *testing.T) {
		cus := &fakeCustomerStore{existing: map[string]bool{}, registerErr: repository.ErrDuplicate}
		h := newAuthHandler(&fakeEmployeeStore{}, cus)

		rec, out := postJSON(t, h.CustomerRegister, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Customer with this phone or email already exists", out["error"])
	})

	t.Run("missing fields", func(t *testing.T) {
		h := newAuthHandler(&fakeEmployeeStore{}, &fakeCustomerStore{existing: map[string]bool{}})
		rec, _ := postJSON(t, h.CustomerRegister, `{"first_name":"Ali"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestCustomerLogin(t *testing.T) {
	active := repository.CustomerLogin{
		UserID:       10,
		PasswordHash: hash(t, "secret1"),
		Customer:     model.Customer{ID: 3, Email: "ali@example.com", IsActive: true},
	}
	disabled := repository.CustomerLogin{
		UserID:       11,
		PasswordHash: hash(t, "secret1"),
		Customer:     model.Customer{ID: 4, Email: "off@example.com", IsActive: false},
	}
	cus := &fakeCustomerStore{logins: map[string]repository.CustomerLogin{
		"ali@example.com": active,
		"off@example.com": disabled,
	}}
	h := newAuthHandler(&fakeEmployeeStore{}, cus)

	t.Run("success records last login", func(t *testing.T) {
		rec, out := postJSON(t, h.CustomerLogin, `{"email":"ali@example.com","password":"secret1"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotEmpty(t, out["token"])
		assert.Equal(t, []uint64{3}, cus.touched)
	})

	t.Run("wrong password", func(t *testing.T) {
		rec, out := postJSON(t, h.CustomerLogin, `{"email":"ali@example.com","password":"wrong"}`)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "invalid credentials", out["error"])
	})

	t.Run("deactivated customer", func(t *testing.T) {
		rec, _ := postJSON(t, h.CustomerLogin, `{"email":"off@example.com","password":"secret1"}`)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
