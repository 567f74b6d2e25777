package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Diyor-ux/star/internal/model"
	"github.com/Diyor-ux/star/internal/repository"
	"github.com/Diyor-ux/star/internal/utils"
)

// EmployeeAuthStore is the employee lookup needed by login.
type EmployeeAuthStore interface {
	GetByEmail(ctx context.Context, email string) (model.Employee, error)
}

// CustomerAuthStore covers customer registration and login.
type CustomerAuthStore interface {
	ExistsByPhoneOrEmail(ctx context.Context, phone, email string) (bool, error)
	Register(ctx context.Context, nc repository.NewCustomer) (customerID, userID uint64, err error)
	GetForLogin(ctx context.Context, email string) (repository.CustomerLogin, error)
	TouchLastLogin(ctx context.Context, customerID uint64) error
}

// AuthHandler serves both credential populations: employee login on one
// side, customer registration and login on the other. Tokens are signed
// with the shared secret; lifetimes differ per population.
type AuthHandler struct {
	Employees   EmployeeAuthStore
	Customers   CustomerAuthStore
	JWTSecret   string
	EmployeeTTL time.Duration
	CustomerTTL time.Duration
	BcryptCost  int
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// EmployeeLogin authenticates an employee and issues a shift-length token.
// Unknown email, wrong password and deactivated account all return the same
// 401 so credentials cannot be probed.
func (h *AuthHandler) EmployeeLogin(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil || req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and password are required"})
	}

	emp, err := h.Employees.GetByEmail(c.Request().Context(), req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
	}
	if !emp.IsActive || !utils.VerifyPassword(emp.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	token, err := utils.NewEmployeeToken(h.JWTSecret, emp.ID, emp.IsAdmin, h.EmployeeTTL)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"token": token,
		"employee": echo.Map{
			"employee_id": emp.ID,
			"first_name":  emp.FirstName,
			"last_name":   emp.LastName,
			"email":       emp.Email,
			"position":    emp.Position,
			"is_admin":    emp.IsAdmin,
		},
	})
}

// EmployeeMe returns the authenticated employee's profile.
func (h *AuthHandler) EmployeeMe(c echo.Context) error {
	emp, ok := currentEmployee(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "access denied"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"employee_id": emp.ID,
		"first_name":  emp.FirstName,
		"last_name":   emp.LastName,
		"email":       emp.Email,
		"position":    emp.Position,
		"is_admin":    emp.IsAdmin,
	})
}

type registerRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// CustomerRegister creates a customer account and immediately issues a
// session token, so registration doubles as the first login. The profile
// row and the login identity are created in one transaction.
func (h *AuthHandler) CustomerRegister(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.FirstName == "" || req.LastName == "" || req.Phone == "" || req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "first_name, last_name, phone, email and password are required"})
	}

	ctx := c.Request().Context()
	exists, err := h.Customers.ExistsByPhoneOrEmail(ctx, req.Phone, req.Email)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}
	if exists {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Customer with this phone or email already exists"})
	}

	hash, err := utils.HashPassword(req.Password, h.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	customerID, userID, err := h.Customers.Register(ctx, repository.NewCustomer{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
		Email:        req.Email,
		PasswordHash: hash,
	})
	if err != nil {
		// Lost a race against a concurrent registration with the same
		// phone/email; report it the same way as the pre-check.
		if errors.Is(err, repository.ErrDuplicate) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Customer with this phone or email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	token, err := utils.NewCustomerToken(h.JWTSecret, userID, customerID, h.CustomerTTL)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"token": token,
		"customer": echo.Map{
			"customer_id": customerID,
			"first_name":  req.FirstName,
			"last_name":   req.LastName,
			"phone":       req.Phone,
			"email":       req.Email,
		},
	})
}

// CustomerLogin authenticates a customer by email and issues a long-lived
// token. A deactivated customer cannot log in even with correct credentials.
func (h *AuthHandler) CustomerLogin(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil || req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and password are required"})
	}

	ctx := c.Request().Context()
	login, err := h.Customers.GetForLogin(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
	}
	if !login.Customer.IsActive || !utils.VerifyPassword(login.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	_ = h.Customers.TouchLastLogin(ctx, login.Customer.ID)

	token, err := utils.NewCustomerToken(h.JWTSecret, login.UserID, login.Customer.ID, h.CustomerTTL)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"token": token,
		"customer": echo.Map{
			"customer_id": login.Customer.ID,
			"first_name":  login.Customer.FirstName,
			"last_name":   login.Customer.LastName,
			"phone":       login.Customer.Phone,
			"email":       login.Customer.Email,
		},
	})
}

// CustomerMe returns the authenticated customer's profile.
func (h *AuthHandler) CustomerMe(c echo.Context) error {
	cus, ok := currentCustomer(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "access denied"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"customer_id": cus.ID,
		"first_name":  cus.FirstName,
		"last_name":   cus.LastName,
		"phone":       cus.Phone,
		"email":       cus.Email,
	})
}
