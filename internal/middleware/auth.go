package middleware // middleware provides the access guards and shared request processing

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Diyor-ux/star/internal/model"
	"github.com/Diyor-ux/star/internal/utils"
)

// Context keys under which resolved principals are attached. At most one
// of employee/customer is set per request; downstream handlers read them
// via the helpers in the handler package.
const (
	CtxEmployee = "employee"
	CtxCustomer = "customer"
	CtxAPIKey   = "api_key"
)

// EmployeeSource resolves an employee id to its active record. Missing or
// deactivated employees must return an error so a stale token stops
// working the moment the account is disabled.
type EmployeeSource interface {
	ActiveEmployee(ctx context.Context, id uint64) (model.Employee, error)
}

// CustomerSource resolves an app-user id (the token subject) to its active
// customer.
type CustomerSource interface {
	ActiveCustomerByUser(ctx context.Context, userID uint64) (model.Customer, error)
}

// KeySource resolves raw API keys and records their use.
type KeySource interface {
	ResolveKey(ctx context.Context, key string) (model.APIKey, error)
	TouchKey(ctx context.Context, id uint64) error
}

// bearerToken extracts the raw token from the Authorization header.
func bearerToken(c echo.Context) (string, bool) {
	auth := c.Request().Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return "", false
	}
	return strings.TrimPrefix(auth, "Bearer "), true
}

// EmployeeAuth gates a route to employee sessions. Checks run in order:
// token present and valid under the signing scheme (401), role tag matches
// (403), referenced employee exists and is active (401). On success the
// full employee record is attached to the request context.
func EmployeeAuth(secret string, src EmployeeSource) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "access denied: no token provided"})
			}
			claims, err := utils.VerifyToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			if claims.Type != utils.PrincipalEmployee {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied: employee access required"})
			}
			emp, err := src.ActiveEmployee(c.Request().Context(), claims.ID)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token or inactive employee"})
			}
			c.Set(CtxEmployee, emp)
			return next(c)
		}
	}
}

// CustomerAuth gates a route to customer sessions, mirroring EmployeeAuth
// with the customer credential population.
func CustomerAuth(secret string, src CustomerSource) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "access denied: no token provided"})
			}
			claims, err := utils.VerifyToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			if claims.Type != utils.PrincipalCustomer {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied: customer access required"})
			}
			cus, err := src.ActiveCustomerByUser(c.Request().Context(), claims.ID)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token or inactive customer"})
			}
			c.Set(CtxCustomer, cus)
			return next(c)
		}
	}
}

// OptionalAuth resolves whichever principal a bearer token carries and
// lets anonymous requests straight through. A token that is present but
// invalid still fails the request: silent downgrade to anonymous would
// turn a revoked session into a working one.
func OptionalAuth(secret string, emp EmployeeSource, cus CustomerSource) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c)
			if !ok {
				return next(c)
			}
			claims, err := utils.VerifyToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			switch claims.Type {
			case utils.PrincipalEmployee:
				e, err := emp.ActiveEmployee(c.Request().Context(), claims.ID)
				if err != nil {
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token or inactive employee"})
				}
				c.Set(CtxEmployee, e)
			case utils.PrincipalCustomer:
				cu, err := cus.ActiveCustomerByUser(c.Request().Context(), claims.ID)
				if err != nil {
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token or inactive customer"})
				}
				c.Set(CtxCustomer, cu)
			}
			return next(c)
		}
	}
}

// RequireAdmin layers the admin flag check on top of EmployeeAuth. It
// assumes an employee has already been attached to the context.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			emp, ok := c.Get(CtxEmployee).(model.Employee)
			if !ok || !emp.IsAdmin {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied: admin privileges required"})
			}
			return next(c)
		}
	}
}

// APIKeyAuth is the static service-to-service credential path: it resolves
// the X-API-Key header to an application identity and records last use as
// a side effect. Keys carry no expiry; deactivation is the only revocation.
func APIKeyAuth(src KeySource) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := c.Request().Header.Get("X-API-Key")
			if key == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "API key required"})
			}
			k, err := src.ResolveKey(c.Request().Context(), key)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid API key"})
			}
			_ = src.TouchKey(c.Request().Context(), k.ID)
			c.Set(CtxAPIKey, k)
			return next(c)
		}
	}
}
