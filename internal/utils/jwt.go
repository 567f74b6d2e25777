package utils // utils provides token issuing, verification and hashing helpers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Principal type tags carried in the token's "type" claim. Every session
// token belongs to exactly one of the two credential populations; the
// access guards match this tag against the endpoint's required role before
// touching the database.
const (
	PrincipalEmployee = "employee"
	PrincipalCustomer = "customer"
)

// Claims is the signed session payload. ID is the subject row id: the
// employee id for employee tokens and the app-user id for customer tokens,
// with the owning customer id carried separately (mirroring the split
// between the login identity and the customer record).
type Claims struct {
	ID         uint64 `json:"id"`
	Type       string `json:"type"`
	IsAdmin    bool   `json:"isAdmin,omitempty"`
	CustomerID uint64 `json:"customerId,omitempty"`
	jwt.RegisteredClaims
}

// ErrInvalidToken is returned for any token that fails signature,
// structure or expiry checks. Callers get no detail beyond this; a
// half-valid token grants nothing.
var ErrInvalidToken = errors.New("invalid token")

// NewEmployeeToken signs a short-lived HS256 session token for an employee.
// Employee sessions follow POS shift length (8 hours by default).
func NewEmployeeToken(secret string, employeeID uint64, isAdmin bool, ttl time.Duration) (string, error) {
	return sign(secret, Claims{
		ID:      employeeID,
		Type:    PrincipalEmployee,
		IsAdmin: isAdmin,
	}, ttl)
}

// NewCustomerToken signs a long-lived HS256 session token for a customer.
// Consumer sessions live much longer than POS shifts (30 days by default).
func NewCustomerToken(secret string, userID, customerID uint64, ttl time.Duration) (string, error) {
	return sign(secret, Claims{
		ID:         userID,
		Type:       PrincipalCustomer,
		CustomerID: customerID,
	}, ttl)
}

func sign(secret string, claims Claims, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}

// VerifyToken parses and validates a session token. Signature mismatch,
// wrong signing method, malformed payload and expiry all collapse to
// ErrInvalidToken.
func VerifyToken(secret, raw string) (*Claims, error) {
	var claims Claims
	tok, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Type != PrincipalEmployee && claims.Type != PrincipalCustomer {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}
