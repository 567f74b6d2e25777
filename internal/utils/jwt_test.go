package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestEmployeeTokenRoundTrip(t *testing.T) {
	raw, err := NewEmployeeToken(testSecret, 42, true, time.Hour)
	require.NoError(t, err)

	claims, err := VerifyToken(testSecret, raw)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), claims.ID)
	assert.Equal(t, PrincipalEmployee, claims.Type)
	assert.True(t, claims.IsAdmin)
	assert.Zero(t, claims.CustomerID)
}

func TestCustomerTokenRoundTrip(t *testing.T) {
	raw, err := NewCustomerToken(testSecret, 7, 15, 30*24*time.Hour)
	require.NoError(t, err)

	claims, err := VerifyToken(testSecret, raw)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), claims.ID)
	assert.Equal(t, PrincipalCustomer, claims.Type)
	assert.Equal(t, uint64(15), claims.CustomerID)
	assert.False(t, claims.IsAdmin)
}

func TestVerifyTokenRejectsWrongSecret(t *testing.T) {
	raw, err := NewEmployeeToken(testSecret, 1, false, time.Hour)
	require.NoError(t, err)

	_, err = VerifyToken("other-secret", raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyTokenRejectsExpired(t *testing.T) {
	raw, err := NewEmployeeToken(testSecret, 1, false, -time.Minute)
	require.NoError(t, err)

	_, err = VerifyToken(testSecret, raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyTokenRejectsGarbage(t *testing.T) {
	_, err := VerifyToken(testSecret, "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyTokenRejectsUnknownType(t *testing.T) {
	// A structurally valid token whose type tag belongs to neither
	// population must not authenticate.
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		ID:   1,
		Type: "robot",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	raw, err := tok.SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = VerifyToken(testSecret, raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyTokenRejectsNoneAlgorithm(t *testing.T) {
	tok := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		ID:   1,
		Type: PrincipalEmployee,
	})
	raw, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = VerifyToken(testSecret, raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
