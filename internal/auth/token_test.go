package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhub/taskhub/internal/roles"
)

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	m := NewTokenManager("secret", "taskhub", time.Hour)
	raw, issued, err := m.Issue(&User{ID: 12, Email: "a@b.c", Roles: roles.Refs("Tester", "tester", "user")})
	require.NoError(t, err)

	claims, err := m.Verify(raw)
	require.NoError(t, err)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, int64(12), id)
	assert.Equal(t, []string{"tester", "user"}, claims.Roles)
	assert.Equal(t, issued.ID, claims.ID)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	m := NewTokenManager("secret", "taskhub", time.Minute)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	raw, _, err := m.Issue(&User{ID: 1})
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsForeignSignatureAndIssuer(t *testing.T) {
	raw, _, err := NewTokenManager("other", "taskhub", time.Hour).Issue(&User{ID: 1})
	require.NoError(t, err)
	_, err = NewTokenManager("secret", "taskhub", time.Hour).Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)

	raw, _, err = NewTokenManager("secret", "elsewhere", time.Hour).Issue(&User{ID: 1})
	require.NoError(t, err)
	_, err = NewTokenManager("secret", "taskhub", time.Hour).Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsNoneAlgorithm(t *testing.T) {
	claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "1",
		ID:        "x",
		Issuer:    "taskhub",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewTokenManager("secret", "taskhub", time.Hour).Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
