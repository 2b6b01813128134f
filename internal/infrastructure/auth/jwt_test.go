package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

func newTestTokenService(t *testing.T) (*TokenService, *clockwork.FakeClock) {
	clock := clockwork.NewFakeClockAt(testNow)
	svc, err := NewTokenService(TokenConfig{
		Secret: "test-secret-key-at-least-32-chars",
		Issuer: "courier-emulator",
	}, clock)
	require.NoError(t, err)
	return svc, clock
}

func TestNewTokenService(t *testing.T) {
	svc, _ := newTestTokenService(t)
	assert.Equal(t, DefaultTokenTTL, svc.TTL())

	_, err := NewTokenService(TokenConfig{}, nil)
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestIssue(t *testing.T) {
	svc, _ := newTestTokenService(t)

	token, err := svc.Issue("seller@example.com")

	require.NoError(t, err)
	assert.NotEmpty(t, token.Value)
	assert.Equal(t, "seller@example.com", token.Identity)
	assert.Equal(t, testNow, token.IssuedAt)
	assert.Equal(t, testNow.Add(10*24*time.Hour), token.ExpiresAt)
	assert.Len(t, strings.Split(token.Value, "."), 3)
}

func TestIssue_MissingIdentity(t *testing.T) {
	svc, _ := newTestTokenService(t)

	_, err := svc.Issue("")
	assert.ErrorIs(t, err, ErrMissingIdentity)
}

func TestValidate_Success(t *testing.T) {
	svc, _ := newTestTokenService(t)
	token, err := svc.Issue("seller@example.com")
	require.NoError(t, err)

	claims, err := svc.Validate(token.Value)

	require.NoError(t, err)
	assert.Equal(t, "seller@example.com", claims.Identity())
	assert.Equal(t, "courier-emulator", claims.Issuer)
	assert.Equal(t, testNow, claims.IssuedAtTime().UTC())
	assert.Equal(t, token.ExpiresAt, claims.ExpiresAtTime().UTC())
}

func TestValidate_WithinAndPastTTL(t *testing.T) {
	svc, clock := newTestTokenService(t)
	token, err := svc.Issue("seller@example.com")
	require.NoError(t, err)

	clock.Advance(10*24*time.Hour - time.Minute)
	_, err = svc.Validate(token.Value)
	assert.NoError(t, err)

	clock.Advance(2 * time.Minute)
	_, err = svc.Validate(token.Value)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidate_InvalidToken(t *testing.T) {
	svc, _ := newTestTokenService(t)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-jwt"},
		{"three garbage segments", "a.b.c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Validate(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestValidate_WrongSecret(t *testing.T) {
	svc, clock := newTestTokenService(t)
	other, err := NewTokenService(TokenConfig{Secret: "another-secret", Issuer: "courier-emulator"}, clock)
	require.NoError(t, err)

	token, err := other.Issue("seller@example.com")
	require.NoError(t, err)

	_, err = svc.Validate(token.Value)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_WrongIssuer(t *testing.T) {
	svc, clock := newTestTokenService(t)
	other, err := NewTokenService(TokenConfig{Secret: "test-secret-key-at-least-32-chars", Issuer: "someone-else"}, clock)
	require.NoError(t, err)

	token, err := other.Issue("seller@example.com")
	require.NoError(t, err)

	_, err = svc.Validate(token.Value)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_RejectsOtherAlgorithms(t *testing.T) {
	svc, _ := newTestTokenService(t)

	claims := jwt.RegisteredClaims{
		Subject:   "seller@example.com",
		Issuer:    "courier-emulator",
		IssuedAt:  jwt.NewNumericDate(testNow),
		ExpiresAt: jwt.NewNumericDate(testNow.Add(time.Hour)),
	}
	value, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("test-secret-key-at-least-32-chars"))
	require.NoError(t, err)

	_, err = svc.Validate(value)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
