package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// Common errors
var (
	ErrInvalidToken    = errors.New("invalid token")
	ErrExpiredToken    = errors.New("token has expired")
	ErrInvalidClaims   = errors.New("invalid token claims")
	ErrMissingIdentity = errors.New("missing identity")
	ErrMissingSecret   = errors.New("missing signing secret")
)

// DefaultTokenTTL is how long an issued courier token stays valid
const DefaultTokenTTL = 10 * 24 * time.Hour

// TokenConfig holds token signing configuration
type TokenConfig struct {
	Secret string
	TTL    time.Duration
	Issuer string
}

// Claims represents the bearer token claims. The identity is carried in Subject.
type Claims struct {
	jwt.RegisteredClaims
}

// Identity returns the identity the token was issued to
func (c *Claims) Identity() string {
	return c.Subject
}

// IssuedAtTime returns the token's issued-at time as time.Time
func (c *Claims) IssuedAtTime() time.Time {
	if c.IssuedAt != nil {
		return c.IssuedAt.Time
	}
	return time.Time{}
}

// ExpiresAtTime returns the token's expiration time as time.Time
func (c *Claims) ExpiresAtTime() time.Time {
	if c.ExpiresAt != nil {
		return c.ExpiresAt.Time
	}
	return time.Time{}
}

// Token is an issued bearer token
type Token struct {
	Value     string    `json:"token"`
	Identity  string    `json:"identity"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TokenService issues and validates HS256 bearer tokens against an injectable clock
type TokenService struct {
	secret []byte
	ttl    time.Duration
	issuer string
	clock  clockwork.Clock
}

// NewTokenService creates a new token service. A nil clock uses the real clock.
func NewTokenService(cfg TokenConfig, clock clockwork.Clock) (*TokenService, error) {
	if cfg.Secret == "" {
		return nil, ErrMissingSecret
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTokenTTL
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &TokenService{
		secret: []byte(cfg.Secret),
		ttl:    cfg.TTL,
		issuer: cfg.Issuer,
		clock:  clock,
	}, nil
}

// Issue signs a token bound to identity, valid for the configured TTL from now
func (s *TokenService) Issue(identity string) (*Token, error) {
	if identity == "" {
		return nil, ErrMissingIdentity
	}

	// NumericDate has second precision
	now := s.clock.Now().Truncate(time.Second)
	expiresAt := now.Add(s.ttl)

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    s.issuer,
			Subject:   identity,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	value, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, err
	}

	return &Token{
		Value:     value,
		Identity:  identity,
		IssuedAt:  now,
		ExpiresAt: expiresAt,
	}, nil
}

// Validate parses a token and returns its claims if it is within its validity window
func (s *TokenService) Validate(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.clock.Now),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}
	if claims.Subject == "" {
		return nil, ErrMissingIdentity
	}

	return claims, nil
}

// TTL returns the token lifetime
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}
