package courier

import (
	"go.uber.org/zap"

	"github.com/deyjyotipriya/Shopabell-sub001/internal/infrastructure/auth"
)

// Authenticate issues a bearer token for identity. Any non-empty pair is accepted.
func (e *Emulator) Authenticate(identity, secret string) (*auth.Token, error) {
	if identity == "" || secret == "" {
		return nil, ErrAuthFailure
	}
	token, err := e.tokens.Issue(identity)
	if err != nil {
		return nil, err
	}
	e.logger.Info("Courier token issued",
		zap.String("identity", identity),
		zap.Time("expires_at", token.ExpiresAt),
	)
	return token, nil
}

// ValidateToken reports whether token was issued by this emulator and is within its TTL
func (e *Emulator) ValidateToken(token string) bool {
	_, err := e.tokens.Validate(token)
	return err == nil
}

// TokenIdentity returns the identity a valid token was issued to
func (e *Emulator) TokenIdentity(token string) (string, error) {
	claims, err := e.tokens.Validate(token)
	if err != nil {
		return "", ErrInvalidToken
	}
	return claims.Identity(), nil
}
