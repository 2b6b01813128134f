package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/deyjyotipriya/Shopabell-sub001/internal/infrastructure/logger"
	"github.com/deyjyotipriya/Shopabell-sub001/internal/interfaces/http/dto"
)

// Bearer auth header and gin context key
const (
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
	IdentityKey   = "auth_identity"
)

// TokenValidator resolves a bearer token to the identity it was issued to
type TokenValidator interface {
	TokenIdentity(token string) (string, error)
}

// BearerAuth rejects requests without a valid bearer token and stores the
// token's identity in the gin and request contexts
func BearerAuth(validator TokenValidator, log *zap.Logger) gin.HandlerFunc {
	log = logger.OrNop(log)

	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader == "" {
			abortUnauthorized(c, log, dto.ErrCodeUnauthorized, "Missing authorization header")
			return
		}
		if !strings.HasPrefix(authHeader, BearerPrefix) {
			abortUnauthorized(c, log, dto.ErrCodeUnauthorized, "Invalid authorization header format")
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, BearerPrefix))
		if token == "" {
			abortUnauthorized(c, log, dto.ErrCodeUnauthorized, "Missing token")
			return
		}

		identity, err := validator.TokenIdentity(token)
		if err != nil {
			abortUnauthorized(c, log, dto.ErrCodeTokenInvalid, "Invalid or expired token")
			return
		}

		c.Set(IdentityKey, identity)
		c.Request = c.Request.WithContext(logger.WithIdentity(c.Request.Context(), identity))
		c.Next()
	}
}

// GetIdentity returns the identity stored by BearerAuth
func GetIdentity(c *gin.Context) string {
	return c.GetString(IdentityKey)
}

func abortUnauthorized(c *gin.Context, log *zap.Logger, code, message string) {
	log.Warn("Authentication failed",
		zap.String("path", c.Request.URL.Path),
		zap.String("reason", message),
	)
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
}
