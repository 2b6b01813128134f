package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/deyjyotipriya/Shopabell-sub001/internal/infrastructure/logger"
	"github.com/deyjyotipriya/Shopabell-sub001/internal/interfaces/http/dto"
)

// Payment client credential headers and gin context key
const (
	ClientIDHeader     = "X-Client-ID"
	ClientSecretHeader = "X-Client-Secret"
	ClientIDKey        = "client_id"
)

// CredentialVerifier checks a client ID and secret pair
type CredentialVerifier interface {
	VerifyClientCredentials(clientID, secret string) error
}

// ClientCredentials rejects requests whose client headers do not verify
func ClientCredentials(verifier CredentialVerifier, log *zap.Logger) gin.HandlerFunc {
	log = logger.OrNop(log)

	return func(c *gin.Context) {
		clientID := c.GetHeader(ClientIDHeader)
		secret := c.GetHeader(ClientSecretHeader)
		if clientID == "" || secret == "" {
			abortUnauthorized(c, log, dto.ErrCodeUnauthorized, "Missing client credentials")
			return
		}

		if err := verifier.VerifyClientCredentials(clientID, secret); err != nil {
			abortUnauthorized(c, log, dto.ErrCodeUnauthorized, "Invalid client credentials")
			return
		}

		c.Set(ClientIDKey, clientID)
		c.Request = c.Request.WithContext(logger.WithClientID(c.Request.Context(), clientID))
		c.Next()
	}
}

// GetClientID returns the client ID stored by ClientCredentials
func GetClientID(c *gin.Context) string {
	return c.GetString(ClientIDKey)
}
