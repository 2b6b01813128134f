package middleware

import (
	"bytes"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/deyjyotipriya/Shopabell-sub001/internal/domain/shared"
	"github.com/deyjyotipriya/Shopabell-sub001/internal/infrastructure/logger"
	"github.com/deyjyotipriya/Shopabell-sub001/internal/interfaces/http/dto"
)

// Idempotency headers and key limits
const (
	IdempotencyKeyHeader      = "Idempotency-Key"
	IdempotentReplayedHeader  = "Idempotent-Replayed"
	maxIdempotencyKeyLength   = 255
	idempotencyKeySeparator   = "|"
	idempotencyAnonymousScope = "-"
)

// bodyRecorder tees the response body so it can be stored for replay
type bodyRecorder struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyRecorder) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Idempotency replays the stored response when a caller repeats an Idempotency-Key.
// Keys are scoped to the authenticated caller and route. Server errors release the
// key so the request can be retried. Store failures fail open.
func Idempotency(store shared.IdempotencyStore, ttl time.Duration, log *zap.Logger) gin.HandlerFunc {
	log = logger.OrNop(log)
	if ttl <= 0 {
		ttl = shared.DefaultIdempotencyConfig().TTL
	}

	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
		if key == "" || c.Request.Method == http.MethodGet {
			c.Next()
			return
		}
		if len(key) > maxIdempotencyKeyLength {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeBadRequest,
				"Idempotency-Key is too long",
				GetRequestID(c),
			))
			return
		}

		ctx := c.Request.Context()
		scoped := idempotencyScope(c, key)

		reserved, err := store.Reserve(ctx, scoped, ttl)
		if err != nil {
			log.Warn("Idempotency store unavailable, processing request", zap.Error(err))
			c.Next()
			return
		}

		if !reserved {
			resp, err := store.Get(ctx, scoped)
			if err != nil {
				log.Warn("Idempotency lookup failed", zap.Error(err))
			}
			if resp == nil {
				c.AbortWithStatusJSON(http.StatusConflict, dto.NewErrorResponseWithRequestID(
					dto.ErrCodeIdempotencyConflict,
					"A request with this Idempotency-Key is still being processed",
					GetRequestID(c),
				))
				return
			}
			c.Header(IdempotentReplayedHeader, "true")
			c.Data(resp.Status, resp.ContentType, resp.Body)
			c.Abort()
			return
		}

		recorder := &bodyRecorder{ResponseWriter: c.Writer}
		c.Writer = recorder
		c.Next()

		status := recorder.Status()
		if status >= http.StatusInternalServerError {
			if err := store.Release(ctx, scoped); err != nil {
				log.Warn("Failed to release idempotency key", zap.Error(err))
			}
			return
		}

		if err := store.Complete(ctx, scoped, shared.IdempotentResponse{
			Status:      status,
			ContentType: recorder.Header().Get("Content-Type"),
			Body:        recorder.body.Bytes(),
		}, ttl); err != nil {
			log.Warn("Failed to store idempotent response", zap.Error(err))
		}
	}
}

func idempotencyScope(c *gin.Context, key string) string {
	caller := GetClientID(c)
	if caller == "" {
		caller = GetIdentity(c)
	}
	if caller == "" {
		caller = idempotencyAnonymousScope
	}
	return strings.Join([]string{caller, c.Request.Method, c.FullPath(), key}, idempotencyKeySeparator)
}
