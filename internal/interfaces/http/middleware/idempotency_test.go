package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deyjyotipriya/Shopabell-sub001/internal/domain/shared"
	"github.com/deyjyotipriya/Shopabell-sub001/internal/infrastructure/cache"
)

type failingStore struct{}

func (failingStore) Reserve(context.Context, string, time.Duration) (bool, error) {
	return false, errors.New("store down")
}

func (failingStore) Get(context.Context, string) (*shared.IdempotentResponse, error) {
	return nil, nil
}

func (failingStore) Complete(context.Context, string, shared.IdempotentResponse, time.Duration) error {
	return nil
}

func (failingStore) Release(context.Context, string) error {
	return nil
}

func (failingStore) Close() error {
	return nil
}

func newIdempotentRouter(store shared.IdempotencyStore, calls *atomic.Int32, status int) *gin.Engine {
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(ClientIDKey, c.GetHeader(ClientIDHeader))
		c.Next()
	})
	router.Use(Idempotency(store, time.Hour, nil))
	router.POST("/settlements", func(c *gin.Context) {
		n := calls.Add(1)
		c.JSON(status, gin.H{"call": n})
	})
	return router
}

func idempotentRequest(key, client string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/settlements", strings.NewReader(`{}`))
	if key != "" {
		req.Header.Set(IdempotencyKeyHeader, key)
	}
	req.Header.Set(ClientIDHeader, client)
	return req
}

func TestIdempotency_ReplaysStoredResponse(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()

	var calls atomic.Int32
	router := newIdempotentRouter(store, &calls, http.StatusCreated)

	first := serve(router, idempotentRequest("abc", "checkout"))
	require.Equal(t, http.StatusCreated, first.Code)
	assert.Empty(t, first.Header().Get(IdempotentReplayedHeader))

	second := serve(router, idempotentRequest("abc", "checkout"))
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, "true", second.Header().Get(IdempotentReplayedHeader))
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, int32(1), calls.Load())

	t.Run("keys are scoped per client", func(t *testing.T) {
		w := serve(router, idempotentRequest("abc", "other"))
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("no key processes every request", func(t *testing.T) {
		before := calls.Load()
		serve(router, idempotentRequest("", "checkout"))
		serve(router, idempotentRequest("", "checkout"))
		assert.Equal(t, before+2, calls.Load())
	})
}

func TestIdempotency_InFlightKeyConflicts(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()

	ok, err := store.Reserve(context.Background(), "checkout|POST|/settlements|busy", time.Hour)
	require.NoError(t, err)
	require.True(t, ok)

	var calls atomic.Int32
	router := newIdempotentRouter(store, &calls, http.StatusOK)

	w := serve(router, idempotentRequest("busy", "checkout"))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_IDEMPOTENCY_CONFLICT")
	assert.Zero(t, calls.Load())
}

func TestIdempotency_ServerErrorReleasesKey(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()

	var calls atomic.Int32
	router := newIdempotentRouter(store, &calls, http.StatusServiceUnavailable)

	serve(router, idempotentRequest("retry", "checkout"))
	w := serve(router, idempotentRequest("retry", "checkout"))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Empty(t, w.Header().Get(IdempotentReplayedHeader))
	assert.Equal(t, int32(2), calls.Load())
}

func TestIdempotency_StoreFailureFailsOpen(t *testing.T) {
	var calls atomic.Int32
	router := newIdempotentRouter(failingStore{}, &calls, http.StatusOK)

	w := serve(router, idempotentRequest("abc", "checkout"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int32(1), calls.Load())
}

func TestIdempotency_RejectsOversizedKey(t *testing.T) {
	var calls atomic.Int32
	router := newIdempotentRouter(failingStore{}, &calls, http.StatusOK)

	w := serve(router, idempotentRequest(strings.Repeat("k", maxIdempotencyKeyLength+1), "checkout"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, calls.Load())
}
