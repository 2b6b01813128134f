package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func findEntry(entries []observer.LoggedEntry, msg string) *observer.LoggedEntry {
	for i := range entries {
		if entries[i].Message == msg {
			return &entries[i]
		}
	}
	return nil
}

func withRequestID(id string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(string(RequestIDKey), id)
		c.Next()
	}
}

func serve(router *gin.Engine, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name      string
		status    int
		wantLevel zapcore.Level
	}{
		{"success logs at info", http.StatusOK, zapcore.InfoLevel},
		{"client error logs at warn", http.StatusNotFound, zapcore.WarnLevel},
		{"server error logs at error", http.StatusInternalServerError, zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, recorded := observer.New(zapcore.InfoLevel)

			router := gin.New()
			router.Use(withRequestID("req-123"), GinMiddleware(zap.New(core)))
			router.GET("/links/:id", func(c *gin.Context) {
				c.Status(tt.status)
			})

			serve(router, "/links/lnk_1?expand=1")

			entry := findEntry(recorded.All(), "request served")
			require.NotNil(t, entry)
			assert.Equal(t, tt.wantLevel, entry.Level)
			fields := entry.ContextMap()
			assert.Equal(t, "req-123", fields["request_id"])
			assert.Equal(t, "/links/:id", fields["route"])
			assert.Equal(t, "expand=1", fields["query"])
			assert.EqualValues(t, tt.status, fields["status"])
			assert.NotContains(t, fields, "caller")
		})
	}
}

func TestGinMiddleware_LogsCaller(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, recorded := observer.New(zapcore.InfoLevel)

	router := gin.New()
	router.Use(GinMiddleware(zap.New(core)))
	router.GET("/accounts", func(c *gin.Context) {
		c.Request = c.Request.WithContext(WithClientID(c.Request.Context(), "checkout"))
		c.Status(http.StatusOK)
	})
	router.GET("/track", func(c *gin.Context) {
		c.Request = c.Request.WithContext(WithIdentity(c.Request.Context(), "ops@example.com"))
		c.Status(http.StatusOK)
	})

	serve(router, "/accounts")
	serve(router, "/track")

	entries := recorded.FilterMessage("request served").All()
	require.Len(t, entries, 2)
	assert.Equal(t, "checkout", entries[0].ContextMap()["caller"])
	assert.Equal(t, "ops@example.com", entries[1].ContextMap()["caller"])
}

func TestGinMiddleware_QuietPaths(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, recorded := observer.New(zapcore.DebugLevel)

	router := gin.New()
	router.Use(GinMiddleware(zap.New(core), WithQuietPaths("/health")))
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/quote", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(router, "/health")
	serve(router, "/quote")

	entries := recorded.FilterMessage("request served").All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, zapcore.InfoLevel, entries[1].Level)
}

func TestGinMiddleware_PropagatesLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, recorded := observer.New(zapcore.InfoLevel)

	router := gin.New()
	router.Use(withRequestID("req-9"), GinMiddleware(zap.New(core)))
	router.GET("/test", func(c *gin.Context) {
		L(c.Request.Context()).Info("from handler")
		GetGinLogger(c).Info("from gin logger")
		c.Status(http.StatusNoContent)
	})

	serve(router, "/test")

	entry := findEntry(recorded.All(), "from handler")
	require.NotNil(t, entry)
	assert.Equal(t, "req-9", entry.ContextMap()["request_id"])
	assert.NotNil(t, findEntry(recorded.All(), "from gin logger"))
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, recorded := observer.New(zapcore.ErrorLevel)

	router := gin.New()
	router.Use(withRequestID("req-boom"), Recovery(zap.New(core)))
	router.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})

	w := serve(router, "/panic")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"ERR_INTERNAL"`)
	assert.Contains(t, w.Body.String(), `"req-boom"`)

	entry := findEntry(recorded.All(), "handler panicked")
	require.NotNil(t, entry)
	assert.Equal(t, "boom", entry.ContextMap()["panic"])
}

func TestGetGinLogger_Missing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.NotNil(t, GetGinLogger(c))
}
