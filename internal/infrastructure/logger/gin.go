package logger

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const ginLoggerKey = "logger"

type accessLogOptions struct {
	quiet map[string]struct{}
}

// AccessLogOption configures GinMiddleware
type AccessLogOption func(*accessLogOptions)

// WithQuietPaths logs requests for the given paths at debug level,
// keeping probes and scrapes out of the default access log.
func WithQuietPaths(paths ...string) AccessLogOption {
	return func(o *accessLogOptions) {
		for _, p := range paths {
			o.quiet[p] = struct{}{}
		}
	}
}

// GinMiddleware writes one access log line per request and exposes a
// request-scoped logger through both the gin context and the request context.
// The line carries the matched route and the authenticated caller, if any.
func GinMiddleware(base *zap.Logger, opts ...AccessLogOption) gin.HandlerFunc {
	base = OrNop(base)
	o := accessLogOptions{quiet: make(map[string]struct{})}
	for _, opt := range opts {
		opt(&o)
	}

	return func(c *gin.Context) {
		start := time.Now()
		requestID := c.GetString(string(RequestIDKey))

		reqLogger := base.With(
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
		)
		c.Set(ginLoggerKey, reqLogger)

		ctx := WithContext(c.Request.Context(), reqLogger)
		if requestID != "" {
			ctx = WithRequestID(ctx, requestID)
		}
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.Int("bytes", c.Writer.Size()),
		}
		if route := c.FullPath(); route != "" {
			fields = append(fields, zap.String("route", route))
		}
		if q := c.Request.URL.RawQuery; q != "" {
			fields = append(fields, zap.String("query", q))
		}
		if caller := callerOf(c); caller != "" {
			fields = append(fields, zap.String("caller", caller))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.Strings("errors", c.Errors.Errors()))
		}

		if ce := reqLogger.Check(accessLevel(status, &o, c.Request.URL.Path), "request served"); ce != nil {
			ce.Write(fields...)
		}
	}
}

func accessLevel(status int, o *accessLogOptions, path string) zapcore.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return zapcore.ErrorLevel
	case status >= http.StatusBadRequest:
		return zapcore.WarnLevel
	}
	if _, ok := o.quiet[path]; ok {
		return zapcore.DebugLevel
	}
	return zapcore.InfoLevel
}

// callerOf reports the payment API client or courier token identity
// attached by the auth middleware.
func callerOf(c *gin.Context) string {
	ctx := c.Request.Context()
	if id := GetClientID(ctx); id != "" {
		return id
	}
	return GetIdentity(ctx)
}

// Recovery turns a handler panic into a 500 error envelope and logs the stack
func Recovery(base *zap.Logger) gin.HandlerFunc {
	base = OrNop(base)
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			requestID := c.GetString(string(RequestIDKey))
			base.Error("handler panicked",
				zap.String("request_id", requestID),
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.Any("panic", rec),
				zap.Stack("stacktrace"),
			)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":       "ERR_INTERNAL",
					"message":    "internal error",
					"request_id": requestID,
					"timestamp":  time.Now().UTC(),
				},
			})
		}()
		c.Next()
	}
}

// GetGinLogger returns the request-scoped logger set by GinMiddleware, or a no-op logger
func GetGinLogger(c *gin.Context) *zap.Logger {
	if zl, ok := c.Value(ginLoggerKey).(*zap.Logger); ok {
		return zl
	}
	return zap.NewNop()
}
