package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/deyjyotipriya/Shopabell-sub001/internal/infrastructure/metrics"
)

// HTTPMetrics records request count, latency and in-flight requests, labelled
// by route pattern so path parameters do not explode cardinality
func HTTPMetrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		done := m.RequestStarted()
		start := time.Now()

		c.Next()

		done()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
