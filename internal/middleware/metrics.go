package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/go-petr/bank-registry/internal/metrics"
)

// RequestMetrics records request latency by matched route.
func RequestMetrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		m.ObserveRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
