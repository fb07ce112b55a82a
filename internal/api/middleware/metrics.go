package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"uiet-connect/backend/pkg/metrics"
)

// Metrics records request latency by route template. Unmatched routes are
// grouped under "unmatched" to keep label cardinality bounded.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.HTTPDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
