package middleware

import (
	"strconv"
	"time"

	"job_tracker/internal/observability"

	"github.com/gin-gonic/gin"
)

// PrometheusMiddleware tracks request count, latency and in-flight requests.
func PrometheusMiddleware(metrics *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metrics == nil {
			c.Next()
			return
		}

		metrics.HTTPRequestsInFlight.Inc()
		defer metrics.HTTPRequestsInFlight.Dec()

		start := time.Now()
		c.Next()
		duration := time.Since(start).Seconds()

		// Route pattern keeps label cardinality bounded.
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, endpoint, status).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, endpoint).Observe(duration)
	}
}
