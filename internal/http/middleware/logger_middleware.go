package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/saradorri/edrewards/internal/infrastructure/logger"
	"github.com/saradorri/edrewards/internal/infrastructure/metrics"
)

// LoggerMiddleware logs HTTP requests in structured format and records request metrics
func LoggerMiddleware(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		latency := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, route).Observe(latency.Seconds())

		log.WithRequest(
			c.Request.Context(),
			c.Request.Method,
			c.Request.URL.Path,
			c.ClientIP(),
			status,
			latency.String(),
			c.Writer.Size(),
		).Info("HTTP Request Processed")
	}
}
