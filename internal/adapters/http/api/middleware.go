package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/okian/hireloop/pkg/metrics"
)

// MetricsMiddleware records request count, latency and error class per route.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		status := c.Writer.Status()
		code := strconv.Itoa(status)
		metrics.RecordHTTPRequest(endpoint, c.Request.Method, code)
		metrics.RecordHTTPRequestDuration(endpoint, c.Request.Method, code, float64(time.Since(start).Milliseconds()))
		if status >= http.StatusBadRequest {
			metrics.RecordErrorByComponent("http", errorType(status))
		}
	}
}

// errorType returns a standardized error class for an HTTP status code.
func errorType(status int) string {
	switch {
	case status >= http.StatusInternalServerError:
		return "server_error"
	case status == http.StatusTooManyRequests:
		return "rate_limit"
	case status == http.StatusNotFound:
		return "not_found"
	case status == http.StatusConflict:
		return "conflict"
	default:
		return "client_error"
	}
}
