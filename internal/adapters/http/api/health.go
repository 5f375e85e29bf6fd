package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/hireloop/pkg/metrics"
)

func (s *Server) handleHealth(c *gin.Context) {
	writeData(c, http.StatusOK, gin.H{"status": "ok"})
}

// metricsHandler serves the custom Prometheus registry.
func metricsHandler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
}
