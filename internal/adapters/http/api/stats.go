package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// handleStats serves GET /stats.
func (s *Server) handleStats(c *gin.Context) {
	writeData(c, http.StatusOK, s.deps.GetStats(c.Request.Context()))
}
