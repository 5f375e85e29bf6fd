package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// handleAdapt serves POST /training/adapt.
func (s *Server) handleAdapt(c *gin.Context) {
	const op = "api.adapt"
	res, err := s.deps.Adapt(c.Request.Context(), "manual")
	if err != nil {
		s.writeError(c, Wrap(op, err))
		return
	}
	writeData(c, http.StatusOK, res)
}

// handleTrainingLogs serves GET /training/logs?limit=N.
func (s *Server) handleTrainingLogs(c *gin.Context) {
	const op = "api.training_logs"
	n, err := s.limit(c, defaultTrainingLogs)
	if err != nil {
		s.writeError(c, WrapKind(op, ErrBadRequest, err))
		return
	}
	logs, err := s.deps.TrainingLogs(c.Request.Context(), n)
	if err != nil {
		s.writeError(c, Wrap(op, err))
		return
	}
	writeData(c, http.StatusOK, logs)
}

// handleCurrentWeights serves GET /weights/current.
func (s *Server) handleCurrentWeights(c *gin.Context) {
	const op = "api.current_weights"
	w, err := s.deps.CurrentWeights(c.Request.Context())
	if err != nil {
		s.writeError(c, Wrap(op, err))
		return
	}
	writeData(c, http.StatusOK, w)
}
