package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/okian/hireloop/internal/domain/analytics"
)

// handleRollup serves POST /analytics/daily/:date.
func (s *Server) handleRollup(c *gin.Context) {
	const op = "api.rollup"
	date, err := analytics.ParseDate(c.Param("date"))
	if err != nil {
		s.writeError(c, Wrap(op, err))
		return
	}
	m, err := s.deps.RollupDaily(c.Request.Context(), date)
	if err != nil {
		s.writeError(c, Wrap(op, err))
		return
	}
	writeData(c, http.StatusOK, m)
}

// handleSummary serves GET /analytics/summary?from=&to=. Without bounds it
// covers the last seven days ending today.
func (s *Server) handleSummary(c *gin.Context) {
	const op = "api.summary"
	to := s.now()
	if raw := c.Query("to"); raw != "" {
		d, err := analytics.ParseDate(raw)
		if err != nil {
			s.writeError(c, Wrap(op, err))
			return
		}
		to = d
	}
	from := to.AddDate(0, 0, -(defaultSummaryDays - 1))
	if raw := c.Query("from"); raw != "" {
		d, err := analytics.ParseDate(raw)
		if err != nil {
			s.writeError(c, Wrap(op, err))
			return
		}
		from = d
	}
	sum, err := s.deps.Summarize(c.Request.Context(), from, to)
	if err != nil {
		s.writeError(c, Wrap(op, err))
		return
	}
	writeData(c, http.StatusOK, sum)
}
