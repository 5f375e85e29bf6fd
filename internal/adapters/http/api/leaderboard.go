package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// handleRankJob serves POST /jobs/:id/rank.
func (s *Server) handleRankJob(c *gin.Context) {
	const op = "api.rank_job"
	res, err := s.deps.RankJob(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, Wrap(op, err))
		return
	}
	writeData(c, http.StatusOK, res)
}

// handleLeaderboard serves GET /jobs/:id/leaderboard?limit=N.
func (s *Server) handleLeaderboard(c *gin.Context) {
	const op = "api.leaderboard"
	n, err := s.limit(c, defaultLeaderboard)
	if err != nil {
		s.writeError(c, WrapKind(op, ErrBadRequest, err))
		return
	}
	rows, err := s.deps.Leaderboard(c.Request.Context(), c.Param("id"), n)
	if err != nil {
		s.writeError(c, Wrap(op, err))
		return
	}
	writeData(c, http.StatusOK, rows)
}

// handleLeaderboardExport serves GET /jobs/:id/leaderboard.xlsx.
func (s *Server) handleLeaderboardExport(c *gin.Context) {
	const op = "api.leaderboard_export"
	jobID := c.Param("id")
	var buf bytes.Buffer
	if err := s.deps.ExportLeaderboard(c.Request.Context(), jobID, &buf); err != nil {
		s.writeError(c, Wrap(op, err))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "leaderboard-"+jobID+".xlsx"))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// limit parses ?limit, applying def when absent and rejecting values above
// the configured maximum.
func (s *Server) limit(c *gin.Context, def int) (int, error) {
	raw := c.Query("limit")
	if raw == "" {
		return min(def, s.maxLimit), nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("limit must be a positive integer, got %q", raw)
	}
	if n > s.maxLimit {
		return 0, fmt.Errorf("%w: %d > %d", ErrLimitExceeded, n, s.maxLimit)
	}
	return n, nil
}

func errMissing(field string) error {
	return fmt.Errorf("missing %s", field)
}
