// Package api exposes the evaluation loop over HTTP with gin.
package api

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/okian/hireloop/internal/domain/adaptation"
	"github.com/okian/hireloop/internal/domain/analytics"
	"github.com/okian/hireloop/internal/domain/dedupe"
	"github.com/okian/hireloop/internal/domain/model"
	"github.com/okian/hireloop/internal/domain/ranking"
	"github.com/okian/hireloop/pkg/logger"
)

const (
	defaultMaxLimit     = 100
	defaultLeaderboard  = 10
	defaultTrainingLogs = 20
	defaultSummaryDays  = 7
)

// IntakeDependencies accept candidates, jobs, evaluation requests and feedback.
type IntakeDependencies interface {
	dedupe.Deduper
	Enqueue(ctx context.Context, req model.EvaluationRequest) error
	RegisterCandidate(ctx context.Context, c model.Candidate) (model.Candidate, error)
	RegisterJob(ctx context.Context, j model.JobPosting) (model.JobPosting, error)
	SubmitFeedback(ctx context.Context, fb model.Feedback) (model.Feedback, error)
}

// RankingDependencies rank jobs and read leaderboards.
type RankingDependencies interface {
	RankJob(ctx context.Context, jobID string) (ranking.Result, error)
	Leaderboard(ctx context.Context, jobID string, limit int) ([]model.Ranking, error)
	ExportLeaderboard(ctx context.Context, jobID string, w io.Writer) error
}

// TrainingDependencies run and inspect weight adaptation.
type TrainingDependencies interface {
	Adapt(ctx context.Context, trigger string) (adaptation.Result, error)
	TrainingLogs(ctx context.Context, limit int) ([]model.TrainingLog, error)
	CurrentWeights(ctx context.Context) (model.WeightVector, error)
}

// AnalyticsDependencies roll up and summarize daily metrics.
type AnalyticsDependencies interface {
	RollupDaily(ctx context.Context, date time.Time) (model.DailyMetric, error)
	Summarize(ctx context.Context, from, to time.Time) (analytics.Summary, error)
}

// StatsProvider reports service statistics.
type StatsProvider interface {
	GetStats(ctx context.Context) map[string]any
}

// Dependencies is everything the handlers need.
type Dependencies interface {
	IntakeDependencies
	RankingDependencies
	TrainingDependencies
	AnalyticsDependencies
	StatsProvider
}

// Option configures a Server.
type Option func(*Server)

// WithMaxLimit caps leaderboard and log page sizes.
func WithMaxLimit(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxLimit = n
		}
	}
}

// WithLogger sets the server logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock overrides the time source for defaults such as submitted_at.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// Server wires HTTP routes for the business API.
type Server struct {
	deps     Dependencies
	maxLimit int
	log      logger.Logger
	now      func() time.Time
}

// NewServer creates a server over deps.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		deps:     deps,
		maxLimit: defaultMaxLimit,
		log:      logger.Nop(),
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns a gin engine with every route registered.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), MetricsMiddleware())
	s.Register(r)
	return r
}

// Register attaches all routes to r.
func (s *Server) Register(r gin.IRoutes) {
	r.GET("/healthz", s.handleHealth)
	r.GET("/metrics", metricsHandler())
	r.GET("/stats", s.handleStats)

	r.POST("/candidates", s.handleCreateCandidate)
	r.POST("/jobs", s.handleCreateJob)
	r.POST("/evaluations", s.handleSubmitEvaluation)
	r.POST("/feedback", s.handleSubmitFeedback)

	r.POST("/jobs/:id/rank", s.handleRankJob)
	r.GET("/jobs/:id/leaderboard", s.handleLeaderboard)
	r.GET("/jobs/:id/leaderboard.xlsx", s.handleLeaderboardExport)

	r.POST("/training/adapt", s.handleAdapt)
	r.GET("/training/logs", s.handleTrainingLogs)
	r.GET("/weights/current", s.handleCurrentWeights)

	r.POST("/analytics/daily/:date", s.handleRollup)
	r.GET("/analytics/summary", s.handleSummary)
}

type envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *errorBody `json:"error,omitempty"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeData(c *gin.Context, status int, data any) {
	c.JSON(status, envelope{Success: true, Data: data})
}

func (s *Server) writeError(c *gin.Context, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		s.log.Error(c.Request.Context(), "request failed",
			logger.String("path", c.FullPath()), logger.Error(err))
	}
	c.AbortWithStatusJSON(status, envelope{Error: &errorBody{Code: code, Message: err.Error()}})
}
