// Package service wires the evaluation loop together and implements the
// dependencies required by the HTTP API and the CLI.
package service

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/okian/hireloop/internal/adapters/export"
	"github.com/okian/hireloop/internal/adapters/mq/queue"
	"github.com/okian/hireloop/internal/adapters/mq/worker"
	"github.com/okian/hireloop/internal/adapters/provider/anthropic"
	"github.com/okian/hireloop/internal/adapters/provider/gemini"
	"github.com/okian/hireloop/internal/adapters/provider/vertex"
	"github.com/okian/hireloop/internal/adapters/repository"
	"github.com/okian/hireloop/internal/adapters/repository/gormstore"
	"github.com/okian/hireloop/internal/config"
	"github.com/okian/hireloop/internal/domain/adaptation"
	"github.com/okian/hireloop/internal/domain/analytics"
	"github.com/okian/hireloop/internal/domain/dedupe"
	"github.com/okian/hireloop/internal/domain/evaluation"
	"github.com/okian/hireloop/internal/domain/model"
	"github.com/okian/hireloop/internal/domain/ranking"
	"github.com/okian/hireloop/internal/domain/scoring"
	"github.com/okian/hireloop/pkg/logger"
	"github.com/okian/hireloop/pkg/metrics"
)

const stopTimeout = 30 * time.Second

// Service implements the API dependencies for the evaluation loop.
type Service struct {
	mu  sync.RWMutex
	cfg *config.Config

	// Core components
	store        repository.Store
	deduper      dedupe.Deduper
	queue        *queue.InMemoryQueue
	pool         *worker.Pool
	provider     scoring.Provider
	orchestrator *evaluation.Orchestrator
	ranker       *ranking.Engine
	trainer      *adaptation.Engine
	aggregator   *analytics.Aggregator

	// State
	started bool
	cancel  context.CancelFunc
	loops   sync.WaitGroup
	now     func() time.Time

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore replaces the store selected from the configuration.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithProvider replaces the provider selected from the configuration.
func WithProvider(p scoring.Provider) Option {
	return func(s *Service) {
		if p != nil {
			s.provider = p
		}
	}
}

// WithClock overrides the time source of every component.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New builds every component from cfg. Background work begins with Start.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Service, error) {
	if cfg == nil {
		cfg = config.New()
	}
	s := &Service{
		cfg:    cfg,
		logger: logger.Nop(),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.store == nil {
		store, err := openStore(ctx, cfg)
		if err != nil {
			return nil, err
		}
		s.store = store
	}
	if s.provider == nil {
		p, err := newProvider(ctx, cfg)
		if err != nil {
			_ = s.store.Close()
			return nil, err
		}
		s.provider = p
	}

	scorerOpts := []scoring.Option{
		scoring.WithTimeout(cfg.ProviderTimeout()),
		scoring.WithLogger(s.logger.Named("scoring")),
	}
	if s.provider != nil {
		scorerOpts = append(scorerOpts, scoring.WithProvider(s.provider))
	}
	s.orchestrator = evaluation.NewDefaultOrchestrator(scorerOpts, evaluation.WithClock(s.now))
	s.ranker = ranking.NewEngine(s.store,
		ranking.WithConcurrency(cfg.RankingConcurrency),
		ranking.WithLogger(s.logger.Named("ranking")),
	)
	s.trainer = adaptation.NewEngine(s.store,
		adaptation.WithClock(s.now),
		adaptation.WithLogger(s.logger.Named("adaptation")),
	)
	s.aggregator = analytics.NewAggregator(s.store,
		analytics.WithUnitCosts(cfg.ProviderUnitCosts),
		analytics.WithClock(s.now),
		analytics.WithLogger(s.logger.Named("analytics")),
	)
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(cfg.DedupeSize))
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(cfg.QueueSize))
	s.pool = worker.NewPool(s.queue, s,
		worker.WithSize(cfg.WorkerCount),
		worker.WithJobTimeout(3*cfg.ProviderTimeout()),
		worker.WithLogger(s.logger.Named("worker")),
	)
	return s, nil
}

func openStore(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	if cfg.DatabaseURL == "" {
		return repository.NewMemStore(), nil
	}
	store, err := gormstore.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return store, nil
}

// newProvider returns nil for ProviderNone; every layer then uses its
// fallback scorer.
func newProvider(ctx context.Context, cfg *config.Config) (scoring.Provider, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		return gemini.New(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	case config.ProviderVertex:
		return vertex.New(ctx, cfg.VertexProject, cfg.VertexLocation, cfg.VertexModel)
	case config.ProviderAnthropic:
		return anthropic.New(cfg.AnthropicAPIKey, cfg.AnthropicModel)
	case config.ProviderNone, "":
		return nil, nil
	}
	return nil, fmt.Errorf("%w: unknown provider %q", config.ErrInvalidConfig, cfg.Provider)
}

// Start launches the worker pool and the schedulers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.logger.Info(ctx, "starting evaluation service...")

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.pool.Start(runCtx)
	s.startSchedulers(runCtx)

	s.started = true
	s.logger.Info(ctx, "evaluation service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queueSize", s.queue.Cap()),
		logger.Int("dedupeSize", s.cfg.DedupeSize),
		logger.String("provider", s.providerName()),
		logger.Bool("autoRank", s.cfg.AutoRank),
	)
	return nil
}

// Stop drains queued requests, stops the schedulers and closes the store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()

	if s.started {
		s.logger.Info(ctx, "stopping evaluation service...")
		if err := s.pool.Shutdown(ctx); err != nil {
			s.logger.Warn(ctx, "worker pool did not drain", logger.Error(err))
		}
		s.cancel()
		s.loops.Wait()
		s.started = false
	}

	if c, ok := s.provider.(io.Closer); ok {
		_ = c.Close()
	}
	if err := s.store.Close(); err != nil {
		s.logger.Warn(ctx, "store close failed", logger.Error(err))
	}
	s.logger.Info(ctx, "evaluation service stopped")
}

// Process evaluates one queued request and stores the result. With AutoRank
// the job's leaderboard is refreshed afterwards.
func (s *Service) Process(ctx context.Context, req model.EvaluationRequest) error {
	cand, err := s.store.GetCandidate(ctx, req.CandidateID)
	if err != nil {
		return fmt.Errorf("request %s: candidate %s: %w", req.RequestID, req.CandidateID, err)
	}
	job, err := s.store.GetJob(ctx, req.JobID)
	if err != nil {
		return fmt.Errorf("request %s: job %s: %w", req.RequestID, req.JobID, err)
	}
	weights, err := adaptation.CurrentWeights(ctx, s.store)
	if err != nil {
		return fmt.Errorf("request %s: %w", req.RequestID, err)
	}

	ev, err := s.orchestrator.Evaluate(ctx, evaluation.Request{
		Candidate:  &cand,
		Job:        &job,
		Transcript: req.Transcript,
	}, weights)
	if err != nil {
		return fmt.Errorf("request %s: %w", req.RequestID, err)
	}
	if err := s.store.InsertEvaluation(ctx, ev); err != nil {
		return fmt.Errorf("request %s: store evaluation: %w", req.RequestID, err)
	}
	s.logger.Debug(ctx, "evaluation stored",
		logger.String("requestID", req.RequestID),
		logger.String("evaluationID", ev.ID),
		logger.Float64("finalScore", ev.FinalScore),
	)

	if s.cfg.AutoRank {
		if _, err := s.ranker.Rank(ctx, job.ID); err != nil {
			s.logger.Warn(ctx, "auto rank failed", logger.String("jobID", job.ID), logger.Error(err))
		}
	}
	return nil
}

// Evaluate runs one evaluation synchronously, bypassing the queue.
func (s *Service) Evaluate(ctx context.Context, req model.EvaluationRequest) error {
	return s.Process(ctx, req)
}

// SeenAndRecord reports whether a request id was already accepted.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	return s.deduper.SeenAndRecord(ctx, id)
}

// Unrecord forgets a request id so it may be resubmitted.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// Size returns the number of remembered request ids.
func (s *Service) Size() int64 {
	return s.deduper.Size()
}

// Enqueue hands req to the worker pool without blocking.
func (s *Service) Enqueue(ctx context.Context, req model.EvaluationRequest) error {
	return s.queue.Enqueue(ctx, req)
}

// RegisterCandidate creates or replaces a candidate.
func (s *Service) RegisterCandidate(ctx context.Context, c model.Candidate) (model.Candidate, error) {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.now()
	}
	if err := s.store.UpsertCandidate(ctx, c); err != nil {
		return model.Candidate{}, fmt.Errorf("register candidate %s: %w", c.ID, err)
	}
	metrics.RecordCandidateRegistered()
	return c, nil
}

// RegisterJob creates or replaces a job posting.
func (s *Service) RegisterJob(ctx context.Context, j model.JobPosting) (model.JobPosting, error) {
	if j.CreatedAt.IsZero() {
		j.CreatedAt = s.now()
	}
	if err := s.store.UpsertJob(ctx, j); err != nil {
		return model.JobPosting{}, fmt.Errorf("register job %s: %w", j.ID, err)
	}
	return j, nil
}

// SubmitFeedback stores one employer feedback row, unconsumed. The candidate,
// and the job when one is named, must already be registered.
func (s *Service) SubmitFeedback(ctx context.Context, fb model.Feedback) (model.Feedback, error) {
	if fb.SubmittedAt.IsZero() {
		fb.SubmittedAt = s.now()
	}
	fb.UsedForTraining = false
	if err := fb.Validate(); err != nil {
		return model.Feedback{}, err
	}
	if _, err := s.store.GetCandidate(ctx, fb.CandidateID); err != nil {
		return model.Feedback{}, fmt.Errorf("submit feedback %s: %w", fb.ID, err)
	}
	if fb.JobID != "" {
		if _, err := s.store.GetJob(ctx, fb.JobID); err != nil {
			return model.Feedback{}, fmt.Errorf("submit feedback %s: %w", fb.ID, err)
		}
	}
	if err := s.store.InsertFeedback(ctx, fb); err != nil {
		return model.Feedback{}, fmt.Errorf("submit feedback %s: %w", fb.ID, err)
	}
	metrics.RecordFeedbackReceived(string(fb.Decision))
	return fb, nil
}

// RankJob recomputes the leaderboard of a registered job.
func (s *Service) RankJob(ctx context.Context, jobID string) (ranking.Result, error) {
	if _, err := s.store.GetJob(ctx, jobID); err != nil {
		return ranking.Result{}, fmt.Errorf("rank job %s: %w", jobID, err)
	}
	return s.ranker.Rank(ctx, jobID)
}

// Leaderboard returns the persisted top rows of a registered job.
func (s *Service) Leaderboard(ctx context.Context, jobID string, limit int) ([]model.Ranking, error) {
	if _, err := s.store.GetJob(ctx, jobID); err != nil {
		return nil, fmt.Errorf("leaderboard %s: %w", jobID, err)
	}
	return s.ranker.Leaderboard(ctx, jobID, limit)
}

// ExportLeaderboard writes the full persisted leaderboard of jobID as xlsx.
func (s *Service) ExportLeaderboard(ctx context.Context, jobID string, w io.Writer) error {
	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return fmt.Errorf("export leaderboard %s: %w", jobID, err)
	}
	rows, err := s.store.ListRankings(ctx, jobID, 0)
	if err != nil {
		return fmt.Errorf("export leaderboard %s: %w", jobID, err)
	}
	return export.WriteLeaderboard(w, job, rows, s.now())
}

// Adapt runs one training pass.
func (s *Service) Adapt(ctx context.Context, trigger string) (adaptation.Result, error) {
	return s.trainer.Adapt(ctx, trigger)
}

// PendingFeedback returns the number of feedback rows not yet trained on.
func (s *Service) PendingFeedback(ctx context.Context) (int, error) {
	return s.trainer.Pending(ctx)
}

// TrainingLogs returns the newest training logs.
func (s *Service) TrainingLogs(ctx context.Context, limit int) ([]model.TrainingLog, error) {
	return s.store.ListTrainingLogs(ctx, model.TrainingLogFilter{Limit: limit})
}

// CurrentWeights returns the vector new evaluations are fused with.
func (s *Service) CurrentWeights(ctx context.Context) (model.WeightVector, error) {
	return adaptation.CurrentWeights(ctx, s.store)
}

// RollupDaily recomputes the metric row of the UTC day containing date.
func (s *Service) RollupDaily(ctx context.Context, date time.Time) (model.DailyMetric, error) {
	return s.aggregator.RollupDaily(ctx, date)
}

// Summarize aggregates daily rows between from and to, inclusive.
func (s *Service) Summarize(ctx context.Context, from, to time.Time) (analytics.Summary, error) {
	return s.aggregator.Summarize(ctx, from, to)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(_ context.Context) map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	queueLen := s.queue.Len()
	stats := map[string]any{
		"started":       s.started,
		"provider":      s.providerName(),
		"workerCount":   s.pool.Size(),
		"queueCapacity": s.queue.Cap(),
		"queueLength":   queueLen,
		"dedupeSize":    s.deduper.Size(),
		"processed":     s.pool.Processed(),
		"failed":        s.pool.Failed(),
	}
	if st, ok := s.store.(interface{ Stats() map[string]int }); ok {
		stats["records"] = st.Stats()
	}

	metrics.UpdateQueueSize(queueLen)
	return stats
}

func (s *Service) providerName() string {
	if s.provider == nil {
		return config.ProviderNone
	}
	return s.provider.Name()
}
