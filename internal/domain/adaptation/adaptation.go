// Package adaptation nudges the layer weight vector toward employer hiring
// decisions with bounded heuristic steps.
package adaptation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/hireloop/internal/domain/model"
	"github.com/okian/hireloop/internal/domain/outcome"
	"github.com/okian/hireloop/pkg/logger"
	"github.com/okian/hireloop/pkg/metrics"
)

// Adjustment rules.
const (
	// Step is the largest change one run applies to a single weight.
	Step = 0.05
	// DominanceThreshold is the pattern proportion that triggers a nudge.
	DominanceThreshold = 0.5
	defaultRating      = 3.0
)

// Skip reasons.
const (
	ReasonInsufficientData = "insufficient_data"
)

// Store is the subset of the record store the engine needs.
type Store interface {
	ListEvaluations(ctx context.Context, f model.EvaluationFilter) ([]model.Evaluation, error)
	ListFeedback(ctx context.Context, f model.FeedbackFilter) ([]model.Feedback, error)
	CurrentWeights(ctx context.Context) (model.WeightVector, error)
	CommitTraining(ctx context.Context, log model.TrainingLog, w model.WeightVector, feedbackIDs []string) (model.WeightVector, error)
	InsertTrainingLog(ctx context.Context, log model.TrainingLog) error
}

// Pattern is the normalized share of each feedback rating dimension.
type Pattern struct {
	Technical     float64 `json:"technical"`
	Communication float64 `json:"communication"`
	CultureFit    float64 `json:"culture_fit"`
}

// Result describes one Adapt call.
type Result struct {
	Status          model.TrainingStatus `json:"status"`
	Reason          string               `json:"reason,omitempty"`
	TrainingLogID   string               `json:"training_log_id,omitempty"`
	FeedbackCount   int                  `json:"feedback_count"`
	EvaluationCount int                  `json:"evaluation_count"`
	AccuracyBefore  float64              `json:"accuracy_before"`
	AccuracyAfter   float64              `json:"accuracy_after"`
	Pattern         Pattern              `json:"pattern"`
	PreviousWeights model.WeightVector   `json:"previous_weights"`
	Weights         model.WeightVector   `json:"weights"`
	Delta           model.WeightDelta    `json:"delta"`
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithLogger sets the engine logger.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// Engine runs training. At most one run is in flight per Engine.
type Engine struct {
	store Store
	mu    sync.Mutex
	now   func() time.Time
	log   logger.Logger
}

// NewEngine creates an adaptation engine over store.
func NewEngine(store Store, opts ...Option) *Engine {
	e := &Engine{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
		log:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CurrentWeights returns the committed vector, or the defaults before the
// first commit.
func CurrentWeights(ctx context.Context, store interface {
	CurrentWeights(ctx context.Context) (model.WeightVector, error)
}) (model.WeightVector, error) {
	w, err := store.CurrentWeights(ctx)
	if errors.Is(err, model.ErrNotFound) {
		return model.DefaultWeights(), nil
	}
	if err != nil {
		return model.WeightVector{}, fmt.Errorf("current weights: %w", err)
	}
	return w, nil
}

// Pending returns the number of feedback rows not yet used for training.
func (e *Engine) Pending(ctx context.Context) (int, error) {
	fb, err := e.store.ListFeedback(ctx, model.FeedbackFilter{OnlyUnused: true})
	if err != nil {
		return 0, fmt.Errorf("count unused feedback: %w", err)
	}
	return len(fb), nil
}

// Adapt consumes all unused feedback and commits a new weight vector. A
// concurrent call returns ErrTrainingInProgress. Zero unused feedback yields
// a skipped result with no writes. Any other failure is logged as a failed
// training run and returned; the previous vector stays current.
func (e *Engine) Adapt(ctx context.Context, trigger string) (Result, error) {
	if !e.mu.TryLock() {
		return Result{}, ErrTrainingInProgress
	}
	defer e.mu.Unlock()

	started := e.now()
	res, err := e.adapt(ctx, trigger, started)
	elapsed := e.now().Sub(started)

	switch {
	case err != nil:
		e.recordFailure(ctx, trigger, started, elapsed, res, err)
		metrics.RecordTrainingRun(string(model.TrainingFailed), float64(elapsed.Milliseconds()))
		return Result{Status: model.TrainingFailed}, err
	case res.Status == model.TrainingSkipped:
		metrics.RecordTrainingRun(string(model.TrainingSkipped), float64(elapsed.Milliseconds()))
		e.log.Info(ctx, "training skipped", logger.String("trigger", trigger), logger.String("reason", res.Reason))
		return res, nil
	}

	metrics.RecordTrainingRun(string(model.TrainingCompleted), float64(elapsed.Milliseconds()))
	metrics.RecordFeedbackConsumed(res.FeedbackCount)
	metrics.UpdateModelAccuracy(res.AccuracyAfter)
	metrics.UpdateCurrentWeights(res.Weights.Screening, res.Weights.Technical, res.Weights.Behavioral)
	e.log.Info(ctx, "training completed",
		logger.String("trigger", trigger),
		logger.Int("feedback", res.FeedbackCount),
		logger.Float64("accuracy_before", res.AccuracyBefore),
		logger.Float64("accuracy_after", res.AccuracyAfter),
		logger.Int("weights_version", res.Weights.Version),
		logger.Any("delta", res.Delta),
		logger.Duration("took", elapsed))
	return res, nil
}

func (e *Engine) adapt(ctx context.Context, trigger string, started time.Time) (Result, error) {
	evals, err := e.store.ListEvaluations(ctx, model.EvaluationFilter{})
	if err != nil {
		return Result{}, fmt.Errorf("load evaluations: %w", err)
	}
	feedback, err := e.store.ListFeedback(ctx, model.FeedbackFilter{OnlyUnused: true})
	if err != nil {
		return Result{}, fmt.Errorf("load unused feedback: %w", err)
	}
	if len(feedback) == 0 {
		return Result{Status: model.TrainingSkipped, Reason: ReasonInsufficientData, EvaluationCount: len(evals)}, nil
	}

	res := Result{FeedbackCount: len(feedback), EvaluationCount: len(evals)}
	previous, err := CurrentWeights(ctx, e.store)
	if err != nil {
		return res, err
	}
	res.PreviousWeights = previous

	latest := outcome.LatestByCandidate(evals)
	res.AccuracyBefore = outcome.Tally(outcome.Match(feedback, latest, outcome.FinalScore)).Accuracy()

	res.Pattern = PatternOf(feedback)
	next := Nudge(model.DefaultWeights(), res.Pattern)
	next.ID = uuid.NewString()
	next.SubWeights = previous.SubWeights
	next.CreatedAt = started
	res.AccuracyAfter = outcome.Tally(outcome.Match(feedback, latest, outcome.Rescore(next))).Accuracy()

	ids := make([]string, len(feedback))
	for i, fb := range feedback {
		ids[i] = fb.ID
	}
	log := model.TrainingLog{
		ID:              uuid.NewString(),
		Trigger:         trigger,
		Status:          model.TrainingCompleted,
		FeedbackCount:   res.FeedbackCount,
		EvaluationCount: res.EvaluationCount,
		AccuracyBefore:  res.AccuracyBefore,
		AccuracyAfter:   res.AccuracyAfter,
		PreviousWeights: previous,
		Delta:           previous.Diff(next),
		StartedAt:       started,
		Duration:        e.now().Sub(started),
	}
	stored, err := e.store.CommitTraining(ctx, log, next, ids)
	if err != nil {
		return res, fmt.Errorf("commit training: %w", err)
	}

	res.Status = model.TrainingCompleted
	res.TrainingLogID = log.ID
	res.Weights = stored
	res.Delta = log.Delta
	return res, nil
}

func (e *Engine) recordFailure(ctx context.Context, trigger string, started time.Time, elapsed time.Duration, partial Result, cause error) {
	e.log.Error(ctx, "training failed", logger.String("trigger", trigger), logger.Error(cause))
	failed := model.TrainingLog{
		ID:              uuid.NewString(),
		Trigger:         trigger,
		Status:          model.TrainingFailed,
		FeedbackCount:   partial.FeedbackCount,
		EvaluationCount: partial.EvaluationCount,
		AccuracyBefore:  partial.AccuracyBefore,
		PreviousWeights: partial.PreviousWeights,
		Weights:         partial.PreviousWeights,
		Error:           cause.Error(),
		StartedAt:       started,
		Duration:        elapsed,
	}
	if err := e.store.InsertTrainingLog(ctx, failed); err != nil {
		metrics.RecordErrorByComponent("adaptation", "training_log")
		e.log.Error(ctx, "failed to record failed training run", logger.Error(err))
	}
}

// PatternOf averages the three rating dimensions and normalizes them to
// proportions. Missing ratings count as the neutral 3.
func PatternOf(feedback []model.Feedback) Pattern {
	tech, comm, culture := defaultRating, defaultRating, defaultRating
	if n := float64(len(feedback)); n > 0 {
		var st, sc, sf int
		for _, fb := range feedback {
			st += fb.TechnicalRating
			sc += fb.CommunicationRating
			sf += fb.CultureFitRating
		}
		tech, comm, culture = float64(st)/n, float64(sc)/n, float64(sf)/n
	}
	total := tech + comm + culture
	if total == 0 {
		return Pattern{Technical: 1.0 / 3, Communication: 1.0 / 3, CultureFit: 1.0 / 3}
	}
	return Pattern{Technical: tech / total, Communication: comm / total, CultureFit: culture / total}
}

// Nudge applies at most one bounded step to base and renormalizes. A dominant
// technical pattern shifts weight to the technical layer; a dominant
// communication pattern shifts it to the behavioral layer.
func Nudge(base model.WeightVector, p Pattern) model.WeightVector {
	next := base
	switch {
	case p.Technical > DominanceThreshold:
		next.Technical += Step
		next.Screening -= Step / 2
		next.Behavioral -= Step / 2
	case p.Communication > DominanceThreshold:
		next.Behavioral += Step
		next.Screening -= Step / 2
		next.Technical -= Step / 2
	}
	return next.Normalize()
}
