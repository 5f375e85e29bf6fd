// Package evaluation runs the three layer scorers for one candidate and fuses
// their scores into an immutable Evaluation.
package evaluation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/okian/hireloop/internal/domain/model"
	"github.com/okian/hireloop/internal/domain/scoring"
	"github.com/okian/hireloop/pkg/metrics"
)

// Request carries the inputs of one assessment attempt.
type Request struct {
	Candidate  *model.Candidate
	Job        *model.JobPosting
	Transcript string
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithClock overrides the time source used for CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// WithIDGenerator overrides the evaluation id generator.
func WithIDGenerator(gen func() string) Option {
	return func(o *Orchestrator) {
		if gen != nil {
			o.newID = gen
		}
	}
}

// Orchestrator fans out to the layer scorers and fuses their results.
type Orchestrator struct {
	screening  scoring.Scorer
	technical  scoring.Scorer
	behavioral scoring.Scorer
	now        func() time.Time
	newID      func() string
}

// NewOrchestrator wires one scorer per layer.
func NewOrchestrator(screening, technical, behavioral scoring.Scorer, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		screening:  screening,
		technical:  technical,
		behavioral: behavioral,
		now:        func() time.Time { return time.Now().UTC() },
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// NewDefaultOrchestrator builds the three standard scorers sharing opts.
func NewDefaultOrchestrator(scorerOpts []scoring.Option, opts ...Option) *Orchestrator {
	return NewOrchestrator(
		scoring.NewScreeningScorer(scorerOpts...),
		scoring.NewTechnicalScorer(scorerOpts...),
		scoring.NewBehavioralScorer(scorerOpts...),
		opts...,
	)
}

// Evaluate scores all three layers concurrently and returns a new Evaluation
// fused with weights. A scorer error fails the whole evaluation.
func (o *Orchestrator) Evaluate(ctx context.Context, req Request, weights model.WeightVector) (model.Evaluation, error) {
	start := time.Now()
	ev, err := o.evaluate(ctx, req, weights)
	status := "completed"
	if err != nil {
		status = "failed"
	}
	metrics.RecordEvaluation(status, float64(time.Since(start).Milliseconds()))
	return ev, err
}

func (o *Orchestrator) evaluate(ctx context.Context, req Request, weights model.WeightVector) (model.Evaluation, error) {
	if req.Candidate == nil || req.Job == nil {
		return model.Evaluation{}, ErrMissingInput
	}
	if err := weights.Validate(); err != nil {
		return model.Evaluation{}, fmt.Errorf("evaluation weights: %w", err)
	}

	in := scoring.Input{Candidate: req.Candidate, Job: req.Job, Transcript: req.Transcript}
	var results [3]model.LayerResult

	g, gctx := errgroup.WithContext(ctx)
	for i, s := range []scoring.Scorer{o.screening, o.technical, o.behavioral} {
		g.Go(func() error {
			res, err := s.Score(gctx, in)
			if err != nil {
				return fmt.Errorf("%w: %s: %w", ErrScorerFailed, s.Layer(), err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return model.Evaluation{}, err
	}

	screening, technical, behavioral := results[0], results[1], results[2]
	return model.Evaluation{
		ID:              o.newID(),
		CandidateID:     req.Candidate.ID,
		JobID:           req.Job.ID,
		ScreeningScore:  screening.Score,
		TechnicalScore:  technical.Score,
		BehavioralScore: behavioral.Score,
		FinalScore:      weights.Fuse(screening.Score, technical.Score, behavioral.Score),
		Screening:       screening,
		Technical:       technical,
		Behavioral:      behavioral,
		Weights:         weights,
		CreatedAt:       o.now(),
	}, nil
}
