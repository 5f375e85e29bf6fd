// Package scoring turns candidate, job and transcript data into one
// normalized LayerResult per assessment layer.
//
// Each scorer asks a Provider for a strict JSON assessment and falls back to
// a deterministic local heuristic on provider error, timeout or schema
// mismatch. Callers never see provider failures.
package scoring

import (
	"context"
	"errors"
	"time"

	"github.com/okian/hireloop/internal/domain/model"
	"github.com/okian/hireloop/pkg/logger"
	"github.com/okian/hireloop/pkg/metrics"
)

const defaultTimeout = 30 * time.Second

// Provider generates text for a prompt. Implementations wrap a language-model API.
type Provider interface {
	Name() string
	Generate(ctx context.Context, prompt, systemInstruction string) (string, error)
}

// Input is the data one layer scorer needs.
type Input struct {
	Candidate  *model.Candidate
	Job        *model.JobPosting
	Transcript string
}

// Scorer produces one LayerResult.
type Scorer interface {
	Layer() model.Layer
	// Score returns an error only when the fallback cannot run either.
	Score(ctx context.Context, in Input) (model.LayerResult, error)
}

// Option configures a layer scorer.
type Option func(*layerScorer)

// WithProvider sets the provider consulted before the fallback.
func WithProvider(p Provider) Option {
	return func(s *layerScorer) {
		s.provider = p
	}
}

// WithTimeout bounds one provider call.
func WithTimeout(d time.Duration) Option {
	return func(s *layerScorer) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithLogger sets the logger used to report fallbacks.
func WithLogger(l logger.Logger) Option {
	return func(s *layerScorer) {
		if l != nil {
			s.log = l
		}
	}
}

// layerScorer holds the provider-then-fallback flow shared by all layers.
type layerScorer struct {
	layer    model.Layer
	provider Provider
	timeout  time.Duration
	log      logger.Logger

	prompt   func(Input) string
	system   string
	keys     []string
	pass     func(score float64) bool
	fallback func(Input) model.LayerResult
}

func newLayerScorer(base layerScorer, opts ...Option) *layerScorer {
	s := base
	s.timeout = defaultTimeout
	s.log = logger.Nop()
	for _, opt := range opts {
		opt(&s)
	}
	return &s
}

// NewScreeningScorer builds the profile screening scorer.
func NewScreeningScorer(opts ...Option) Scorer {
	return newLayerScorer(layerScorer{
		layer:    model.LayerScreening,
		prompt:   screeningPrompt,
		system:   systemInstruction,
		keys:     screeningMetricKeys,
		pass:     screeningPassed,
		fallback: screeningFallback,
	}, opts...)
}

// NewTechnicalScorer builds the technical interview scorer.
func NewTechnicalScorer(opts ...Option) Scorer {
	return newLayerScorer(layerScorer{
		layer:    model.LayerTechnical,
		prompt:   technicalPrompt,
		system:   systemInstruction,
		keys:     technicalMetricKeys,
		pass:     interviewPassed,
		fallback: technicalFallback,
	}, opts...)
}

// NewBehavioralScorer builds the behavioral interview scorer.
func NewBehavioralScorer(opts ...Option) Scorer {
	return newLayerScorer(layerScorer{
		layer:    model.LayerBehavioral,
		prompt:   behavioralPrompt,
		system:   systemInstruction,
		keys:     behavioralMetricKeys,
		pass:     interviewPassed,
		fallback: behavioralFallback,
	}, opts...)
}

func (s *layerScorer) Layer() model.Layer { return s.layer }

// Score asks the provider first and falls back on any failure.
func (s *layerScorer) Score(ctx context.Context, in Input) (model.LayerResult, error) {
	if in.Candidate == nil {
		return model.LayerResult{}, ErrNilCandidate
	}
	start := time.Now()

	res, err := s.fromProvider(ctx, in)
	if err != nil {
		var perr *ProviderError
		if errors.As(err, &perr) && !errors.Is(err, ErrNoProvider) {
			metrics.RecordProviderError(perr.Provider, string(s.layer), reason(err))
			s.log.Warn(ctx, "provider failed, using fallback",
				logger.String("layer", string(s.layer)),
				logger.String("provider", perr.Provider),
				logger.Error(err))
		}
		res = s.fallback(in)
		res.Source = model.SourceFallback
	}

	res.Layer = s.layer
	res.DurationMS = float64(time.Since(start).Microseconds()) / 1000
	metrics.RecordLayerResult(string(s.layer), res.Source, res.DurationMS)
	return res, nil
}

func (s *layerScorer) fromProvider(ctx context.Context, in Input) (model.LayerResult, error) {
	if s.provider == nil {
		return model.LayerResult{}, &ProviderError{Provider: "none", Layer: s.layer, Err: ErrNoProvider}
	}
	name := s.provider.Name()

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.provider.Generate(callCtx, s.prompt(in), s.system)
	if err != nil {
		return model.LayerResult{}, &ProviderError{Provider: name, Layer: s.layer, Err: err}
	}

	res, err := parseLayerResult(raw, s.keys)
	if err != nil {
		return model.LayerResult{}, &ProviderError{Provider: name, Layer: s.layer, Err: err}
	}
	if !res.passedSet {
		res.Passed = s.pass(res.Score)
	}
	res.Source = name
	return res.LayerResult, nil
}

func reason(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, ErrMalformedResponse):
		return "malformed"
	case errors.Is(err, ErrSchemaMismatch):
		return "schema"
	default:
		return "error"
	}
}
