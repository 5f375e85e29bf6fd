// Package analytics rolls up daily operational, accuracy and cost statistics
// and derives trends over a range of days.
package analytics

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/okian/hireloop/internal/domain/model"
	"github.com/okian/hireloop/internal/domain/outcome"
	"github.com/okian/hireloop/pkg/logger"
	"github.com/okian/hireloop/pkg/metrics"
)

const (
	// SampleSize bounds the feedback and evaluation windows used for the
	// fresh accuracy figures.
	SampleSize = 100
	// TrendThreshold is the absolute change between half-range means that
	// separates a trend from noise.
	TrendThreshold = 2.0
)

// Store is the subset of the record store the aggregator needs.
type Store interface {
	ListCandidates(ctx context.Context, f model.CandidateFilter) ([]model.Candidate, error)
	ListEvaluations(ctx context.Context, f model.EvaluationFilter) ([]model.Evaluation, error)
	ListFeedback(ctx context.Context, f model.FeedbackFilter) ([]model.Feedback, error)
	ListTrainingLogs(ctx context.Context, f model.TrainingLogFilter) ([]model.TrainingLog, error)
	UpsertDailyMetric(ctx context.Context, m model.DailyMetric) error
	ListDailyMetrics(ctx context.Context, from, to string) ([]model.DailyMetric, error)
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithUnitCosts sets the estimated cost of one call per provider name.
func WithUnitCosts(costs map[string]float64) Option {
	return func(a *Aggregator) {
		for k, v := range costs {
			a.unitCosts[k] = v
		}
	}
}

// WithClock overrides the time source used for UpdatedAt.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) {
		if now != nil {
			a.now = now
		}
	}
}

// WithLogger sets the aggregator logger.
func WithLogger(l logger.Logger) Option {
	return func(a *Aggregator) {
		if l != nil {
			a.log = l
		}
	}
}

// Aggregator computes DailyMetric rows and summaries.
type Aggregator struct {
	store     Store
	unitCosts map[string]float64
	now       func() time.Time
	log       logger.Logger
}

// NewAggregator creates an aggregator over store.
func NewAggregator(store Store, opts ...Option) *Aggregator {
	a := &Aggregator{
		store:     store,
		unitCosts: map[string]float64{},
		now:       func() time.Time { return time.Now().UTC() },
		log:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ParseDate parses a YYYY-MM-DD day key.
func ParseDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation(model.DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return d, nil
}

// RollupDaily computes and upserts the metric row for the UTC day containing
// date. Re-running it for the same day overwrites the row.
func (a *Aggregator) RollupDaily(ctx context.Context, date time.Time) (model.DailyMetric, error) {
	m, err := a.rollup(ctx, date)
	if err != nil {
		metrics.RecordRollup("error")
		metrics.RecordErrorByComponent("analytics", "rollup")
		a.log.Error(ctx, "daily rollup failed", logger.String("date", date.UTC().Format(model.DateLayout)), logger.Error(err))
		return model.DailyMetric{}, err
	}
	metrics.RecordRollup("ok")
	metrics.UpdateEstimatedCost(m.EstimatedCost)
	a.log.Info(ctx, "daily rollup stored",
		logger.String("date", m.Date),
		logger.Int("interviews", m.Interviews),
		logger.Float64("current_accuracy", m.CurrentAccuracy))
	return m, nil
}

func (a *Aggregator) rollup(ctx context.Context, date time.Time) (model.DailyMetric, error) {
	start, end := model.DayBounds(date)
	day := model.TimeRange{From: start, To: end}
	m := model.DailyMetric{Date: start.Format(model.DateLayout), ProviderCalls: map[string]int{}}

	candidates, err := a.store.ListCandidates(ctx, model.CandidateFilter{Created: day})
	if err != nil {
		return m, fmt.Errorf("list candidates: %w", err)
	}
	m.Applications = len(candidates)

	evals, err := a.store.ListEvaluations(ctx, model.EvaluationFilter{Created: day})
	if err != nil {
		return m, fmt.Errorf("list evaluations: %w", err)
	}
	m.Interviews = len(evals)
	var screeningMS, technicalMS, behavioralMS float64
	for _, e := range evals {
		screeningMS += e.Screening.DurationMS
		technicalMS += e.Technical.DurationMS
		behavioralMS += e.Behavioral.DurationMS
		for _, r := range e.LayerResults() {
			if r.FromProvider() {
				m.ProviderCalls[r.Source]++
			}
		}
	}
	if n := float64(len(evals)); n > 0 {
		m.AvgScreeningMS = round2(screeningMS / n)
		m.AvgTechnicalMS = round2(technicalMS / n)
		m.AvgBehavioralMS = round2(behavioralMS / n)
	}
	m.EstimatedCost = a.estimateCost(m.ProviderCalls)

	feedback, err := a.store.ListFeedback(ctx, model.FeedbackFilter{Submitted: day})
	if err != nil {
		return m, fmt.Errorf("list feedback: %w", err)
	}
	m.FeedbackCount = len(feedback)
	var ratings int
	for _, fb := range feedback {
		ratings += fb.OverallRating
		if fb.Decision == model.DecisionHire {
			m.Hires++
		}
	}
	if m.FeedbackCount > 0 {
		m.AvgRating = round2(float64(ratings) / float64(m.FeedbackCount))
	}
	if m.Interviews > 0 {
		m.FeedbackRate = round2(float64(m.FeedbackCount) / float64(m.Interviews) * 100)
	}

	logs, err := a.store.ListTrainingLogs(ctx, model.TrainingLogFilter{Status: model.TrainingCompleted, Limit: 1})
	if err != nil {
		return m, fmt.Errorf("list training logs: %w", err)
	}
	if len(logs) > 0 {
		m.ModelAccuracy = logs[0].AccuracyAfter
	}

	c, err := a.currentConfusion(ctx)
	if err != nil {
		return m, err
	}
	m.CurrentAccuracy = c.Accuracy()
	m.FalsePositiveRate = c.FalsePositiveRate()
	m.FalseNegativeRate = c.FalseNegativeRate()

	m.UpdatedAt = a.now()
	if err := a.store.UpsertDailyMetric(ctx, m); err != nil {
		return m, fmt.Errorf("upsert daily metric: %w", err)
	}
	return m, nil
}

func (a *Aggregator) currentConfusion(ctx context.Context) (outcome.Confusion, error) {
	feedback, err := a.store.ListFeedback(ctx, model.FeedbackFilter{Limit: SampleSize})
	if err != nil {
		return outcome.Confusion{}, fmt.Errorf("sample feedback: %w", err)
	}
	evals, err := a.store.ListEvaluations(ctx, model.EvaluationFilter{Limit: SampleSize})
	if err != nil {
		return outcome.Confusion{}, fmt.Errorf("sample evaluations: %w", err)
	}
	return outcome.Tally(outcome.Match(feedback, outcome.LatestByCandidate(evals), outcome.FinalScore)), nil
}

func (a *Aggregator) estimateCost(calls map[string]int) float64 {
	var cost float64
	for provider, n := range calls {
		cost += float64(n) * a.unitCosts[provider]
	}
	return math.Round(cost*1e4) / 1e4
}

// Trend classifies the direction of a metric over a range.
type Trend string

// Trend values.
const (
	TrendImproving Trend = "improving"
	TrendDeclining Trend = "declining"
	TrendStable    Trend = "stable"
)

// Trends groups the tracked trend classifications.
type Trends struct {
	Accuracy     Trend `json:"accuracy"`
	SuccessRate  Trend `json:"success_rate"`
	FeedbackRate Trend `json:"feedback_rate"`
}

// Summary aggregates the daily rows of a date range.
type Summary struct {
	From            string  `json:"from"`
	To              string  `json:"to"`
	Days            int     `json:"days"`
	Applications    int     `json:"applications"`
	Interviews      int     `json:"interviews"`
	Hires           int     `json:"hires"`
	Feedback        int     `json:"feedback"`
	EstimatedCost   float64 `json:"estimated_cost"`
	AvgAccuracy     float64 `json:"avg_accuracy"`
	AvgSuccessRate  float64 `json:"avg_success_rate"`
	AvgFeedbackRate float64 `json:"avg_feedback_rate"`
	AvgRating       float64 `json:"avg_rating"`
	Trends          Trends  `json:"trends"`
}

// Summarize aggregates the stored daily rows between from and to inclusive.
func (a *Aggregator) Summarize(ctx context.Context, from, to time.Time) (Summary, error) {
	f, t := from.UTC().Format(model.DateLayout), to.UTC().Format(model.DateLayout)
	if t < f {
		return Summary{}, fmt.Errorf("%w: %s after %s", ErrInvalidRange, f, t)
	}
	rows, err := a.store.ListDailyMetrics(ctx, f, t)
	if err != nil {
		return Summary{}, fmt.Errorf("list daily metrics: %w", err)
	}
	return Summarize(f, t, rows), nil
}

// Summarize folds rows, ordered by date, into a Summary. Days without rows
// are not counted.
func Summarize(from, to string, rows []model.DailyMetric) Summary {
	s := Summary{From: from, To: to, Days: len(rows), Trends: Trends{
		Accuracy: TrendStable, SuccessRate: TrendStable, FeedbackRate: TrendStable,
	}}
	if len(rows) == 0 {
		return s
	}
	accuracy := make([]float64, len(rows))
	success := make([]float64, len(rows))
	feedbackRate := make([]float64, len(rows))
	var cost float64
	var rated float64
	var ratingDays int
	for i, r := range rows {
		s.Applications += r.Applications
		s.Interviews += r.Interviews
		s.Hires += r.Hires
		s.Feedback += r.FeedbackCount
		cost += r.EstimatedCost
		accuracy[i] = r.CurrentAccuracy
		success[i] = SuccessRate(r)
		feedbackRate[i] = r.FeedbackRate
		if r.FeedbackCount > 0 {
			rated += r.AvgRating
			ratingDays++
		}
	}
	s.EstimatedCost = math.Round(cost*1e4) / 1e4
	s.AvgAccuracy = round2(mean(accuracy))
	s.AvgSuccessRate = round2(mean(success))
	s.AvgFeedbackRate = round2(mean(feedbackRate))
	if ratingDays > 0 {
		s.AvgRating = round2(rated / float64(ratingDays))
	}
	s.Trends = Trends{
		Accuracy:     Classify(accuracy),
		SuccessRate:  Classify(success),
		FeedbackRate: Classify(feedbackRate),
	}
	return s
}

// SuccessRate returns hires per interview as a percentage, 0 without interviews.
func SuccessRate(m model.DailyMetric) float64 {
	if m.Interviews == 0 {
		return 0
	}
	return float64(m.Hires) / float64(m.Interviews) * 100
}

// Classify compares the mean of the second half of values with the mean of
// the first half. An odd middle element belongs to the second half.
func Classify(values []float64) Trend {
	if len(values) < 2 {
		return TrendStable
	}
	half := len(values) / 2
	diff := mean(values[half:]) - mean(values[:half])
	switch {
	case diff > TrendThreshold:
		return TrendImproving
	case diff < -TrendThreshold:
		return TrendDeclining
	default:
		return TrendStable
	}
}

func mean(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	var sum float64
	for _, x := range v {
		sum += x
	}
	return sum / float64(len(v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
