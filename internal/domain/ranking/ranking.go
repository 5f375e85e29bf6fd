// Package ranking fuses evaluations and historical outcomes into a per-job
// leaderboard.
package ranking

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/hireloop/internal/domain/model"
	"github.com/okian/hireloop/internal/domain/outcome"
	"github.com/okian/hireloop/pkg/logger"
	"github.com/okian/hireloop/pkg/metrics"
)

// Composite weights.
const (
	skillWeight       = 0.25
	experienceWeight  = 0.15
	interviewWeight   = 0.35
	feedbackWeight    = 0.15
	pastSuccessWeight = 0.10

	// neutralScore is used for feedback and past success when there is no history.
	neutralScore = 50.0

	defaultConcurrency = 8
)

// Store is the subset of the record store the engine reads and writes.
type Store interface {
	ListEvaluations(ctx context.Context, f model.EvaluationFilter) ([]model.Evaluation, error)
	ListFeedback(ctx context.Context, f model.FeedbackFilter) ([]model.Feedback, error)
	UpsertRankings(ctx context.Context, rows []model.Ranking) error
	ListRankings(ctx context.Context, jobID string, limit int) ([]model.Ranking, error)
}

// Omission records a candidate left out of a run.
type Omission struct {
	CandidateID string `json:"candidate_id"`
	Reason      string `json:"reason"`
}

// Result is the outcome of one ranking run.
type Result struct {
	JobID    string          `json:"job_id"`
	Rankings []model.Ranking `json:"rankings"`
	Omitted  []Omission      `json:"omitted,omitempty"`
}

// Option configures an Engine.
type Option func(*Engine)

// WithConcurrency bounds parallel per-candidate lookups.
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.concurrency = n
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

// Engine recomputes a job's leaderboard from scratch on every run.
type Engine struct {
	store       Store
	concurrency int
	log         logger.Logger
}

// NewEngine creates a ranking engine over store.
func NewEngine(store Store, opts ...Option) *Engine {
	e := &Engine{store: store, concurrency: defaultConcurrency, log: logger.Nop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type scored struct {
	eval model.Evaluation
	row  model.Ranking
}

// Rank recomputes and persists the leaderboard for jobID. A failed lookup for
// one candidate omits that candidate; store failures on the evaluation read or
// the upsert abort the run.
func (e *Engine) Rank(ctx context.Context, jobID string) (Result, error) {
	start := time.Now()
	res, err := e.rank(ctx, jobID)
	status := "completed"
	if err != nil {
		status = "failed"
		metrics.RecordErrorByComponent("ranking", "run")
	}
	metrics.RecordRankingRun(status, float64(time.Since(start).Milliseconds()), len(res.Rankings), len(res.Omitted))
	return res, err
}

func (e *Engine) rank(ctx context.Context, jobID string) (Result, error) {
	if jobID == "" {
		return Result{}, ErrMissingJob
	}
	evals, err := e.store.ListEvaluations(ctx, model.EvaluationFilter{JobID: jobID})
	if err != nil {
		return Result{}, fmt.Errorf("load evaluations for job %s: %w", jobID, err)
	}
	latest := LatestPerCandidate(evals)

	slots := make([]*scored, len(latest))
	omitted := make([]*Omission, len(latest))

	g := new(errgroup.Group)
	g.SetLimit(e.concurrency)
	for i, ev := range latest {
		g.Go(func() error {
			row, err := e.components(ctx, ev)
			if err != nil {
				omitted[i] = &Omission{CandidateID: ev.CandidateID, Reason: err.Error()}
				e.log.Warn(ctx, "candidate omitted from ranking",
					logger.String("job_id", jobID),
					logger.String("candidate_id", ev.CandidateID),
					logger.Error(err))
				return nil
			}
			slots[i] = &scored{eval: ev, row: row}
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	res := Result{JobID: jobID, Rankings: []model.Ranking{}}
	ranked := make([]scored, 0, len(slots))
	for i := range slots {
		if slots[i] != nil {
			ranked = append(ranked, *slots[i])
		}
		if omitted[i] != nil {
			res.Omitted = append(res.Omitted, *omitted[i])
		}
	}

	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.row.CompositeScore != b.row.CompositeScore {
			return a.row.CompositeScore > b.row.CompositeScore
		}
		return a.eval.NewerThan(b.eval)
	})

	n := len(ranked)
	for i := range ranked {
		pos := i + 1
		ranked[i].row.RankPosition = pos
		ranked[i].row.Percentile = round2(float64(n-pos) / float64(n) * 100)
		ranked[i].row.TotalCandidates = n
		res.Rankings = append(res.Rankings, ranked[i].row)
	}

	if n > 0 {
		if err := e.store.UpsertRankings(ctx, res.Rankings); err != nil {
			return Result{}, fmt.Errorf("upsert rankings for job %s: %w", jobID, err)
		}
	}
	e.log.Info(ctx, "job ranked",
		logger.String("job_id", jobID),
		logger.Int("ranked", n),
		logger.Int("omitted", len(res.Omitted)))
	return res, nil
}

// components builds the unranked row for one candidate's latest evaluation.
func (e *Engine) components(ctx context.Context, ev model.Evaluation) (model.Ranking, error) {
	jobFeedback, err := e.store.ListFeedback(ctx, model.FeedbackFilter{CandidateID: ev.CandidateID, JobID: ev.JobID})
	if err != nil {
		return model.Ranking{}, fmt.Errorf("job feedback: %w", err)
	}
	allFeedback, err := e.store.ListFeedback(ctx, model.FeedbackFilter{CandidateID: ev.CandidateID})
	if err != nil {
		return model.Ranking{}, fmt.Errorf("feedback history: %w", err)
	}

	c := Components(ev, jobFeedback, allFeedback)
	updated := ev.CreatedAt
	if len(allFeedback) > 0 && allFeedback[0].SubmittedAt.After(updated) {
		updated = allFeedback[0].SubmittedAt
	}
	return model.Ranking{
		CandidateID:    ev.CandidateID,
		JobID:          ev.JobID,
		EvaluationID:   ev.ID,
		CompositeScore: Composite(c),
		Components:     c,
		LastUpdated:    updated,
	}, nil
}

// Leaderboard returns up to limit persisted rows for jobID in rank order.
func (e *Engine) Leaderboard(ctx context.Context, jobID string, limit int) ([]model.Ranking, error) {
	if jobID == "" {
		return nil, ErrMissingJob
	}
	if limit < 1 {
		return nil, ErrInvalidLimit
	}
	return e.store.ListRankings(ctx, jobID, limit)
}

// LatestPerCandidate keeps each candidate's most recent evaluation, ordered
// by candidate id.
func LatestPerCandidate(evals []model.Evaluation) []model.Evaluation {
	byCandidate := outcome.LatestByCandidate(evals)
	out := make([]model.Evaluation, 0, len(byCandidate))
	for _, ev := range byCandidate {
		out = append(out, ev)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CandidateID < out[j].CandidateID })
	return out
}

// Components derives the five 0-100 ranking signals.
func Components(ev model.Evaluation, jobFeedback, allFeedback []model.Feedback) model.RankingComponents {
	keyword := ev.Screening.Metric("keyword_match", ev.ScreeningScore)
	return model.RankingComponents{
		Skill:       ev.Screening.Metric("skill_match", keyword),
		Experience:  ev.Screening.Metric("completeness", ev.ScreeningScore),
		Interview:   ev.FinalScore,
		Feedback:    FeedbackScore(jobFeedback),
		PastSuccess: PastSuccess(allFeedback),
	}
}

// Composite fuses the components, rounded to two decimals.
func Composite(c model.RankingComponents) float64 {
	return round2(skillWeight*c.Skill +
		experienceWeight*c.Experience +
		interviewWeight*c.Interview +
		feedbackWeight*c.Feedback +
		pastSuccessWeight*c.PastSuccess)
}

// FeedbackScore maps the mean overall rating from 1-5 onto 0-100.
func FeedbackScore(fb []model.Feedback) float64 {
	if len(fb) == 0 {
		return neutralScore
	}
	sum := 0
	for _, f := range fb {
		sum += f.OverallRating
	}
	mean := float64(sum) / float64(len(fb))
	return round2((mean - model.MinRating) / (model.MaxRating - model.MinRating) * 100)
}

// PastSuccess is the share of feedback rows that ended in a hire.
func PastSuccess(fb []model.Feedback) float64 {
	if len(fb) == 0 {
		return neutralScore
	}
	hires := 0
	for _, f := range fb {
		if f.Decision == model.DecisionHire {
			hires++
		}
	}
	return round2(float64(hires) / float64(len(fb)) * 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
