// Package repository defines the record store used by the evaluation loop
// and ships an in-memory implementation.
package repository

import (
	"context"

	"github.com/okian/hireloop/internal/domain/model"
)

// Store provides typed read/write access to every record of the loop.
// List methods return newest first unless noted.
type Store interface {
	UpsertCandidate(ctx context.Context, c model.Candidate) error
	// GetCandidate returns ErrNotFound for unknown ids.
	GetCandidate(ctx context.Context, id string) (model.Candidate, error)
	ListCandidates(ctx context.Context, f model.CandidateFilter) ([]model.Candidate, error)

	UpsertJob(ctx context.Context, j model.JobPosting) error
	// GetJob returns ErrNotFound for unknown ids.
	GetJob(ctx context.Context, id string) (model.JobPosting, error)

	InsertEvaluation(ctx context.Context, e model.Evaluation) error
	ListEvaluations(ctx context.Context, f model.EvaluationFilter) ([]model.Evaluation, error)

	InsertFeedback(ctx context.Context, fb model.Feedback) error
	ListFeedback(ctx context.Context, f model.FeedbackFilter) ([]model.Feedback, error)

	// CurrentWeights returns the most recently committed vector, or ErrNotFound
	// before the first commit.
	CurrentWeights(ctx context.Context) (model.WeightVector, error)
	// CommitTraining atomically appends log, makes weights current and flips
	// used_for_training on feedbackIDs. If any of them is already consumed it
	// writes nothing and returns ErrFeedbackConsumed.
	CommitTraining(ctx context.Context, log model.TrainingLog, weights model.WeightVector, feedbackIDs []string) (model.WeightVector, error)
	InsertTrainingLog(ctx context.Context, log model.TrainingLog) error
	ListTrainingLogs(ctx context.Context, f model.TrainingLogFilter) ([]model.TrainingLog, error)

	// UpsertRankings writes rows keyed by (candidate, job); last writer wins.
	UpsertRankings(ctx context.Context, rows []model.Ranking) error
	// ListRankings returns a job's rows in leaderboard order. limit <= 0 means all.
	ListRankings(ctx context.Context, jobID string, limit int) ([]model.Ranking, error)

	UpsertDailyMetric(ctx context.Context, m model.DailyMetric) error
	GetDailyMetric(ctx context.Context, date string) (model.DailyMetric, error)
	// ListDailyMetrics returns days in [from, to] in ascending date order.
	ListDailyMetrics(ctx context.Context, from, to string) ([]model.DailyMetric, error)

	Close() error
}
