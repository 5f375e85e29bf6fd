package repository

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/okian/hireloop/internal/domain/model"
)

// MemStore is an in-memory Store. Rankings are kept in one treap per job.
type MemStore struct {
	mu sync.RWMutex

	candidates  map[string]model.Candidate
	jobs        map[string]model.JobPosting
	evaluations []model.Evaluation
	evalIDs     map[string]struct{}
	feedback    []model.Feedback
	feedbackIdx map[string]int
	weights     []model.WeightVector
	logs        []model.TrainingLog
	boards      map[string]*leaderboard
	daily       map[string]model.DailyMetric
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		candidates:  make(map[string]model.Candidate),
		jobs:        make(map[string]model.JobPosting),
		evalIDs:     make(map[string]struct{}),
		feedbackIdx: make(map[string]int),
		boards:      make(map[string]*leaderboard),
		daily:       make(map[string]model.DailyMetric),
	}
}

var _ Store = (*MemStore)(nil)

// UpsertCandidate inserts or replaces a candidate. CreatedAt of an existing
// candidate is preserved.
func (s *MemStore) UpsertCandidate(_ context.Context, c model.Candidate) error {
	if c.ID == "" {
		return ErrMissingID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.candidates[c.ID]; ok && !old.CreatedAt.IsZero() {
		c.CreatedAt = old.CreatedAt
	}
	c.Skills = slices.Clone(c.Skills)
	s.candidates[c.ID] = c
	return nil
}

// GetCandidate returns a candidate by id.
func (s *MemStore) GetCandidate(_ context.Context, id string) (model.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.candidates[id]
	if !ok {
		return model.Candidate{}, fmt.Errorf("candidate %s: %w", id, ErrNotFound)
	}
	c.Skills = slices.Clone(c.Skills)
	return c, nil
}

// ListCandidates returns candidates newest first.
func (s *MemStore) ListCandidates(_ context.Context, f model.CandidateFilter) ([]model.Candidate, error) {
	s.mu.RLock()
	out := make([]model.Candidate, 0, len(s.candidates))
	for _, c := range s.candidates {
		if f.Created.Contains(c.CreatedAt) {
			out = append(out, c)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return limit(out, f.Limit), nil
}

// UpsertJob inserts or replaces a job posting.
func (s *MemStore) UpsertJob(_ context.Context, j model.JobPosting) error {
	if j.ID == "" {
		return ErrMissingID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.jobs[j.ID]; ok && !old.CreatedAt.IsZero() {
		j.CreatedAt = old.CreatedAt
	}
	j.RequiredSkills = slices.Clone(j.RequiredSkills)
	s.jobs[j.ID] = j
	return nil
}

// GetJob returns a job posting by id.
func (s *MemStore) GetJob(_ context.Context, id string) (model.JobPosting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.jobs[id]
	if !ok {
		return model.JobPosting{}, fmt.Errorf("job %s: %w", id, ErrNotFound)
	}
	j.RequiredSkills = slices.Clone(j.RequiredSkills)
	return j, nil
}

// InsertEvaluation appends an immutable evaluation.
func (s *MemStore) InsertEvaluation(_ context.Context, e model.Evaluation) error {
	if e.ID == "" {
		return ErrMissingID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.evalIDs[e.ID]; dup {
		return fmt.Errorf("evaluation %s: %w", e.ID, ErrDuplicateID)
	}
	s.evalIDs[e.ID] = struct{}{}
	s.evaluations = append(s.evaluations, e)
	return nil
}

// ListEvaluations returns matching evaluations newest first.
func (s *MemStore) ListEvaluations(_ context.Context, f model.EvaluationFilter) ([]model.Evaluation, error) {
	s.mu.RLock()
	var out []model.Evaluation
	for _, e := range s.evaluations {
		if f.JobID != "" && e.JobID != f.JobID {
			continue
		}
		if f.CandidateID != "" && e.CandidateID != f.CandidateID {
			continue
		}
		if !f.Created.Contains(e.CreatedAt) {
			continue
		}
		out = append(out, e)
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].NewerThan(out[j]) })
	return limit(out, f.Limit), nil
}

// InsertFeedback appends a feedback row.
func (s *MemStore) InsertFeedback(_ context.Context, fb model.Feedback) error {
	if fb.ID == "" {
		return ErrMissingID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.feedbackIdx[fb.ID]; dup {
		return fmt.Errorf("feedback %s: %w", fb.ID, ErrDuplicateID)
	}
	s.feedbackIdx[fb.ID] = len(s.feedback)
	s.feedback = append(s.feedback, fb)
	return nil
}

// ListFeedback returns matching feedback newest first.
func (s *MemStore) ListFeedback(_ context.Context, f model.FeedbackFilter) ([]model.Feedback, error) {
	s.mu.RLock()
	var out []model.Feedback
	for _, fb := range s.feedback {
		if f.JobID != "" && fb.JobID != f.JobID {
			continue
		}
		if f.CandidateID != "" && fb.CandidateID != f.CandidateID {
			continue
		}
		if f.OnlyUnused && fb.UsedForTraining {
			continue
		}
		if !f.Submitted.Contains(fb.SubmittedAt) {
			continue
		}
		out = append(out, fb)
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].SubmittedAt.Equal(out[j].SubmittedAt) {
			return out[i].SubmittedAt.After(out[j].SubmittedAt)
		}
		return out[i].ID < out[j].ID
	})
	return limit(out, f.Limit), nil
}

// CurrentWeights returns the latest committed weight vector.
func (s *MemStore) CurrentWeights(_ context.Context) (model.WeightVector, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.weights) == 0 {
		return model.WeightVector{}, fmt.Errorf("weights: %w", ErrNotFound)
	}
	return s.weights[len(s.weights)-1], nil
}

// CommitTraining applies a completed training run all-or-nothing.
func (s *MemStore) CommitTraining(_ context.Context, log model.TrainingLog, w model.WeightVector, feedbackIDs []string) (model.WeightVector, error) {
	if err := w.Validate(); err != nil {
		return model.WeightVector{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range feedbackIDs {
		i, ok := s.feedbackIdx[id]
		if !ok {
			return model.WeightVector{}, fmt.Errorf("feedback %s: %w", id, ErrNotFound)
		}
		if s.feedback[i].UsedForTraining {
			return model.WeightVector{}, fmt.Errorf("feedback %s: %w", id, ErrFeedbackConsumed)
		}
	}
	for _, id := range feedbackIDs {
		s.feedback[s.feedbackIdx[id]].UsedForTraining = true
	}

	w.Version = len(s.weights) + 1
	if w.CreatedAt.IsZero() {
		w.CreatedAt = time.Now().UTC()
	}
	s.weights = append(s.weights, w)
	log.Weights = w
	s.logs = append(s.logs, log)
	return w, nil
}

// InsertTrainingLog appends a log without touching weights or feedback.
func (s *MemStore) InsertTrainingLog(_ context.Context, log model.TrainingLog) error {
	if log.ID == "" {
		return ErrMissingID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append(s.logs, log)
	return nil
}

// ListTrainingLogs returns logs newest first.
func (s *MemStore) ListTrainingLogs(_ context.Context, f model.TrainingLogFilter) ([]model.TrainingLog, error) {
	s.mu.RLock()
	var out []model.TrainingLog
	for i := len(s.logs) - 1; i >= 0; i-- {
		if f.Status != "" && s.logs[i].Status != f.Status {
			continue
		}
		out = append(out, s.logs[i])
	}
	s.mu.RUnlock()
	return limit(out, f.Limit), nil
}

// UpsertRankings writes rows into the per-job leaderboards.
func (s *MemStore) UpsertRankings(_ context.Context, rows []model.Ranking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rows {
		if r.CandidateID == "" || r.JobID == "" {
			return ErrMissingID
		}
	}
	for _, r := range rows {
		b, ok := s.boards[r.JobID]
		if !ok {
			b = newLeaderboard()
			s.boards[r.JobID] = b
		}
		b.upsert(r)
	}
	return nil
}

// ListRankings returns a job's leaderboard rows in order.
func (s *MemStore) ListRankings(_ context.Context, jobID string, n int) ([]model.Ranking, error) {
	if n < 0 {
		return nil, ErrInvalidLimit
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.boards[jobID]
	if !ok {
		return []model.Ranking{}, nil
	}
	return b.top(n), nil
}

// UpsertDailyMetric writes the row for m.Date.
func (s *MemStore) UpsertDailyMetric(_ context.Context, m model.DailyMetric) error {
	if m.Date == "" {
		return ErrMissingID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.daily[m.Date] = m
	return nil
}

// GetDailyMetric returns the row for date.
func (s *MemStore) GetDailyMetric(_ context.Context, date string) (model.DailyMetric, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.daily[date]
	if !ok {
		return model.DailyMetric{}, fmt.Errorf("daily metric %s: %w", date, ErrNotFound)
	}
	return m, nil
}

// ListDailyMetrics returns rows with from <= date <= to in date order.
func (s *MemStore) ListDailyMetrics(_ context.Context, from, to string) ([]model.DailyMetric, error) {
	s.mu.RLock()
	var out []model.DailyMetric
	for date, m := range s.daily {
		if (from == "" || date >= from) && (to == "" || date <= to) {
			out = append(out, m)
		}
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

// Stats reports record counts for the /stats endpoint.
func (s *MemStore) Stats() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ranked := 0
	for _, b := range s.boards {
		ranked += b.size()
	}
	return map[string]int{
		"candidates":    len(s.candidates),
		"jobs":          len(s.jobs),
		"evaluations":   len(s.evaluations),
		"feedback":      len(s.feedback),
		"training_logs": len(s.logs),
		"rankings":      ranked,
	}
}

// Close is a no-op.
func (s *MemStore) Close() error { return nil }

func limit[T any](in []T, n int) []T {
	if n > 0 && len(in) > n {
		return in[:n]
	}
	return in
}
