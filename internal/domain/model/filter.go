package model

import "time"

// TimeRange is a half-open [From, To) interval. Zero bounds are open.
type TimeRange struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t falls inside the range.
func (r TimeRange) Contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && !t.Before(r.To) {
		return false
	}
	return true
}

// CandidateFilter selects candidates by creation time.
type CandidateFilter struct {
	Created TimeRange
	Limit   int
}

// EvaluationFilter selects evaluations. Results are newest first.
type EvaluationFilter struct {
	JobID       string
	CandidateID string
	Created     TimeRange
	Limit       int
}

// FeedbackFilter selects feedback. Results are newest first.
type FeedbackFilter struct {
	JobID       string
	CandidateID string
	OnlyUnused  bool
	Submitted   TimeRange
	Limit       int
}

// TrainingLogFilter selects training logs. Results are newest first.
type TrainingLogFilter struct {
	Status TrainingStatus
	Limit  int
}
