package model

import "time"

// Decision is an employer's hiring decision.
type Decision string

// Hiring decisions.
const (
	DecisionHire      Decision = "hire"
	DecisionReject    Decision = "reject"
	DecisionMaybe     Decision = "maybe"
	DecisionNextRound Decision = "next_round"
)

// Valid reports whether d is a known decision.
func (d Decision) Valid() bool {
	switch d {
	case DecisionHire, DecisionReject, DecisionMaybe, DecisionNextRound:
		return true
	}
	return false
}

// Labelled reports whether d is usable as ground truth for accuracy.
func (d Decision) Labelled() bool {
	return d == DecisionHire || d == DecisionReject
}

// Rating bounds for employer feedback.
const (
	MinRating = 1
	MaxRating = 5
)

// Feedback is employer-submitted ground truth about a candidate.
// UsedForTraining flips to true exactly once, when a training run consumes it.
type Feedback struct {
	ID                  string    `json:"id"`
	CandidateID         string    `json:"candidate_id"`
	JobID               string    `json:"job_id"`
	InterviewID         string    `json:"interview_id,omitempty"`
	TechnicalRating     int       `json:"technical_rating"`
	CommunicationRating int       `json:"communication_rating"`
	CultureFitRating    int       `json:"culture_fit_rating"`
	OverallRating       int       `json:"overall_rating"`
	Decision            Decision  `json:"hiring_decision"`
	UsedForTraining     bool      `json:"used_for_training"`
	SubmittedAt         time.Time `json:"submitted_at"`
}

// Validate checks ratings and decision.
func (f Feedback) Validate() error {
	if f.CandidateID == "" {
		return ErrMissingCandidate
	}
	for _, r := range []int{f.TechnicalRating, f.CommunicationRating, f.CultureFitRating, f.OverallRating} {
		if r < MinRating || r > MaxRating {
			return ErrRatingOutOfRange
		}
	}
	if !f.Decision.Valid() {
		return ErrUnknownDecision
	}
	return nil
}
