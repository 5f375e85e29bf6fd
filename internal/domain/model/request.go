// Package model contains domain models passed between layers.
package model

import "time"

// EvaluationRequest asks for one assessment of a candidate against a job.
// It is the unit of work flowing through the evaluation queue.
type EvaluationRequest struct {
	RequestID   string    // unique id for idempotency
	CandidateID string    // candidate being assessed
	JobID       string    // job opening the candidate applied to
	Transcript  string    // interview transcript, may be empty
	ReceivedAt  time.Time // intake timestamp
}
