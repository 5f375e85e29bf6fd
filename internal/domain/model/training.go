package model

import "time"

// TrainingStatus is the outcome of one training run.
type TrainingStatus string

// Training outcomes. Skipped runs are reported to callers but never logged.
const (
	TrainingCompleted TrainingStatus = "completed"
	TrainingFailed    TrainingStatus = "failed"
	TrainingSkipped   TrainingStatus = "skipped"
)

// TrainingLog records one adaptation attempt. Append-only.
type TrainingLog struct {
	ID              string         `json:"id"`
	Trigger         string         `json:"trigger"`
	Status          TrainingStatus `json:"status"`
	FeedbackCount   int            `json:"feedback_count"`
	EvaluationCount int            `json:"evaluation_count"`
	AccuracyBefore  float64        `json:"accuracy_before"`
	AccuracyAfter   float64        `json:"accuracy_after"`
	PreviousWeights WeightVector   `json:"previous_weights"`
	Weights         WeightVector   `json:"weights"`
	Delta           WeightDelta    `json:"delta"`
	Error           string         `json:"error,omitempty"`
	StartedAt       time.Time      `json:"started_at"`
	Duration        time.Duration  `json:"duration"`
}
