package model

import "errors"

// Sentinel errors for model validation.
var (
	ErrWeightsNotNormalized = errors.New("weights do not sum to 1")
	ErrNegativeWeight       = errors.New("weight must not be negative")
	ErrMissingCandidate     = errors.New("missing candidate id")
	ErrRatingOutOfRange     = errors.New("rating must be between 1 and 5")
	ErrUnknownDecision      = errors.New("unknown hiring decision")
)

// Sentinel errors shared by record store implementations.
var (
	ErrNotFound         = errors.New("record not found")
	ErrFeedbackConsumed = errors.New("feedback already used for training")
)
