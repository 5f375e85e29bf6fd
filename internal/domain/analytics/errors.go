package analytics

import "errors"

// Sentinel errors for the aggregator.
var (
	ErrInvalidDate  = errors.New("invalid date, want YYYY-MM-DD")
	ErrInvalidRange = errors.New("invalid date range")
)
