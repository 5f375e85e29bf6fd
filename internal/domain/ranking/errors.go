package ranking

import "errors"

// Sentinel kinds for ranking errors.
var (
	ErrMissingJob   = errors.New("ranking: job id is required")
	ErrInvalidLimit = errors.New("ranking: limit must be positive")
)
