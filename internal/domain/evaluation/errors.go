package evaluation

import "errors"

// Sentinel kinds for evaluation errors.
var (
	ErrMissingInput = errors.New("evaluation: candidate and job are required")
	ErrScorerFailed = errors.New("evaluation: layer scorer failed")
)
