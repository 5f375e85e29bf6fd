package scoring

import (
	"errors"
	"fmt"

	"github.com/okian/hireloop/internal/domain/model"
)

// Sentinel kinds for scoring errors.
var (
	ErrNilCandidate      = errors.New("scoring: candidate is required")
	ErrNoProvider        = errors.New("scoring: no provider configured")
	ErrMalformedResponse = errors.New("scoring: malformed provider response")
	ErrSchemaMismatch    = errors.New("scoring: provider response does not match schema")
)

// ProviderError wraps a provider failure for one layer. It never escapes a
// Scorer; the fallback heuristic takes over instead.
type ProviderError struct {
	Provider string
	Layer    model.Layer
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s failed for %s layer: %v", e.Provider, e.Layer, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }
