package api

import (
	"errors"
	"net/http"

	"github.com/okian/hireloop/internal/adapters/mq/queue"
	"github.com/okian/hireloop/internal/adapters/repository"
	"github.com/okian/hireloop/internal/domain/adaptation"
	"github.com/okian/hireloop/internal/domain/analytics"
	"github.com/okian/hireloop/internal/domain/model"
	"github.com/okian/hireloop/internal/domain/ranking"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest    = errors.New("bad request")
	ErrBackpressure  = errors.New("backpressure")
	ErrLimitExceeded = errors.New("limit exceeds maximum")
)

// Error tags a failure with the handler operation that produced it.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Kind != nil && e.Err != nil:
		return e.Op + ": " + e.Kind.Error() + ": " + e.Err.Error()
	case e.Kind != nil:
		return e.Op + ": " + e.Kind.Error()
	case e.Err != nil:
		return e.Op + ": " + e.Err.Error()
	}
	return e.Op
}

func (e *Error) Unwrap() []error {
	var out []error
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// WrapKind tags err with op and kind.
func WrapKind(op string, kind, err error) error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// Wrap tags err with op.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}

// classify maps an error chain to an HTTP status and a stable error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrLimitExceeded):
		return http.StatusBadRequest, "limit_exceeded"
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, model.ErrMissingCandidate),
		errors.Is(err, model.ErrRatingOutOfRange),
		errors.Is(err, model.ErrUnknownDecision),
		errors.Is(err, model.ErrWeightsNotNormalized),
		errors.Is(err, model.ErrNegativeWeight),
		errors.Is(err, ranking.ErrMissingJob),
		errors.Is(err, ranking.ErrInvalidLimit),
		errors.Is(err, analytics.ErrInvalidDate),
		errors.Is(err, analytics.ErrInvalidRange):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, adaptation.ErrTrainingInProgress),
		errors.Is(err, model.ErrFeedbackConsumed),
		errors.Is(err, repository.ErrDuplicateID):
		return http.StatusConflict, "conflict"
	case errors.Is(err, ErrBackpressure), errors.Is(err, queue.ErrFull):
		return http.StatusTooManyRequests, "backpressure"
	case errors.Is(err, queue.ErrClosed):
		return http.StatusServiceUnavailable, "unavailable"
	}
	return http.StatusInternalServerError, "internal_error"
}
