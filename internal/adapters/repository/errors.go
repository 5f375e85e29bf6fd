package repository

import (
	"errors"

	"github.com/okian/hireloop/internal/domain/model"
)

// Sentinel kinds for store errors.
var (
	ErrNotFound         = model.ErrNotFound
	ErrFeedbackConsumed = model.ErrFeedbackConsumed
	ErrInvalidLimit     = errors.New("invalid leaderboard limit")
	ErrDuplicateID      = errors.New("record id already exists")
	ErrMissingID        = errors.New("record id is required")
)
