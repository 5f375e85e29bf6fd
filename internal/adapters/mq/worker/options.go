package worker

import (
	"time"

	"github.com/okian/hireloop/pkg/logger"
)

// Option configures a Pool.
type Option func(*Pool)

// WithSize sets the number of workers. Values < 1 keep the default.
func WithSize(n int) Option {
	return func(p *Pool) {
		if n > 0 {
			p.size = n
		}
	}
}

// WithJobTimeout bounds how long one request may be processed. Zero disables it.
func WithJobTimeout(d time.Duration) Option {
	return func(p *Pool) {
		if d >= 0 {
			p.jobTimeout = d
		}
	}
}

// WithLogger sets the pool logger.
func WithLogger(l logger.Logger) Option {
	return func(p *Pool) {
		if l != nil {
			p.logger = l
		}
	}
}
