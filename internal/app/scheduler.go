package service

import (
	"context"
	"errors"
	"runtime"
	"time"

	"github.com/okian/hireloop/internal/domain/adaptation"
	"github.com/okian/hireloop/internal/domain/model"
	"github.com/okian/hireloop/pkg/logger"
	"github.com/okian/hireloop/pkg/metrics"
)

const (
	scheduledTrigger      = "scheduled"
	systemMetricsInterval = 10 * time.Second
)

// startSchedulers launches the periodic loops. A zero interval disables a loop.
func (s *Service) startSchedulers(ctx context.Context) {
	s.every(ctx, s.cfg.TrainingInterval, s.scheduledTraining)
	s.every(ctx, s.cfg.RollupInterval, s.newRollupTick())
	s.every(ctx, systemMetricsInterval, func(context.Context) { updateSystemMetrics() })
}

func (s *Service) every(ctx context.Context, interval time.Duration, fn func(context.Context)) {
	if interval <= 0 {
		return
	}
	s.loops.Add(1)
	go func() {
		defer s.loops.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fn(ctx)
			}
		}
	}()
}

// scheduledTraining adapts the weights once enough feedback has accumulated.
func (s *Service) scheduledTraining(ctx context.Context) {
	pending, err := s.trainer.Pending(ctx)
	if err != nil {
		s.logger.Error(ctx, "scheduled training: count feedback", logger.Error(err))
		return
	}
	if pending < s.cfg.MinTrainingFeedback {
		s.logger.Info(ctx, "scheduled training skipped",
			logger.String("reason", adaptation.ReasonInsufficientData),
			logger.Int("pending", pending),
			logger.Int("required", s.cfg.MinTrainingFeedback),
		)
		return
	}

	_, err = s.trainer.Adapt(ctx, scheduledTrigger)
	switch {
	case errors.Is(err, adaptation.ErrTrainingInProgress):
		s.logger.Debug(ctx, "scheduled training: run already in progress")
	case err != nil:
		s.logger.Error(ctx, "scheduled training failed", logger.Error(err))
	}
}

// newRollupTick returns a tick that rolls up today. When the UTC day has
// changed since the previous tick, the previous day is rolled up once more so
// its row covers the whole day.
func (s *Service) newRollupTick() func(context.Context) {
	var last string
	return func(ctx context.Context) {
		now := s.now()
		today := now.Format(model.DateLayout)
		if last != "" && last != today {
			prev, err := time.ParseInLocation(model.DateLayout, last, time.UTC)
			if err == nil {
				s.rollup(ctx, prev)
			}
		}
		s.rollup(ctx, now)
		last = today
	}
}

func (s *Service) rollup(ctx context.Context, day time.Time) {
	if _, err := s.aggregator.RollupDaily(ctx, day); err != nil {
		s.logger.Error(ctx, "scheduled rollup failed",
			logger.String("date", day.Format(model.DateLayout)), logger.Error(err))
	}
}

func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
}
