// Package worker drains the evaluation queue with a fixed pool of goroutines.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/hireloop/internal/domain/model"
	"github.com/okian/hireloop/pkg/logger"
	"github.com/okian/hireloop/pkg/metrics"
)

const defaultWorkerMultiplier = 2

// Processor handles one evaluation request.
type Processor interface {
	Process(ctx context.Context, req model.EvaluationRequest) error
}

// ProcessorFunc adapts a function to Processor.
type ProcessorFunc func(ctx context.Context, req model.EvaluationRequest) error

// Process calls f.
func (f ProcessorFunc) Process(ctx context.Context, req model.EvaluationRequest) error {
	return f(ctx, req)
}

// Queue is where workers receive requests.
type Queue interface {
	Dequeue(ctx context.Context) <-chan model.EvaluationRequest
}

// Pool runs size workers over a shared queue.
type Pool struct {
	queue      Queue
	processor  Processor
	size       int
	jobTimeout time.Duration
	logger     logger.Logger

	startOnce sync.Once
	wg        sync.WaitGroup
	busy      atomic.Int64
	processed atomic.Int64
	failed    atomic.Int64
}

// NewPool creates a pool. Call Start to begin processing.
func NewPool(q Queue, processor Processor, opts ...Option) *Pool {
	p := &Pool{
		queue:     q,
		processor: processor,
		size:      runtime.NumCPU() * defaultWorkerMultiplier,
		logger:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return p.size }

// Processed returns how many requests completed without error.
func (p *Pool) Processed() int64 { return p.processed.Load() }

// Failed returns how many requests returned an error.
func (p *Pool) Failed() int64 { return p.failed.Load() }

// Start launches the workers. They stop when the queue is closed and drained
// or ctx is done. Subsequent calls are no-ops.
func (p *Pool) Start(ctx context.Context) {
	p.startOnce.Do(func() {
		for i := 0; i < p.size; i++ {
			p.wg.Add(1)
			go p.run(ctx, p.logger.Named("worker-"+strconv.Itoa(i)))
		}
		metrics.UpdateWorkerActiveCount(0)
	})
}

func (p *Pool) run(ctx context.Context, log logger.Logger) {
	defer p.wg.Done()
	for req := range p.queue.Dequeue(ctx) {
		if err := p.handle(ctx, req); err != nil {
			log.Error(ctx, "evaluation request failed",
				logger.String("request_id", req.RequestID),
				logger.String("candidate_id", req.CandidateID),
				logger.String("job_id", req.JobID),
				logger.Error(err))
		}
	}
}

func (p *Pool) handle(ctx context.Context, req model.EvaluationRequest) error {
	metrics.UpdateWorkerActiveCount(int(p.busy.Add(1)))
	start := time.Now()
	defer func() {
		metrics.UpdateWorkerActiveCount(int(p.busy.Add(-1)))
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	if p.jobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.jobTimeout)
		defer cancel()
	}
	if err := p.processor.Process(ctx, req); err != nil {
		p.failed.Add(1)
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "process")
		return fmt.Errorf("process %s: %w", req.RequestID, err)
	}
	p.processed.Add(1)
	return nil
}

// Shutdown closes the queue, when it can be closed, and waits for workers to
// drain it. It returns ctx.Err() if ctx ends first.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		p.logger.Warn(ctx, "worker pool shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}
