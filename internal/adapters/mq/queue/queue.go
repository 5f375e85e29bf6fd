// Package queue buffers evaluation requests between intake and the worker pool.
package queue

import (
	"context"
	"sync"

	"github.com/okian/hireloop/internal/domain/model"
	"github.com/okian/hireloop/pkg/metrics"
)

const defaultCapacity = 10_000

// Queue is a bounded FIFO of evaluation requests.
type Queue interface {
	// Enqueue adds req without blocking. It fails with ErrFull when the
	// queue is at capacity and ErrClosed after Close.
	Enqueue(ctx context.Context, req model.EvaluationRequest) error

	// Dequeue streams requests until the queue is closed and drained or
	// ctx is done.
	Dequeue(ctx context.Context) <-chan model.EvaluationRequest

	Len() int
	Cap() int
	Close() error
}

// InMemoryQueue is a channel-backed Queue.
type InMemoryQueue struct {
	requests chan model.EvaluationRequest
	capacity int

	mu     sync.RWMutex
	closed bool
}

var _ Queue = (*InMemoryQueue)(nil)

// NewInMemoryQueue creates a queue.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.requests = make(chan model.EvaluationRequest, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	q.observe()
	return q
}

func (q *InMemoryQueue) Enqueue(ctx context.Context, req model.EvaluationRequest) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "closed")
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return err
	}

	select {
	case q.requests <- req:
		metrics.RecordQueueEnqueue()
		q.observe()
		return nil
	default:
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "queue_full")
		return ErrFull
	}
}

func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan model.EvaluationRequest {
	out := make(chan model.EvaluationRequest)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case req, ok := <-q.requests:
				if !ok {
					return
				}
				metrics.RecordQueueDequeue()
				q.observe()
				select {
				case out <- req:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

func (q *InMemoryQueue) Len() int { return len(q.requests) }

func (q *InMemoryQueue) Cap() int { return q.capacity }

// Close stops intake. Pending requests remain available to Dequeue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	close(q.requests)
	q.closed = true
	return nil
}

// IsClosed reports whether Close was called.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

func (q *InMemoryQueue) observe() {
	size := len(q.requests)
	metrics.UpdateQueueSize(size)
	metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
}
