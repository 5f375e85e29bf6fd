package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/hireloop/internal/domain/model"
)

func request(id string) model.EvaluationRequest {
	return model.EvaluationRequest{RequestID: id, CandidateID: "cand-" + id, JobID: "job-1"}
}

func TestInMemoryQueue_FIFO(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(4))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for _, id := range []string{"r1", "r2", "r3"} {
		if err := q.Enqueue(ctx, request(id)); err != nil {
			t.Fatalf("enqueue %s: %v", id, err)
		}
	}
	if l := q.Len(); l != 3 {
		t.Errorf("expected length 3, got %d", l)
	}

	out := q.Dequeue(ctx)
	for _, want := range []string{"r1", "r2", "r3"} {
		got := <-out
		if got.RequestID != want {
			t.Errorf("expected %s, got %s", want, got.RequestID)
		}
	}
}

func TestInMemoryQueue_Full(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	_ = q.Enqueue(ctx, request("r1"))
	_ = q.Enqueue(ctx, request("r2"))
	if err := q.Enqueue(ctx, request("r3")); !errors.Is(err, ErrFull) {
		t.Errorf("expected ErrFull, got %v", err)
	}
	if q.Cap() != 2 {
		t.Errorf("expected capacity 2, got %d", q.Cap())
	}
}

func TestInMemoryQueue_CancelledContext(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := q.Enqueue(ctx, request("r1")); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestInMemoryQueue_ConcurrentProducers(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(50))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	const producers, perProducer = 8, 50
	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				for errors.Is(q.Enqueue(ctx, request(fmt.Sprintf("%d-%d", p, i))), ErrFull) {
					time.Sleep(time.Millisecond)
				}
			}
		}(p)
	}

	seen := make(map[string]struct{})
	out := q.Dequeue(ctx)
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	for len(seen) < producers*perProducer {
		select {
		case req := <-out:
			seen[req.RequestID] = struct{}{}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out after %d requests", len(seen))
		}
	}
	<-done
	if q.Len() != 0 {
		t.Errorf("expected empty queue, got %d", q.Len())
	}
}

func TestInMemoryQueue_CloseDrains(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(4))
	ctx := context.Background()
	_ = q.Enqueue(ctx, request("r1"))
	_ = q.Enqueue(ctx, request("r2"))

	if err := q.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to be closed")
	}
	if err := q.Enqueue(ctx, request("r3")); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}

	var drained []string
	for req := range q.Dequeue(ctx) {
		drained = append(drained, req.RequestID)
	}
	if len(drained) != 2 {
		t.Errorf("expected 2 drained requests, got %v", drained)
	}
	if err := q.Close(); err != nil {
		t.Errorf("second close: %v", err)
	}
}
