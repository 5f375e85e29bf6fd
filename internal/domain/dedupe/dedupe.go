// Package dedupe tracks evaluation request ids so a retried submission is
// accepted at most once.
package dedupe

import (
	"context"
	"sync"
)

const defaultMaxSize = 100_000

// Deduper records seen request ids.
type Deduper interface {
	// SeenAndRecord reports whether id was already recorded and records it
	// if not. The check and the write are atomic.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord forgets id so a request rejected downstream (queue full)
	// can be retried by the client.
	Unrecord(ctx context.Context, id string)

	Size() int64
}

// ringDeduper remembers the most recent maxSize ids in insertion order. Slots
// freed by Unrecord stay empty until the ring wraps around to them.
type ringDeduper struct {
	mu      sync.Mutex
	maxSize int
	seen    map[string]int // id -> slot, -1 when unbounded
	slots   []string
	used    []bool
	next    int
}

// NewInMemoryDeduper creates a bounded in-memory deduper.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &ringDeduper{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]int)
	if d.maxSize > 0 {
		d.slots = make([]string, d.maxSize)
		d.used = make([]bool, d.maxSize)
	}
	return d
}

func (d *ringDeduper) SeenAndRecord(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return true
	}
	if d.maxSize <= 0 {
		d.seen[id] = -1
		return false
	}

	slot := d.next
	if d.used[slot] {
		delete(d.seen, d.slots[slot])
	}
	d.slots[slot] = id
	d.used[slot] = true
	d.seen[id] = slot
	d.next = (slot + 1) % d.maxSize
	return false
}

func (d *ringDeduper) Unrecord(_ context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	slot, ok := d.seen[id]
	if !ok {
		return
	}
	delete(d.seen, id)
	if slot >= 0 {
		d.used[slot] = false
		d.slots[slot] = ""
	}
}

func (d *ringDeduper) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(len(d.seen))
}
