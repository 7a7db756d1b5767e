// Package dedupe tracks event ids already accepted by the service.
package dedupe

import (
	"container/list"
	"context"
	"sync"
)

// DefaultMaxSize bounds the number of remembered ids.
const DefaultMaxSize = 50000

// Deduper records seen event ids so a retried post is applied once.
type Deduper interface {
	// SeenAndRecord reports whether key was seen before and records it if
	// not, atomically.
	SeenAndRecord(ctx context.Context, key string) bool
	// Unrecord forgets key so a rejected event can be posted again.
	Unrecord(ctx context.Context, key string)
	Size() int64
}

// memoryDeduper keeps the most recent ids in insertion order and evicts the
// oldest once maxSize is reached. maxSize <= 0 never evicts.
type memoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]*list.Element
	order   *list.List
	maxSize int
}

// NewInMemoryDeduper returns a Deduper held in process memory.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &memoryDeduper{
		maxSize: DefaultMaxSize,
		seen:    make(map[string]*list.Element),
		order:   list.New(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *memoryDeduper) SeenAndRecord(_ context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[key]; ok {
		return true
	}
	if d.maxSize > 0 && d.order.Len() >= d.maxSize {
		oldest := d.order.Back()
		d.order.Remove(oldest)
		delete(d.seen, oldest.Value.(string))
	}
	d.seen[key] = d.order.PushFront(key)
	return false
}

func (d *memoryDeduper) Unrecord(_ context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.seen[key]; ok {
		d.order.Remove(el)
		delete(d.seen, key)
	}
}

func (d *memoryDeduper) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(d.order.Len())
}

// Key scopes an event id to its match.
func Key(matchID, eventID string) string {
	return matchID + "/" + eventID
}
