// Package queue buffers accepted match events between the HTTP intake and
// the workers that append them to the store.
package queue

import (
	"context"
	"sync"

	"github.com/openvolley/scoresheet/internal/domain/model"
	"github.com/openvolley/scoresheet/pkg/metrics"
)

const defaultCapacity = 10000

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds an event. It returns false when the queue is full, closed
	// or ctx is done.
	Enqueue(ctx context.Context, e model.Event) bool
	// Dequeue returns a channel of queued events, closed once the queue is
	// closed and drained or ctx is done.
	Dequeue(ctx context.Context) <-chan model.Event
	Len(ctx context.Context) int
	Close() error
	IsClosed() bool
}

// InMemoryQueue implements Queue on a buffered channel.
type InMemoryQueue struct {
	events   chan model.Event
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a bounded in-memory queue.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.events = make(chan model.Event, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	q.report()
	return q
}

func (q *InMemoryQueue) report() {
	size := len(q.events)
	metrics.UpdateQueueSize(size)
	metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
}

func (q *InMemoryQueue) reject(reason string) bool {
	metrics.RecordQueueEnqueueError()
	metrics.RecordErrorByComponent("queue", reason)
	return false
}

func (q *InMemoryQueue) Enqueue(ctx context.Context, e model.Event) bool { //nolint:gocritic // events travel by value
	// The read lock keeps Close from closing the channel mid-send.
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return q.reject("closed")
	}
	if ctx.Err() != nil {
		return q.reject("context_cancelled")
	}

	select {
	case q.events <- e:
		metrics.RecordQueueEnqueue()
		q.report()
		return true
	default:
		return q.reject("queue_full")
	}
}

func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan model.Event {
	out := make(chan model.Event)
	go func() {
		defer close(out)
		for {
			select {
			case e, ok := <-q.events:
				if !ok {
					return
				}
				q.report()
				select {
				case out <- e:
					metrics.RecordQueueDequeue()
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

func (q *InMemoryQueue) Len(_ context.Context) int {
	q.report()
	return len(q.events)
}

// Close stops intake. Events already queued can still be dequeued.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	close(q.events)
	q.closed = true
	return nil
}

func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
