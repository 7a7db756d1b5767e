package queue

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/openvolley/scoresheet/internal/domain/model"
)

func ev(id string) model.Event {
	return model.Event{ID: id, MatchID: "m1", SetIndex: 1, Type: model.TypePoint, Payload: model.Payload{"team": "home"}}
}

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
	if !q.Enqueue(ctx, ev("e1")) {
		t.Fatal("expected enqueue to succeed")
	}
	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	got := <-q.Dequeue(ctx)
	if got.ID != "e1" || got.Team() != model.SideHome {
		t.Errorf("unexpected event %+v", got)
	}
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if !q.Enqueue(ctx, ev("e1")) || !q.Enqueue(ctx, ev("e2")) {
		t.Fatal("expected enqueue to succeed")
	}
	if q.Enqueue(ctx, ev("e3")) {
		t.Error("expected enqueue to fail when full")
	}
	if l := q.Len(ctx); l != 2 {
		t.Errorf("expected length 2, got %d", l)
	}
}

func TestInMemoryQueue_CancelledContext(t *testing.T) {
	q := NewInMemoryQueue()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if q.Enqueue(ctx, ev("e1")) {
		t.Error("expected enqueue to fail on a cancelled context")
	}
}

func TestInMemoryQueue_ConcurrentAccess(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(50))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	const producers, perProducer = 8, 100
	var consumed sync.Map
	var wg sync.WaitGroup

	out := q.Dequeue(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for e := range out {
			consumed.Store(e.ID, true)
		}
	}()

	for p := range producers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range perProducer {
				e := ev(fmt.Sprintf("e%d_%d", p, j))
				for !q.Enqueue(ctx, e) {
					time.Sleep(time.Millisecond)
				}
			}
		}()
	}
	wg.Wait()
	_ = q.Close()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not drain the queue")
	}

	n := 0
	consumed.Range(func(_, _ any) bool { n++; return true })
	if n != producers*perProducer {
		t.Errorf("expected %d events, got %d", producers*perProducer, n)
	}
}

func TestInMemoryQueue_CloseDrains(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(10))
	ctx := context.Background()

	_ = q.Enqueue(ctx, ev("e1"))
	_ = q.Enqueue(ctx, ev("e2"))
	if q.IsClosed() {
		t.Error("expected queue to be open initially")
	}
	if err := q.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to be closed")
	}
	if q.Enqueue(ctx, ev("e3")) {
		t.Error("expected enqueue to fail after closing")
	}

	var ids []string
	timeout := time.After(time.Second)
	out := q.Dequeue(ctx)
	for {
		select {
		case e, ok := <-out:
			if !ok {
				if len(ids) != 2 || ids[0] != "e1" || ids[1] != "e2" {
					t.Errorf("expected queued events to drain in order, got %v", ids)
				}
				if err := q.Close(); err != nil {
					t.Errorf("second close: %v", err)
				}
				return
			}
			ids = append(ids, e.ID)
		case <-timeout:
			t.Fatal("expected dequeue channel to close")
		}
	}
}
