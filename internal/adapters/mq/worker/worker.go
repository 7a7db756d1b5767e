// Package worker appends queued match events to the store.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/openvolley/scoresheet/internal/domain/model"
	"github.com/openvolley/scoresheet/pkg/logger"
	"github.com/openvolley/scoresheet/pkg/metrics"
)

const poolShutdownTimeout = 30 * time.Second

// Appender writes an event to a match log. It reports false for an event
// the log already holds.
type Appender interface {
	Append(ctx context.Context, e model.Event) (bool, error)
}

// Queue defines how workers receive events.
type Queue interface {
	Dequeue(ctx context.Context) <-chan model.Event
}

// FailureFunc is called when an event could not be appended.
type FailureFunc func(ctx context.Context, e model.Event, err error)

// Worker consumes a queue until it is closed or stopped.
type Worker interface {
	Run(ctx context.Context)
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker for processing events.
type InMemoryWorker struct {
	queue     Queue
	appender  Appender
	onFailure FailureFunc
	name      string
	active    *atomic.Int64

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a worker reading q and writing to appender.
func NewInMemoryWorker(q Queue, appender Appender, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		appender: appender,
		name:     "worker",
		active:   new(atomic.Int64),
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run processes events until the queue channel closes, ctx is done or
// Shutdown is called.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	events := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			if err := w.process(ctx, e); err != nil {
				w.logger.Error(ctx, "append failed",
					logger.String("matchId", e.MatchID),
					logger.String("eventId", e.ID),
					logger.Error(err))
			}
		}
	}
}

// Shutdown stops the worker without waiting for the queue to drain.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	select {
	case <-w.shutdown:
	default:
		close(w.shutdown)
	}
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Done is closed once Run has returned.
func (w *InMemoryWorker) Done() <-chan struct{} { return w.done }

func (w *InMemoryWorker) process(ctx context.Context, e model.Event) error { //nolint:gocritic // events travel by value
	start := time.Now()
	metrics.UpdateWorkerActiveCount(int(w.active.Add(1)))
	defer func() {
		metrics.UpdateWorkerActiveCount(int(w.active.Add(-1)))
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	appended, err := w.appender.Append(ctx, e)
	if err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "append_error")
		if w.onFailure != nil {
			w.onFailure(ctx, e, err)
		}
		return fmt.Errorf("append event %s: %w", e.ID, err)
	}
	if appended {
		metrics.RecordEventAppended()
	} else {
		metrics.RecordEventDuplicate()
		w.logger.Debug(ctx, "event already stored",
			logger.String("matchId", e.MatchID),
			logger.String("eventId", e.ID))
	}
	return nil
}

// Pool runs several workers on one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	logger  logger.Logger
	cancel  context.CancelFunc
}

// NewPool creates workerCount workers. A count below one uses one worker
// per CPU.
func NewPool(workerCount int, q Queue, appender Appender, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}
	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Get().Named("worker-pool"),
	}
	active := new(atomic.Int64)
	for i := range workerCount {
		workerOpts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		w := NewInMemoryWorker(q, appender, workerOpts...)
		w.active = active
		pool.workers[i] = w
	}
	metrics.UpdateWorkerCount(workerCount)
	metrics.UpdateWorkerActiveCount(0)
	return pool
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start runs every worker in its own goroutine. Workers keep ctx's values
// but not its cancellation: only Shutdown stops them, after the queue has
// drained or the drain timed out.
func (p *Pool) Start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	p.cancel = cancel
	for _, w := range p.workers {
		go w.Run(runCtx)
	}
}

// Shutdown closes the queue when it supports closing and waits for the
// workers to drain it. Workers still busy when ctx or the pool timeout
// expires are stopped.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	drainCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var firstErr error
	for i, w := range p.workers {
		select {
		case <-w.done:
			continue
		case <-drainCtx.Done():
		}
		p.logger.Warn(ctx, "worker did not drain in time", logger.Int("worker_id", i))
		stopCtx, stop := context.WithTimeout(context.Background(), time.Second)
		if err := w.Shutdown(stopCtx); err != nil && firstErr == nil {
			firstErr = err
		}
		stop()
	}
	if p.cancel != nil {
		p.cancel()
	}
	return firstErr
}
