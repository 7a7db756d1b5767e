// Package service wires the match store, the intake queue and the workers,
// and serves derived scoresheet views to the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	eventqueue "github.com/openvolley/scoresheet/internal/adapters/mq/queue"
	workerpool "github.com/openvolley/scoresheet/internal/adapters/mq/worker"
	"github.com/openvolley/scoresheet/internal/adapters/repository"
	"github.com/openvolley/scoresheet/internal/domain/dedupe"
	"github.com/openvolley/scoresheet/internal/domain/derive"
	"github.com/openvolley/scoresheet/internal/domain/ledger"
	"github.com/openvolley/scoresheet/internal/domain/model"
	"github.com/openvolley/scoresheet/internal/domain/ordering"
	"github.com/openvolley/scoresheet/internal/domain/sides"
	"github.com/openvolley/scoresheet/pkg/logger"
	"github.com/openvolley/scoresheet/pkg/metrics"
)

// Store drivers. DriverCustom labels an injected store of another type.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
	DriverCustom = "custom"
)

// Service implements the API dependencies of the scoresheet server.
type Service struct {
	mu sync.RWMutex

	store      repository.Store
	ownsStore  bool
	deduper    dedupe.Deduper
	eventQueue eventqueue.Queue
	workerPool *workerpool.Pool

	workerCount  int
	queueSize    int
	dedupeSize   int
	storeDriver  string
	sqlitePath   string
	sanctionRows int
	defaultView  sides.View

	started bool
	logger  logger.Logger
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:  runtime.NumCPU(),
		queueSize:    10000,
		dedupeSize:   dedupe.DefaultMaxSize,
		storeDriver:  DriverMemory,
		sqlitePath:   "scoresheet.db",
		sanctionRows: ledger.DefaultSanctionRows,
		defaultView:  sides.ViewSecondReferee,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start opens the store and starts the worker pool.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	if s.store == nil {
		store, err := openStore(s.storeDriver, s.sqlitePath)
		if err != nil {
			return err
		}
		s.store = store
		s.ownsStore = true
	}
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.eventQueue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
	s.workerPool = workerpool.NewPool(s.workerCount, s.eventQueue, s.store,
		workerpool.WithFailureHandler(s.releaseFailed))
	s.workerPool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "scoresheet service started",
		logger.String("store", s.storeDriver),
		logger.Int("workers", s.workerPool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
	)
	return nil
}

func openStore(driver, path string) (repository.Store, error) {
	switch driver {
	case "", DriverMemory:
		return repository.NewMemoryStore(), nil
	case DriverSQLite:
		store, err := repository.OpenSQLite(path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store %s: %w", path, err)
		}
		return store, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
}

// releaseFailed forgets the id of an event the store rejected so a client
// retry is not reported as a duplicate.
func (s *Service) releaseFailed(ctx context.Context, e model.Event, err error) {
	s.deduper.Unrecord(ctx, dedupe.Key(e.MatchID, e.ID))
	s.logger.Warn(ctx, "event released for retry",
		logger.String("matchId", e.MatchID),
		logger.String("eventId", e.ID),
		logger.Error(err))
}

// Stop drains the queue and closes the store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping scoresheet service...")

	if err := s.workerPool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool shutdown", logger.Error(err))
	}
	if s.ownsStore {
		if err := s.store.Close(); err != nil {
			s.logger.Warn(ctx, "closing store", logger.Error(err))
		}
		s.store = nil
		s.ownsStore = false
	}

	s.started = false
	s.logger.Info(ctx, "scoresheet service stopped")
}

// SeenAndRecord atomically checks whether the event id was seen for the
// match and records it if not.
func (s *Service) SeenAndRecord(ctx context.Context, matchID, eventID string) bool {
	seen := s.deduper.SeenAndRecord(ctx, dedupe.Key(matchID, eventID))
	if seen {
		metrics.RecordEventDuplicate()
	}
	return seen
}

// Unrecord releases an event id so it can be retried.
func (s *Service) Unrecord(ctx context.Context, matchID, eventID string) {
	s.deduper.Unrecord(ctx, dedupe.Key(matchID, eventID))
}

// Enqueue submits an event for asynchronous append. It returns false under
// backpressure.
func (s *Service) Enqueue(ctx context.Context, e model.Event) bool { //nolint:gocritic // events travel by value
	metrics.RecordEventReceived()
	ok := s.eventQueue.Enqueue(ctx, e)
	if !ok {
		metrics.RecordEventRejected()
		s.logger.Debug(ctx, "event rejected by queue",
			logger.String("matchId", e.MatchID),
			logger.String("eventId", e.ID))
	}
	return ok
}

// PutMatch stores the match record.
func (s *Service) PutMatch(ctx context.Context, m model.Match) error {
	return s.store.PutMatch(ctx, m)
}

// Match returns the stored match record.
func (s *Service) Match(ctx context.Context, matchID string) (model.Match, error) {
	return s.store.Match(ctx, matchID)
}

// PutSet merges a set record into the store.
func (s *Service) PutSet(ctx context.Context, matchID string, set model.Set) (model.Set, error) {
	return s.store.PutSet(ctx, matchID, set)
}

// Matches lists the known match ids.
func (s *Service) Matches(ctx context.Context) ([]string, error) {
	return s.store.Matches(ctx)
}

// Events returns the match log in canonical order.
func (s *Service) Events(ctx context.Context, matchID string) ([]model.Event, error) {
	events, err := s.store.Events(ctx, matchID)
	if err != nil {
		return nil, err
	}
	return ordering.Sort(events), nil
}

type snapshot struct {
	events []model.Event
	match  model.Match
	sets   []model.Set
}

// load reads everything the derivations need. A match without a record,
// events or sets does not exist.
func (s *Service) load(ctx context.Context, matchID string) (snapshot, error) {
	m, err := s.store.Match(ctx, matchID)
	found := err == nil
	switch {
	case errors.Is(err, repository.ErrNotFound):
		m = model.Match{ID: matchID}
	case err != nil:
		return snapshot{}, fmt.Errorf("load match %s: %w", matchID, err)
	}
	events, err := s.store.Events(ctx, matchID)
	if err != nil {
		return snapshot{}, fmt.Errorf("load events %s: %w", matchID, err)
	}
	sets, err := s.store.Sets(ctx, matchID)
	if err != nil {
		return snapshot{}, fmt.Errorf("load sets %s: %w", matchID, err)
	}
	if !found && len(events) == 0 && len(sets) == 0 {
		return snapshot{}, repository.ErrNotFound
	}
	return snapshot{events: events, match: m, sets: sets}, nil
}

// SetView derives the view of one set. An empty view uses the configured
// default.
func (s *Service) SetView(ctx context.Context, matchID string, setIndex int, view sides.View) (derive.SetView, error) {
	if setIndex < model.MinSet || setIndex > model.MaxSet {
		return derive.SetView{}, repository.ErrInvalidSet
	}
	if view == "" {
		view = s.defaultView
	}
	snap, err := s.load(ctx, matchID)
	if err != nil {
		return derive.SetView{}, err
	}
	start := time.Now()
	v := derive.Derive(snap.events, snap.match, snap.sets, setIndex, view,
		derive.WithSanctionRows(s.sanctionRows))
	metrics.RecordDerivation("set", float64(time.Since(start).Microseconds())/1000)
	return v, nil
}

// Summary derives the end-of-match summary.
func (s *Service) Summary(ctx context.Context, matchID string) (derive.MatchSummary, error) {
	snap, err := s.load(ctx, matchID)
	if err != nil {
		return derive.MatchSummary{}, err
	}
	start := time.Now()
	sum := derive.Summarize(snap.events, snap.match, snap.sets,
		derive.WithSanctionRows(s.sanctionRows))
	metrics.RecordDerivation("summary", float64(time.Since(start).Microseconds())/1000)
	return sum, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]any{
		"started":     s.started,
		"store":       s.storeDriver,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
	}
	if s.started {
		queueLen := s.eventQueue.Len(ctx)
		stats["queueLength"] = queueLen
		stats["storedEvents"] = s.store.Count(ctx)
		stats["dedupeEntries"] = s.deduper.Size()
		if ids, err := s.store.Matches(ctx); err == nil {
			stats["matches"] = len(ids)
		}
		metrics.UpdateQueueSize(queueLen)
	}
	return stats
}

// Size returns the current number of entries in the deduper.
func (s *Service) Size() int64 {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}
