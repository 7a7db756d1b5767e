package repository

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/openvolley/scoresheet/internal/domain/model"
	"github.com/openvolley/scoresheet/pkg/metrics"
)

type matchLog struct {
	events []model.Event
	ids    map[string]struct{}
	match  *model.Match
	sets   map[int]model.Set
}

// MemoryStore keeps everything in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	matches map[string]*matchLog
	count   int
	closed  bool
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{matches: make(map[string]*matchLog)}
}

// log returns the entry of matchID, creating it. Callers hold the write lock.
func (s *MemoryStore) log(matchID string) *matchLog {
	l, ok := s.matches[matchID]
	if !ok {
		l = &matchLog{ids: make(map[string]struct{}), sets: make(map[int]model.Set)}
		s.matches[matchID] = l
	}
	return l
}

func (s *MemoryStore) Append(_ context.Context, e model.Event) (bool, error) {
	if err := validateEvent(e); err != nil {
		return false, err
	}
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, ErrClosed
	}

	l := s.log(e.MatchID)
	if _, dup := l.ids[e.ID]; dup {
		return false, nil
	}
	l.ids[e.ID] = struct{}{}
	l.events = append(l.events, e)
	s.count++

	metrics.RecordStoreAppendLatency(float64(time.Since(start).Microseconds()) / 1000)
	metrics.UpdateStoreCounts(s.count, len(s.matches))
	return true, nil
}

func (s *MemoryStore) Events(_ context.Context, matchID string) ([]model.Event, error) {
	start := time.Now()
	defer func() { metrics.RecordStoreQueryLatency(float64(time.Since(start).Microseconds()) / 1000) }()

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	l, ok := s.matches[matchID]
	if !ok {
		return []model.Event{}, nil
	}
	return slices.Clone(l.events), nil
}

func (s *MemoryStore) PutMatch(_ context.Context, m model.Match) error {
	if m.ID == "" {
		return ErrInvalidMatch
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.log(m.ID).match = &m
	return nil
}

func (s *MemoryStore) Match(_ context.Context, matchID string) (model.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return model.Match{}, ErrClosed
	}
	l, ok := s.matches[matchID]
	if !ok || l.match == nil {
		return model.Match{}, ErrNotFound
	}
	return *l.match, nil
}

func (s *MemoryStore) PutSet(_ context.Context, matchID string, set model.Set) (model.Set, error) {
	if err := validateSet(matchID, set); err != nil {
		return model.Set{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return model.Set{}, ErrClosed
	}
	l := s.log(matchID)
	if stored, ok := l.sets[set.Index]; ok {
		set = stored.Merge(set)
	}
	l.sets[set.Index] = set
	return set, nil
}

func (s *MemoryStore) Sets(_ context.Context, matchID string) ([]model.Set, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	out := []model.Set{}
	if l, ok := s.matches[matchID]; ok {
		for i := model.MinSet; i <= model.MaxSet; i++ {
			if set, ok := l.sets[i]; ok {
				out = append(out, set)
			}
		}
	}
	return out, nil
}

func (s *MemoryStore) Matches(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	out := make([]string, 0, len(s.matches))
	for id := range s.matches {
		out = append(out, id)
	}
	slices.Sort(out)
	return out, nil
}

func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.count
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
