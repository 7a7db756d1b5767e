// Package repository stores match logs, match records and set records.
package repository

import (
	"context"

	"github.com/openvolley/scoresheet/internal/domain/model"
)

// Store provides read/write access to match data. Events are append-only:
// an event id is accepted once per match and never modified afterwards.
type Store interface {
	// Append adds e to its match log. It returns false without error when
	// the match already holds an event with the same id.
	Append(ctx context.Context, e model.Event) (bool, error)
	// Events returns the log of a match in arrival order.
	Events(ctx context.Context, matchID string) ([]model.Event, error)

	// PutMatch stores the match record, replacing any previous one.
	PutMatch(ctx context.Context, m model.Match) error
	// Match returns the match record or ErrNotFound.
	Match(ctx context.Context, matchID string) (model.Match, error)

	// PutSet merges s into the stored record of its set and returns the
	// result. A finished set stays finished.
	PutSet(ctx context.Context, matchID string, s model.Set) (model.Set, error)
	// Sets returns the stored set records ordered by index.
	Sets(ctx context.Context, matchID string) ([]model.Set, error)

	// Matches lists the ids of all known matches in ascending order.
	Matches(ctx context.Context) ([]string, error)
	// Count returns the number of stored events.
	Count(ctx context.Context) int

	Close() error
}

func validateEvent(e model.Event) error {
	if e.ID == "" || e.MatchID == "" || e.Type == "" {
		return ErrInvalidEvent
	}
	return nil
}

func validateSet(matchID string, s model.Set) error {
	if matchID == "" || s.Index < model.MinSet || s.Index > model.MaxSet {
		return ErrInvalidSet
	}
	return nil
}
