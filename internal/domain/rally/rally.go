// Package rally tracks the rally state and the serving team of a set.
package rally

import (
	"github.com/openvolley/scoresheet/internal/domain/model"
	"github.com/openvolley/scoresheet/internal/domain/sides"
)

// Status is the state of the current rally.
type Status string

// Rally states.
const (
	Idle   Status = "idle"
	InPlay Status = "in_play"
)

// State folds the ordered set events into the current rally status:
// rally_start puts the ball in play, point, replay and set_start end the
// rally. Other events leave the status unchanged.
func State(events []model.Event) Status {
	status := Idle
	for _, e := range events {
		switch e.Type {
		case model.TypeRallyStart:
			status = InPlay
		case model.TypePoint, model.TypeReplay, model.TypeSetStart:
			status = Idle
		}
	}
	return status
}

// IsFirstRally reports whether no point has been scored yet.
func IsFirstRally(events []model.Event) bool {
	for _, e := range events {
		if e.Type == model.TypePoint && e.Team().Valid() {
			return false
		}
	}
	return true
}

// Server returns the side serving the next rally: the scorer of the latest
// point, or first while the set has no points.
func Server(events []model.Event, first model.Side) model.Side {
	server := first
	for _, e := range events {
		if e.Type == model.TypePoint && e.Team().Valid() {
			server = e.Team()
		}
	}
	return server
}

// FirstServer resolves the side serving first in setIndex.
//
// A first server recorded on the set always wins. Otherwise set 1 uses the
// match record (first serve, then the coin toss choice of team A, then
// home), sets 2 to 4 alternate from the previous set, and set 5, which
// follows a new toss, defaults to team A.
func FirstServer(m model.Match, sets []model.Set, setIndex int) model.Side {
	if s, ok := model.FindSet(sets, setIndex); ok && s.FirstServe.Valid() {
		return s.FirstServe
	}
	switch {
	case setIndex <= model.MinSet:
		if m.FirstServe.Valid() {
			return m.FirstServe
		}
		if m.CoinTossServeA != nil {
			if *m.CoinTossServeA {
				return sides.TeamAKey(m)
			}
			return sides.TeamBKey(m)
		}
		return model.SideHome
	case setIndex >= model.MaxSet:
		return sides.TeamAKey(m)
	default:
		return FirstServer(m, sets, setIndex-1).Other()
	}
}
