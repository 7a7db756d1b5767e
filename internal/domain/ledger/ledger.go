// Package ledger replays timeouts, substitutions and sanctions.
package ledger

import (
	"strconv"

	"github.com/openvolley/scoresheet/internal/domain/model"
)

// Counts holds the timeouts and substitutions of one team in one set. Both
// are nil when the set has not started, so "none taken" and "not played"
// render differently.
type Counts struct {
	Timeouts      *int `json:"timeouts"`
	Substitutions *int `json:"substitutions"`
}

// Started reports whether a set has begun: it has points or a start time
// on record, or its log holds a set start, rally start or point.
func Started(events []model.Event, set model.Set) bool {
	if set.HomePoints > 0 || set.AwayPoints > 0 || !set.StartTime.IsZero() {
		return true
	}
	for _, e := range events {
		switch e.Type {
		case model.TypeSetStart, model.TypeRallyStart, model.TypePoint:
			return true
		}
	}
	return false
}

// CountsOf counts the timeouts and substitutions of side in the set events.
func CountsOf(events []model.Event, side model.Side, started bool) Counts {
	if !started {
		return Counts{}
	}
	var timeouts, subs int
	for _, e := range events {
		if e.Team() != side {
			continue
		}
		switch e.Type {
		case model.TypeTimeout:
			timeouts++
		case model.TypeSubstitution:
			subs++
		}
	}
	return Counts{Timeouts: &timeouts, Substitutions: &subs}
}

// ScoreAt returns the tally after events[0..i].
func ScoreAt(events []model.Event, i int) model.Tally {
	var t model.Tally
	for j := 0; j <= i && j < len(events); j++ {
		if events[j].Type == model.TypePoint {
			t.Add(events[j].Team())
		}
	}
	return t
}

// Format renders a tally as "own:opponent" from the point of view of side.
func Format(t model.Tally, side model.Side) string {
	return strconv.Itoa(t.Of(side)) + ":" + strconv.Itoa(t.Of(side.Other()))
}

// TimeoutScores lists, for each timeout side requested in the set, the
// score at that moment with the requesting team first.
func TimeoutScores(events []model.Event, side model.Side) []string {
	out := []string{}
	for i, e := range events {
		if e.Type == model.TypeTimeout && e.Team() == side {
			out = append(out, Format(ScoreAt(events, i), side))
		}
	}
	return out
}
