// Package ordering puts a match log into its canonical per-set order.
package ordering

import (
	"slices"
	"strings"

	"github.com/openvolley/scoresheet/internal/domain/model"
)

// Compare orders two events. Events that both carry a nonzero and distinct
// sequence number are ordered by it; otherwise by timestamp. Remaining ties
// fall back to the event id so the result does not depend on input order.
// Compare is not transitive on a set mixing events with and without a
// sequence number; Sort stays deterministic for such sets but their order
// follows the ids rather than the match.
func Compare(a, b model.Event) int {
	if a.Seq > 0 && b.Seq > 0 && a.Seq != b.Seq {
		if a.Seq < b.Seq {
			return -1
		}
		return 1
	}
	if c := a.TS.Compare(b.TS.Time); c != 0 {
		return c
	}
	return strings.Compare(a.ID, b.ID)
}

// Sort returns a sorted copy of events. The input is first put into id
// order so that mixed seq/ts logs sort identically however they arrived.
func Sort(events []model.Event) []model.Event {
	out := slices.Clone(events)
	if out == nil {
		out = []model.Event{}
	}
	slices.SortStableFunc(out, func(a, b model.Event) int {
		return strings.Compare(a.ID, b.ID)
	})
	slices.SortStableFunc(out, Compare)
	return out
}

// BySet partitions events by set index in canonical order. Every set 1..5
// has an entry; events with a missing or out-of-range index land in set 1.
func BySet(events []model.Event) map[int][]model.Event {
	out := make(map[int][]model.Event, model.MaxSet)
	for i := model.MinSet; i <= model.MaxSet; i++ {
		out[i] = []model.Event{}
	}
	for _, e := range Sort(events) {
		out[e.Set()] = append(out[e.Set()], e)
	}
	return out
}

// ForSet returns the ordered events of a single set.
func ForSet(events []model.Event, setIndex int) []model.Event {
	out := []model.Event{}
	for _, e := range Sort(events) {
		if e.Set() == setIndex {
			out = append(out, e)
		}
	}
	return out
}

// OfType keeps events of type t, preserving order.
func OfType(events []model.Event, t model.EventType) []model.Event {
	out := []model.Event{}
	for _, e := range events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// OfTeam keeps events of type t belonging to side, preserving order.
func OfTeam(events []model.Event, t model.EventType, side model.Side) []model.Event {
	out := []model.Event{}
	for _, e := range events {
		if e.Type == t && e.Team() == side {
			out = append(out, e)
		}
	}
	return out
}

// Score counts the points of each side in events.
func Score(events []model.Event) model.Tally {
	var t model.Tally
	for _, e := range events {
		if e.Type == model.TypePoint {
			t.Add(e.Team())
		}
	}
	return t
}
