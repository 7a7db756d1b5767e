// Package lineup reconstructs the on-court rotation of a team within a set.
//
// Lineup events are full six-position snapshots: the most recent one wins
// and nothing is merged. Every rotation or substitution is expected to emit a
// complete lineup event.
package lineup

import (
	"slices"

	"github.com/openvolley/scoresheet/internal/domain/model"
)

// Positions lists the court slots in scoresheet order.
var Positions = []string{"I", "II", "III", "IV", "V", "VI"}

// FrontRow lists the slots a libero may not occupy.
var FrontRow = []string{"II", "III", "IV"}

// ValidPosition reports whether p is one of I..VI.
func ValidPosition(p string) bool {
	return slices.Contains(Positions, p)
}

// LiberoSubstitution describes a libero standing in for a player in a slot.
type LiberoSubstitution struct {
	Position             string `json:"position"`
	LiberoNumber         string `json:"liberoNumber"`
	ReplacedPlayerNumber string `json:"replacedPlayerNumber"`
}

// State is the lineup of one team at a point in the log.
type State struct {
	// Known is false until the team recorded a lineup in the set.
	Known     bool                `json:"known"`
	Positions map[string]string   `json:"positions"`
	Libero    *LiberoSubstitution `json:"liberoSubstitution,omitempty"`
}

// Empty returns an unknown lineup with all six slots blank.
func Empty() State {
	s := State{Positions: make(map[string]string, len(Positions))}
	for _, p := range Positions {
		s.Positions[p] = ""
	}
	return s
}

// Numbers returns the players in I..VI order.
func (s State) Numbers() []string {
	out := make([]string, len(Positions))
	for i, p := range Positions {
		out[i] = s.Positions[p]
	}
	return out
}

// PositionOf returns the slot holding player, or "".
func (s State) PositionOf(player string) string {
	if player == "" {
		return ""
	}
	for _, p := range Positions {
		if s.Positions[p] == player {
			return p
		}
	}
	return ""
}

// fromEvent reads a lineup snapshot. Malformed numbers render empty.
func fromEvent(e model.Event) State {
	s := Empty()
	s.Known = true
	raw := e.Payload.Map("lineup")
	for _, p := range Positions {
		s.Positions[p] = raw.PlayerNumber(p)
	}
	if ls := e.Payload.Map("liberoSubstitution"); ls != nil {
		pos := ls.String("position")
		if !ValidPosition(pos) {
			pos = ""
		}
		replaced := ls.PlayerNumber("replacedPlayerNumber")
		if replaced == "" {
			replaced = ls.PlayerNumber("playerNumber")
		}
		s.Libero = &LiberoSubstitution{
			Position:             pos,
			LiberoNumber:         ls.PlayerNumber("liberoNumber"),
			ReplacedPlayerNumber: replaced,
		}
	}
	return s
}

// Current returns the lineup of side after the ordered set events. Libero
// entries and exits recorded after the latest snapshot are folded in.
func Current(events []model.Event, side model.Side) State {
	state := Empty()
	for _, e := range events {
		if e.Team() != side {
			continue
		}
		switch e.Type {
		case model.TypeLineup:
			state = fromEvent(e)
		case model.TypeLiberoEntry:
			state = liberoIn(state, e.Payload)
		case model.TypeLiberoExit:
			state = liberoOut(state, e.Payload)
		}
	}
	return state
}

// Initial returns the starting lineup of side: the snapshot flagged
// isInitial, or the first one recorded.
func Initial(events []model.Event, side model.Side) State {
	var first *model.Event
	for i := range events {
		e := events[i]
		if e.Type != model.TypeLineup || e.Team() != side {
			continue
		}
		if e.Payload.Bool("isInitial") {
			return fromEvent(e)
		}
		if first == nil {
			first = &events[i]
		}
	}
	if first == nil {
		return Empty()
	}
	return fromEvent(*first)
}

func liberoIn(s State, p model.Payload) State {
	pos := p.String("position")
	libero := p.First("liberoIn", "liberoNumber")
	libero = model.PlayerNumber(libero)
	if !s.Known || !ValidPosition(pos) || libero == "" {
		return s
	}
	out := s.clone()
	out.Libero = &LiberoSubstitution{
		Position:             pos,
		LiberoNumber:         libero,
		ReplacedPlayerNumber: s.Positions[pos],
	}
	out.Positions[pos] = libero
	return out
}

func liberoOut(s State, p model.Payload) State {
	pos := p.String("position")
	if !s.Known || !ValidPosition(pos) {
		return s
	}
	out := s.clone()
	back := model.PlayerNumber(p.First("playerIn", "playerNumber"))
	if back == "" && s.Libero != nil && s.Libero.Position == pos {
		back = s.Libero.ReplacedPlayerNumber
	}
	out.Positions[pos] = back
	if out.Libero != nil && out.Libero.Position == pos {
		out.Libero = nil
	}
	return out
}

func (s State) clone() State {
	out := State{Known: s.Known, Positions: make(map[string]string, len(Positions))}
	for _, p := range Positions {
		out.Positions[p] = s.Positions[p]
	}
	if s.Libero != nil {
		l := *s.Libero
		out.Libero = &l
	}
	return out
}

// next maps each slot to the slot its player moves to on rotation.
var next = map[string]string{"I": "VI", "II": "I", "III": "II", "IV": "III", "V": "IV", "VI": "V"}

// Rotate moves every player one slot clockwise (II to I, ..., I to VI),
// carrying the libero descriptor along.
func Rotate(s State) State {
	out := s.clone()
	for _, p := range Positions {
		out.Positions[next[p]] = s.Positions[p]
	}
	if out.Libero != nil && out.Libero.Position != "" {
		out.Libero.Position = next[out.Libero.Position]
	}
	return out
}

// LiberoInFrontRow reports whether the tracked libero sits in II, III or IV.
func (s State) LiberoInFrontRow() bool {
	return s.Libero != nil && slices.Contains(FrontRow, s.Libero.Position) &&
		s.Positions[s.Libero.Position] == s.Libero.LiberoNumber
}
