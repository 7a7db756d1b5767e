// Package model contains domain models passed between layers.
package model

// EventType names the kind of action recorded in the match log.
type EventType string

// Known event types. Anything else is preserved and ignored by derivations.
const (
	TypePoint        EventType = "point"
	TypeTimeout      EventType = "timeout"
	TypeSubstitution EventType = "substitution"
	TypeSanction     EventType = "sanction"
	TypeLineup       EventType = "lineup"
	TypeRallyStart   EventType = "rally_start"
	TypeReplay       EventType = "replay"
	TypeSetStart     EventType = "set_start"
	TypeLiberoEntry  EventType = "libero_entry"
	TypeLiberoExit   EventType = "libero_exit"
)

// Known reports whether t is one of the event types the engine understands.
func (t EventType) Known() bool {
	switch t {
	case TypePoint, TypeTimeout, TypeSubstitution, TypeSanction, TypeLineup,
		TypeRallyStart, TypeReplay, TypeSetStart, TypeLiberoEntry, TypeLiberoExit:
		return true
	}
	return false
}

// Event is one immutable entry of a match log.
type Event struct {
	ID       string    `json:"id" yaml:"id" msgpack:"id"`
	MatchID  string    `json:"matchId" yaml:"matchId" msgpack:"matchId"`
	SetIndex int       `json:"setIndex,omitempty" yaml:"setIndex,omitempty" msgpack:"setIndex,omitempty"`
	Type     EventType `json:"type" yaml:"type" msgpack:"type"`
	Payload  Payload   `json:"payload,omitempty" yaml:"payload,omitempty" msgpack:"payload,omitempty"`
	TS       Timestamp `json:"ts,omitzero" yaml:"ts,omitempty" msgpack:"ts"`
	Seq      int64     `json:"seq,omitempty" yaml:"seq,omitempty" msgpack:"seq,omitempty"`
}

// Team returns the side the event belongs to, or "" when absent or malformed.
func (e Event) Team() Side {
	return e.Payload.Side("team")
}

// MinSet and MaxSet bound the set index of a match.
const (
	MinSet = 1
	MaxSet = 5
)

// Set returns the event's set index, defaulting to set 1 when it is missing
// or outside 1..5.
func (e Event) Set() int {
	if e.SetIndex < MinSet || e.SetIndex > MaxSet {
		return MinSet
	}
	return e.SetIndex
}
