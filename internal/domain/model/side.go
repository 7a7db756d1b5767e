package model

import "strings"

// Side is the persisted team identity of a match.
type Side string

// Sides of a match.
const (
	SideHome Side = "home"
	SideAway Side = "away"
)

// ParseSide normalizes s to a Side, returning "" for anything else.
func ParseSide(s string) Side {
	switch Side(strings.ToLower(strings.TrimSpace(s))) {
	case SideHome:
		return SideHome
	case SideAway:
		return SideAway
	}
	return ""
}

// Valid reports whether s is home or away.
func (s Side) Valid() bool { return s == SideHome || s == SideAway }

// Other returns the opposing side. An invalid side maps to "".
func (s Side) Other() Side {
	switch s {
	case SideHome:
		return SideAway
	case SideAway:
		return SideHome
	}
	return ""
}

// Label is the scoresheet name of a team.
type Label string

// Scoresheet labels.
const (
	LabelA Label = "A"
	LabelB Label = "B"
)

// Other returns the opposing label.
func (l Label) Other() Label {
	if l == LabelA {
		return LabelB
	}
	return LabelA
}

// Tally counts points per side.
type Tally struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

// Of returns the count for side.
func (t Tally) Of(side Side) int {
	if side == SideAway {
		return t.Away
	}
	return t.Home
}

// Add increments the count for side. Invalid sides are ignored.
func (t *Tally) Add(side Side) {
	switch side {
	case SideHome:
		t.Home++
	case SideAway:
		t.Away++
	}
}

// Max returns the larger of the two counts.
func (t Tally) Max() int {
	return max(t.Home, t.Away)
}
