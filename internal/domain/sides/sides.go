// Package sides resolves scoresheet labels and court placement.
//
// All fallbacks for a missing coin toss live here so every consumer applies
// the same default: home is team A.
package sides

import "github.com/openvolley/scoresheet/internal/domain/model"

// View is the position the court is observed from.
type View string

// Supported views. The second referee view is the base placement; the first
// referee faces the opposite baseline and sees it mirrored.
const (
	ViewSecondReferee View = "second_referee"
	ViewFirstReferee  View = "first_referee"
)

// ParseView returns the view named by s, defaulting to the second referee.
func ParseView(s string) View {
	if View(s) == ViewFirstReferee {
		return ViewFirstReferee
	}
	return ViewSecondReferee
}

// Set5SwitchPoints is the score at which teams change courts in set 5.
const Set5SwitchPoints = 8

// TeamAKey returns the side labelled A, defaulting to home.
func TeamAKey(m model.Match) model.Side {
	if m.CoinTossTeamA.Valid() {
		return m.CoinTossTeamA
	}
	return model.SideHome
}

// TeamBKey returns the side labelled B.
func TeamBKey(m model.Match) model.Side {
	return TeamAKey(m).Other()
}

// LabelOf maps a side to its scoresheet label.
func LabelOf(m model.Match, side model.Side) model.Label {
	if side == TeamAKey(m) {
		return model.LabelA
	}
	return model.LabelB
}

// SideOf maps a label to its side.
func SideOf(m model.Match, label model.Label) model.Side {
	if label == model.LabelB {
		return TeamBKey(m)
	}
	return TeamAKey(m)
}

// Placement is the left/right assignment of one set.
type Placement struct {
	Left      model.Label `json:"left"`
	Right     model.Label `json:"right"`
	LeftSide  model.Side  `json:"leftSide"`
	RightSide model.Side  `json:"rightSide"`
}

// Swapped reports whether label B starts on the left in setIndex for the
// second referee view. Set 5 swaps back once the court switch happened.
func Swapped(m model.Match, setIndex int) bool {
	switch {
	case setIndex < model.MinSet+1 || setIndex > model.MaxSet:
		return false
	case setIndex == model.MaxSet:
		return !m.Set5CourtSwitched
	default:
		return true
	}
}

// Place computes the placement of setIndex seen from view.
func Place(m model.Match, setIndex int, view View) Placement {
	left := model.LabelA
	if Swapped(m, setIndex) {
		left = model.LabelB
	}
	if view == ViewFirstReferee {
		left = left.Other()
	}
	return Placement{
		Left:      left,
		Right:     left.Other(),
		LeftSide:  SideOf(m, left),
		RightSide: SideOf(m, left.Other()),
	}
}

// PositionOf returns "left" or "right" for label in the placement.
func (p Placement) PositionOf(label model.Label) string {
	if p.Left == label {
		return "left"
	}
	return "right"
}

// ShouldSwitchSet5 reports whether the set-5 court change is due.
func ShouldSwitchSet5(score model.Tally) bool {
	return score.Max() >= Set5SwitchPoints
}
