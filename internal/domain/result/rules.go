package result

import "github.com/openvolley/scoresheet/internal/domain/model"

// Set and match targets.
const (
	SetPoints      = 25
	TiebreakPoints = 15
	SetsToWin      = 3
	// MinLead is the margin a set must be won by.
	MinLead = 2
)

// IsTiebreak reports whether setIndex is the deciding set.
func IsTiebreak(setIndex int) bool { return setIndex == model.MaxSet }

// IsSetComplete reports whether a score ends the set.
func IsSetComplete(home, away int, tiebreak bool) bool {
	target := SetPoints
	if tiebreak {
		target = TiebreakPoints
	}
	hi, lo := max(home, away), min(home, away)
	return hi >= target && hi-lo >= MinLead
}

// IsMatchFinished reports whether a side has won exactly three sets.
func IsMatchFinished(a, b int) bool {
	return a == SetsToWin || b == SetsToWin
}
