// Package result aggregates finished sets into the match summary.
package result

import (
	"fmt"
	"time"

	"github.com/openvolley/scoresheet/internal/domain/ledger"
	"github.com/openvolley/scoresheet/internal/domain/model"
	"github.com/openvolley/scoresheet/internal/domain/sides"
)

// BreakBetweenSets is the assumed interval between two sets when the next
// set has no recorded start.
const BreakBetweenSets = 3 * time.Minute

// SetInput is what the aggregator needs to know about one set.
type SetInput struct {
	Set    model.Set
	Played bool
	Home   ledger.Counts
	Away   ledger.Counts
}

// SetRow is one line of the results box.
type SetRow struct {
	Index              int              `json:"index"`
	Played             bool             `json:"played"`
	Finished           bool             `json:"finished"`
	TeamATimeouts      *int             `json:"teamATimeouts"`
	TeamBTimeouts      *int             `json:"teamBTimeouts"`
	TeamASubstitutions *int             `json:"teamASubstitutions"`
	TeamBSubstitutions *int             `json:"teamBSubstitutions"`
	TeamAWon           int              `json:"teamAWon"`
	TeamBWon           int              `json:"teamBWon"`
	TeamAPoints        int              `json:"teamAPoints"`
	TeamBPoints        int              `json:"teamBPoints"`
	Start              *model.Timestamp `json:"start"`
	End                *model.Timestamp `json:"end"`
	// Duration is in whole minutes, nil when it cannot be computed.
	Duration *int `json:"duration"`
}

// Summary is the results box of a match.
type Summary struct {
	Sets            []SetRow         `json:"sets"`
	TeamASets       int              `json:"teamASets"`
	TeamBSets       int              `json:"teamBSets"`
	MatchStart      *model.Timestamp `json:"matchStart"`
	MatchEnd        *model.Timestamp `json:"matchEnd"`
	DurationMinutes int              `json:"durationMinutes"`
	Winner          string           `json:"winner"`
	Result          string           `json:"result"`
	IsMatchFinished bool             `json:"isMatchFinished"`
}

// Aggregate builds the summary of a match from its sets in index order.
func Aggregate(m model.Match, sets []SetInput) Summary {
	a, b := sides.TeamAKey(m), sides.TeamBKey(m)
	out := Summary{Sets: make([]SetRow, 0, len(sets))}

	var prevEnd model.Timestamp
	for _, in := range sets {
		s := in.Set
		row := SetRow{
			Index:       s.Index,
			Played:      in.Played,
			Finished:    s.Finished,
			TeamAPoints: s.Points().Of(a),
			TeamBPoints: s.Points().Of(b),
		}
		countsA, countsB := in.Home, in.Away
		if a == model.SideAway {
			countsA, countsB = in.Away, in.Home
		}
		row.TeamATimeouts, row.TeamASubstitutions = countsA.Timeouts, countsA.Substitutions
		row.TeamBTimeouts, row.TeamBSubstitutions = countsB.Timeouts, countsB.Substitutions

		if s.Finished {
			switch {
			case row.TeamAPoints > row.TeamBPoints:
				row.TeamAWon = 1
			case row.TeamBPoints > row.TeamAPoints:
				row.TeamBWon = 1
			}
		}
		out.TeamASets += row.TeamAWon
		out.TeamBSets += row.TeamBWon

		start := startOf(m, s, prevEnd)
		if in.Played {
			row.Start = start.Ptr()
			row.End = s.EndTime.Ptr()
			if d, ok := minutesBetween(start, s.EndTime); ok {
				row.Duration = &d
				out.DurationMinutes += d
			}
			if out.MatchStart == nil {
				out.MatchStart = start.Ptr()
			}
			if !s.EndTime.IsZero() {
				out.MatchEnd = s.EndTime.Ptr()
			}
		}
		prevEnd = s.EndTime
		out.Sets = append(out.Sets, row)
	}

	out.IsMatchFinished = IsMatchFinished(out.TeamASets, out.TeamBSets)
	if out.IsMatchFinished {
		winner, won, lost := model.LabelA, out.TeamASets, out.TeamBSets
		if out.TeamBSets > out.TeamASets {
			winner, won, lost = model.LabelB, out.TeamBSets, out.TeamASets
		}
		out.Winner = m.ShortName(sides.SideOf(m, winner))
		if out.Winner == "" {
			out.Winner = string(winner)
		}
		out.Result = fmt.Sprintf("%d:%d", won, lost)
	}
	return out
}

// startOf resolves the start boundary of a set: its recorded start, else
// the scheduled time for set 1, else the previous end plus the break.
func startOf(m model.Match, s model.Set, prevEnd model.Timestamp) model.Timestamp {
	switch {
	case !s.StartTime.IsZero():
		return s.StartTime
	case s.Index <= model.MinSet:
		return m.ScheduledAt
	case !prevEnd.IsZero():
		return model.At(prevEnd.Add(BreakBetweenSets))
	}
	return model.Timestamp{}
}

func minutesBetween(start, end model.Timestamp) (int, bool) {
	if start.IsZero() || end.IsZero() || end.Before(start.Time) {
		return 0, false
	}
	return int(end.Sub(start.Time) / time.Minute), true
}
