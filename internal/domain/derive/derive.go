// Package derive runs the full scoresheet pipeline over a snapshot of the
// event log. Every function is pure: the same snapshot always yields the
// same view.
package derive

import (
	"github.com/openvolley/scoresheet/internal/domain/grid"
	"github.com/openvolley/scoresheet/internal/domain/ledger"
	"github.com/openvolley/scoresheet/internal/domain/lineup"
	"github.com/openvolley/scoresheet/internal/domain/model"
	"github.com/openvolley/scoresheet/internal/domain/ordering"
	"github.com/openvolley/scoresheet/internal/domain/rally"
	"github.com/openvolley/scoresheet/internal/domain/result"
	"github.com/openvolley/scoresheet/internal/domain/sides"
)

// Serve marks on the sheet.
const (
	Serving   = "S"
	Receiving = "R"
)

// TeamView is everything printed for one team in one set.
type TeamView struct {
	Side      model.Side  `json:"side"`
	Label     model.Label `json:"label"`
	Position  string      `json:"position"`
	ShortName string      `json:"shortName"`
	// Serves is S for the team serving first, R for the receiving team.
	Serves string `json:"serves"`

	Lineup        lineup.State      `json:"lineup"`
	Initial       lineup.State      `json:"initialLineup"`
	Replacements  map[string]string `json:"replacements"`
	Substitutions []lineup.Slot     `json:"substitutions"`

	Counts        ledger.Counts    `json:"counts"`
	TimeoutScores []string         `json:"timeoutScores"`
	Service       rally.TeamRounds `json:"service"`
	Points        int              `json:"points"`
	Marks         grid.Marks       `json:"marks"`
	Panel         *grid.Panel      `json:"panel,omitempty"`
	Improper      bool             `json:"improperRequest"`
}

// SetView is the derived state of one set.
type SetView struct {
	MatchID   string          `json:"matchId"`
	SetIndex  int             `json:"setIndex"`
	View      sides.View      `json:"view"`
	Placement sides.Placement `json:"placement"`
	Started   bool            `json:"started"`
	Finished  bool            `json:"finished"`

	Rally       rally.Status `json:"rally"`
	FirstServer model.Side   `json:"firstServer"`
	Server      model.Side   `json:"server"`
	ServerLabel model.Label  `json:"serverLabel"`

	A TeamView `json:"teamA"`
	B TeamView `json:"teamB"`

	Placements []rally.Placement `json:"pointPlacements"`
	Sanctions  ledger.Sanctions  `json:"sanctions"`
	SetFive    *grid.SetFive     `json:"setFive,omitempty"`
	// CourtSwitchDue is true in set 5 once a team reached 8 points and the
	// switch has not been recorded yet.
	CourtSwitchDue bool `json:"courtSwitchDue"`
}

// Team returns the view of label.
func (v SetView) Team(label model.Label) TeamView {
	if label == model.LabelB {
		return v.B
	}
	return v.A
}

// Derive computes the view of setIndex from the full match log.
func Derive(events []model.Event, m model.Match, sets []model.Set, setIndex int, view sides.View, opts ...Option) SetView {
	o := defaults()
	for _, opt := range opts {
		opt(&o)
	}
	if setIndex < model.MinSet || setIndex > model.MaxSet {
		setIndex = model.MinSet
	}

	bySet := ordering.BySet(events)
	setEvents := bySet[setIndex]
	record := setRecord(setEvents, sets, setIndex)
	first := rally.FirstServer(m, sets, setIndex)
	score := ordering.Score(setEvents)
	started := ledger.Started(setEvents, record)

	v := SetView{
		MatchID:     m.ID,
		SetIndex:    setIndex,
		View:        view,
		Placement:   sides.Place(m, setIndex, view),
		Started:     started,
		Finished:    record.Finished,
		Rally:       rally.State(setEvents),
		FirstServer: first,
		Server:      rally.Server(setEvents, first),
		Sanctions:   ledger.BuildSanctions(events, m, o.sanctionRows),
	}
	v.ServerLabel = sides.LabelOf(m, v.Server)

	service := rally.ServiceRounds(setEvents, first, record.Finished)
	v.Placements = service.Placements

	team := func(side model.Side) TeamView {
		label := sides.LabelOf(m, side)
		initial := lineup.Initial(setEvents, side)
		t := TeamView{
			Side:         side,
			Label:        label,
			Position:     v.Placement.PositionOf(label),
			ShortName:    m.ShortName(side),
			Serves:       Receiving,
			Lineup:       lineup.Current(setEvents, side),
			Initial:      initial,
			Replacements: lineup.ActiveReplacements(setEvents, side),
			Substitutions: lineup.SubstitutionSlots(setEvents, side, initial, func(i int) string {
				return ledger.Format(ledger.ScoreAt(setEvents, i), side)
			}),
			Counts:        ledger.CountsOf(setEvents, side, started),
			TimeoutScores: ledger.TimeoutScores(setEvents, side),
			Service:       service.Of(side),
			Points:        score.Of(side),
			Marks:         grid.TeamMarks(setEvents, side),
		}
		if side == first {
			t.Serves = Serving
		}
		if label == model.LabelA {
			t.Improper = v.Sanctions.Improper.A
		} else {
			t.Improper = v.Sanctions.Improper.B
		}
		return t
	}
	v.A = team(sides.TeamAKey(m))
	v.B = team(sides.TeamBKey(m))

	maxScore := max(v.A.Marks.Last(), v.B.Marks.Last())
	if setIndex == model.MaxSet {
		panels := grid.SetFivePanels(v.A.Marks, v.B.Marks, maxScore, pointsAtChange(m, setEvents), m.Set5CourtSwitched, record.Finished)
		v.SetFive = &panels
		v.CourtSwitchDue = !m.Set5CourtSwitched && sides.ShouldSwitchSet5(score)
	} else {
		a := grid.Standard(v.A.Marks, maxScore, record.Finished)
		b := grid.Standard(v.B.Marks, maxScore, record.Finished)
		v.A.Panel, v.B.Panel = &a, &b
	}
	return v
}

// pointsAtChange is team A's score at the set-5 court change: the recorded
// value, else the score when either team first reached 8.
func pointsAtChange(m model.Match, events []model.Event) int {
	if m.Set5PointsAtChange > 0 || !m.Set5CourtSwitched {
		return m.Set5PointsAtChange
	}
	a := sides.TeamAKey(m)
	var t model.Tally
	for _, e := range events {
		if e.Type != model.TypePoint {
			continue
		}
		t.Add(e.Team())
		if sides.ShouldSwitchSet5(t) {
			return t.Of(a)
		}
	}
	return t.Of(a)
}

// setRecord returns the stored record of setIndex, or one rebuilt from the
// set events when nothing was stored.
func setRecord(events []model.Event, sets []model.Set, setIndex int) model.Set {
	if s, ok := model.FindSet(sets, setIndex); ok {
		return s
	}
	score := ordering.Score(events)
	s := model.Set{Index: setIndex, HomePoints: score.Home, AwayPoints: score.Away}
	s.Finished = result.IsSetComplete(score.Home, score.Away, result.IsTiebreak(setIndex))
	for _, e := range events {
		if e.Type == model.TypeSetStart && s.StartTime.IsZero() {
			s.StartTime = e.TS
		}
		if s.Finished && e.Type == model.TypePoint {
			s.EndTime = e.TS
		}
	}
	return s
}

// MatchSummary is the end-of-match view.
type MatchSummary struct {
	MatchID    string           `json:"matchId"`
	TeamA      string           `json:"teamA"`
	TeamB      string           `json:"teamB"`
	TeamASide  model.Side       `json:"teamASide"`
	Result     result.Summary   `json:"summary"`
	Sanctions  ledger.Sanctions `json:"sanctions"`
	EventCount int              `json:"eventCount"`
}

// Summarize aggregates every set of the match.
func Summarize(events []model.Event, m model.Match, sets []model.Set, opts ...Option) MatchSummary {
	o := defaults()
	for _, opt := range opts {
		opt(&o)
	}
	bySet := ordering.BySet(events)
	inputs := make([]result.SetInput, 0, model.MaxSet)
	for i := model.MinSet; i <= model.MaxSet; i++ {
		setEvents := bySet[i]
		record := setRecord(setEvents, sets, i)
		started := ledger.Started(setEvents, record)
		inputs = append(inputs, result.SetInput{
			Set:    record,
			Played: started,
			Home:   ledger.CountsOf(setEvents, model.SideHome, started),
			Away:   ledger.CountsOf(setEvents, model.SideAway, started),
		})
	}
	a, b := sides.TeamAKey(m), sides.TeamBKey(m)
	return MatchSummary{
		MatchID:    m.ID,
		TeamA:      m.ShortName(a),
		TeamB:      m.ShortName(b),
		TeamASide:  a,
		Result:     result.Aggregate(m, inputs),
		Sanctions:  ledger.BuildSanctions(events, m, o.sanctionRows),
		EventCount: len(events),
	}
}
