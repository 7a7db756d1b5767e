package grid_test

import (
	"testing"

	"github.com/openvolley/scoresheet/internal/domain/grid"
	"github.com/openvolley/scoresheet/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func pt(id string, team model.Side) model.Event {
	return model.Event{ID: id, Type: model.TypePoint, Payload: model.Payload{"team": string(team)}}
}

func cell(p grid.Panel, n int) grid.Cell { return p.Cells[n-1] }

func TestRowsPerColumn(t *testing.T) {
	Convey("Given set scores of increasing size", t, func() {
		So(grid.RowsPerColumn(0), ShouldEqual, 8)
		So(grid.RowsPerColumn(32), ShouldEqual, 8)
		So(grid.RowsPerColumn(33), ShouldEqual, 12)
		So(grid.RowsPerColumn(49), ShouldEqual, 16)
		So(grid.RowsPerColumn(65), ShouldEqual, 20)
		So(grid.RowsPerColumn(81), ShouldEqual, 24)
	})

	Convey("Given a team reaching 33 points against 10", t, func() {
		a := grid.Marks{MarkedPoints: seq(33)}
		b := grid.Marks{MarkedPoints: seq(10)}
		shared := max(a.Last(), b.Last())

		Convey("Then both grids use 12 rows", func() {
			So(grid.Standard(a, shared, false).Rows, ShouldEqual, 12)
			So(grid.Standard(b, shared, false).Rows, ShouldEqual, 12)
			So(grid.Standard(b, shared, false).Cells, ShouldHaveLength, 48)
		})
	})
}

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

func TestTeamMarks(t *testing.T) {
	Convey("Given points with a penalty against away in between", t, func() {
		events := []model.Event{
			pt("1", model.SideHome),
			{ID: "2", Type: model.TypeSanction, Payload: model.Payload{"team": "away", "type": "penalty"}},
			pt("3", model.SideHome),
			pt("4", model.SideHome),
			{ID: "5", Type: model.TypeSanction, Payload: model.Payload{"team": "home", "type": "delay_penalty"}},
			pt("6", model.SideAway),
			{ID: "7", Type: model.TypePoint, Payload: model.Payload{"team": "away", "reason": "sanction"}},
			{ID: "8", Type: model.TypeSanction, Payload: model.Payload{"team": "home", "type": "warning"}},
			pt("9", model.SideAway),
		}

		Convey("Then only the awarded points are circled", func() {
			home := grid.TeamMarks(events, model.SideHome)
			away := grid.TeamMarks(events, model.SideAway)
			So(home.MarkedPoints, ShouldResemble, []int{1, 2, 3})
			So(home.CircledPoints, ShouldResemble, []int{2})
			So(away.MarkedPoints, ShouldResemble, []int{1, 2, 3})
			So(away.CircledPoints, ShouldResemble, []int{1, 2})
		})

		Convey("Then circled points are drawn without a slash", func() {
			p := grid.Standard(grid.TeamMarks(events, model.SideHome), 3, true)
			So(cell(p, 1), ShouldResemble, grid.Cell{Number: 1, Slashed: true})
			So(cell(p, 2), ShouldResemble, grid.Cell{Number: 2, Circled: true})
			So(cell(p, 4), ShouldResemble, grid.Cell{Number: 4, Cancelled: true})
		})
	})

	Convey("Given a penalty whose next point goes to the penalized team", t, func() {
		events := []model.Event{
			{ID: "1", Type: model.TypeSanction, Payload: model.Payload{"team": "away", "type": "penalty"}},
			pt("2", model.SideAway),
			pt("3", model.SideHome),
		}

		Convey("Then nothing is circled", func() {
			So(grid.TeamMarks(events, model.SideHome).CircledPoints, ShouldBeEmpty)
		})
	})

	Convey("Given sanction kinds spelled in mixed case with padding", t, func() {
		events := []model.Event{
			{ID: "1", Type: model.TypeSanction, Payload: model.Payload{"team": "away", "type": "Penalty", "playerNr": 4}},
			pt("2", model.SideHome),
			{ID: "3", Type: model.TypeSanction, Payload: model.Payload{"team": "home", "type": " DELAY_PENALTY "}},
			pt("4", model.SideAway),
		}

		Convey("Then the awarded points are circled as for lowercase kinds", func() {
			So(grid.TeamMarks(events, model.SideHome).CircledPoints, ShouldResemble, []int{1})
			So(grid.TeamMarks(events, model.SideAway).CircledPoints, ShouldResemble, []int{1})
		})
	})
}

func TestSetFivePanels(t *testing.T) {
	Convey("Given team A at 10 points after changing courts at 8", t, func() {
		a := grid.Marks{MarkedPoints: seq(10), CircledPoints: []int{9}}
		b := grid.Marks{MarkedPoints: seq(6)}
		panels := grid.SetFivePanels(a, b, 10, 8, true, false)

		Convey("Then the pre-change panel is a single column of 8", func() {
			So(panels.BeforeChange.Rows, ShouldEqual, 8)
			So(panels.BeforeChange.Columns, ShouldEqual, 1)
			So(cell(panels.BeforeChange, 8).Slashed, ShouldBeTrue)
		})

		Convey("Then the continuation panel repeats 1..8 plain and marks the rest", func() {
			p := panels.AfterChange
			So(p.Columns, ShouldEqual, 4)
			for n := 1; n <= 8; n++ {
				So(cell(p, n), ShouldResemble, grid.Cell{Number: n, Plain: true})
			}
			So(cell(p, 9).Circled, ShouldBeTrue)
			So(cell(p, 10).Slashed, ShouldBeTrue)
			So(cell(p, 11), ShouldResemble, grid.Cell{Number: 11})
		})

		Convey("Then team B uses the dynamic grid", func() {
			So(panels.TeamB.Rows, ShouldEqual, 8)
			So(cell(panels.TeamB, 6).Slashed, ShouldBeTrue)
		})
	})

	Convey("Given set 5 before the court change", t, func() {
		a := grid.Marks{MarkedPoints: seq(5)}
		panels := grid.SetFivePanels(a, grid.Marks{}, 5, 0, false, false)

		Convey("Then team A's points stay in the pre-change panel", func() {
			So(cell(panels.BeforeChange, 5).Slashed, ShouldBeTrue)
			So(cell(panels.AfterChange, 1), ShouldResemble, grid.Cell{Number: 1})
		})
	})
}
