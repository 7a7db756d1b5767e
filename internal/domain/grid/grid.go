// Package grid maps the points of a team onto the printed point grid.
package grid

import (
	"slices"

	"github.com/openvolley/scoresheet/internal/domain/ledger"
	"github.com/openvolley/scoresheet/internal/domain/model"
)

// Columns is the number of columns of a dynamic point grid.
const Columns = 4

// rowSteps pairs a score threshold with the rows needed once it is passed.
var rowSteps = []struct{ above, rows int }{
	{80, 24},
	{64, 20},
	{48, 16},
	{32, 12},
}

// RowsPerColumn sizes a grid for the larger final score of a set.
func RowsPerColumn(maxScore int) int {
	for _, s := range rowSteps {
		if maxScore > s.above {
			return s.rows
		}
	}
	return 8
}

// Marks are the points a team reached in a set.
type Marks struct {
	MarkedPoints  []int `json:"markedPoints"`
	CircledPoints []int `json:"circledPoints"`
}

// Last returns the highest marked point, or 0.
func (m Marks) Last() int {
	if len(m.MarkedPoints) == 0 {
		return 0
	}
	return m.MarkedPoints[len(m.MarkedPoints)-1]
}

// TeamMarks lists the points side reached in the ordered set events. A
// point is circled when it was awarded through a sanction: it carries the
// reason "sanction", or it is the first point after a penalty or delay
// penalty against the opponent.
func TeamMarks(events []model.Event, side model.Side) Marks {
	out := Marks{MarkedPoints: []int{}, CircledPoints: []int{}}
	score := 0
	var pending model.Side
	for _, e := range events {
		switch e.Type {
		case model.TypeSanction:
			switch ledger.Kind(e.Payload) {
			case ledger.KindPenalty, ledger.KindDelayPenalty:
				pending = e.Team().Other()
			}
		case model.TypePoint:
			team := e.Team()
			awarded := pending != "" && pending == team
			pending = ""
			if team != side {
				continue
			}
			score++
			out.MarkedPoints = append(out.MarkedPoints, score)
			if awarded || e.Payload.String("reason") == "sanction" {
				out.CircledPoints = append(out.CircledPoints, score)
			}
		}
	}
	return out
}

// Cell is one numbered box of a panel.
type Cell struct {
	Number  int  `json:"number"`
	Slashed bool `json:"slashed,omitempty"`
	Circled bool `json:"circled,omitempty"`
	// Plain numbers were carried over from before the set-5 court change.
	Plain bool `json:"plain,omitempty"`
	// Cancelled numbers were never reached in a finished set.
	Cancelled bool `json:"cancelled,omitempty"`
}

// Panel is a block of numbered boxes filled column by column.
type Panel struct {
	Rows     int    `json:"rows"`
	Columns  int    `json:"columns"`
	MaxScore int    `json:"maxScore"`
	Cells    []Cell `json:"cells"`
}

// layout fills rows*columns cells. Numbers up to plainUpTo are plain;
// numbers above showUpTo (when positive) are left blank.
func layout(rows, columns, maxScore int, marks Marks, plainUpTo, showUpTo int, finished bool) Panel {
	p := Panel{Rows: rows, Columns: columns, MaxScore: maxScore, Cells: make([]Cell, 0, rows*columns)}
	last := marks.Last()
	for n := 1; n <= rows*columns; n++ {
		c := Cell{Number: n}
		switch {
		case n <= plainUpTo:
			c.Plain = true
		case showUpTo > 0 && n > showUpTo:
		case slices.Contains(marks.CircledPoints, n):
			c.Circled = true
		case slices.Contains(marks.MarkedPoints, n):
			c.Slashed = true
		case finished && n > last:
			c.Cancelled = true
		}
		p.Cells = append(p.Cells, c)
	}
	return p
}

// Standard lays out a team's grid for sets 1 to 4. maxScore is the larger
// final score of the two teams so both grids line up.
func Standard(marks Marks, maxScore int, finished bool) Panel {
	return layout(RowsPerColumn(maxScore), Columns, maxScore, marks, 0, 0, finished)
}

// SetFive holds the three panels of the deciding set. Team A owns the
// fixed pre-change panel and the continuation panel; team B owns the middle
// panel.
type SetFive struct {
	BeforeChange Panel `json:"panel1"`
	TeamB        Panel `json:"panel2"`
	AfterChange  Panel `json:"panel3"`
}

// SetFivePanels lays out set 5. Until the court change every point of
// team A goes to the pre-change panel. Once switched, pointsAtChange is team
// A's score at the change: the pre-change panel stops there and the
// continuation panel repeats those numbers plain, marking only what came
// after.
func SetFivePanels(a, b Marks, maxScore, pointsAtChange int, switched, finished bool) SetFive {
	rows := RowsPerColumn(maxScore)
	out := SetFive{TeamB: layout(rows, Columns, maxScore, b, 0, 0, finished)}
	if !switched {
		out.BeforeChange = layout(8, 1, maxScore, a, 0, 0, false)
		out.AfterChange = layout(rows, Columns, maxScore, Marks{}, 0, 0, false)
		return out
	}
	pointsAtChange = max(pointsAtChange, 0)
	before := a
	if pointsAtChange == 0 {
		before = Marks{}
	}
	out.BeforeChange = layout(8, 1, maxScore, before, 0, pointsAtChange, false)
	out.AfterChange = layout(rows, Columns, maxScore, a, pointsAtChange, 0, finished)
	return out
}
