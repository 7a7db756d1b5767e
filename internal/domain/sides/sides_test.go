package sides_test

import (
	"testing"

	"github.com/openvolley/scoresheet/internal/domain/model"
	"github.com/openvolley/scoresheet/internal/domain/sides"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLabels(t *testing.T) {
	Convey("Given a match without a coin toss record", t, func() {
		m := model.Match{}

		Convey("Then home silently resolves to A", func() {
			So(sides.TeamAKey(m), ShouldEqual, model.SideHome)
			So(sides.TeamBKey(m), ShouldEqual, model.SideAway)
			So(sides.LabelOf(m, model.SideHome), ShouldEqual, model.LabelA)
		})
	})

	Convey("Given away won the A label", t, func() {
		m := model.Match{CoinTossTeamA: model.SideAway}

		Convey("Then labels map both ways", func() {
			So(sides.LabelOf(m, model.SideHome), ShouldEqual, model.LabelB)
			So(sides.LabelOf(m, model.SideAway), ShouldEqual, model.LabelA)
			So(sides.SideOf(m, model.LabelA), ShouldEqual, model.SideAway)
			So(sides.SideOf(m, model.LabelB), ShouldEqual, model.SideHome)
		})
	})
}

func TestPlace(t *testing.T) {
	Convey("Given a match where away is team A", t, func() {
		m := model.Match{CoinTossTeamA: model.SideAway}

		Convey("When placing set 1", func() {
			p := sides.Place(m, 1, sides.ViewSecondReferee)
			So(p.Left, ShouldEqual, model.LabelA)
			So(p.LeftSide, ShouldEqual, model.SideAway)
		})

		Convey("When placing sets 2 to 4", func() {
			for set := 2; set <= 4; set++ {
				So(sides.Place(m, set, sides.ViewSecondReferee).Left, ShouldEqual, model.LabelB)
			}
		})

		Convey("When placing set 5 before the court switch", func() {
			p := sides.Place(m, 5, sides.ViewSecondReferee)

			Convey("Then A sits on the right", func() {
				So(p.Right, ShouldEqual, model.LabelA)
				So(p.PositionOf(model.LabelA), ShouldEqual, "right")
			})
		})

		Convey("When placing set 5 after the court switch", func() {
			m.Set5CourtSwitched = true
			p := sides.Place(m, 5, sides.ViewSecondReferee)

			Convey("Then A moves to the left", func() {
				So(p.Left, ShouldEqual, model.LabelA)
			})
		})

		Convey("When viewing from the first referee position", func() {
			second := sides.Place(m, 3, sides.ViewSecondReferee)
			first := sides.Place(m, 3, sides.ViewFirstReferee)

			Convey("Then the placement is mirrored", func() {
				So(first.Left, ShouldEqual, second.Right)
				So(first.RightSide, ShouldEqual, second.LeftSide)
			})
		})
	})

	Convey("Given set 5 scores", t, func() {
		So(sides.ShouldSwitchSet5(model.Tally{Home: 7, Away: 5}), ShouldBeFalse)
		So(sides.ShouldSwitchSet5(model.Tally{Home: 3, Away: 8}), ShouldBeTrue)
	})

	Convey("Given an unknown view name", t, func() {
		So(sides.ParseView("scorer"), ShouldEqual, sides.ViewSecondReferee)
		So(sides.ParseView("first_referee"), ShouldEqual, sides.ViewFirstReferee)
	})
}
