package lineup_test

import (
	"fmt"
	"testing"

	"github.com/openvolley/scoresheet/internal/domain/lineup"
	"github.com/openvolley/scoresheet/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func lineupEvent(id string, team model.Side, numbers [6]any, extra model.Payload) model.Event {
	raw := map[string]any{}
	for i, p := range lineup.Positions {
		raw[p] = numbers[i]
	}
	payload := model.Payload{"team": string(team), "lineup": raw}
	for k, v := range extra {
		payload[k] = v
	}
	return model.Event{ID: id, Type: model.TypeLineup, Payload: payload}
}

func sub(id string, team model.Side, out, in any) model.Event {
	return model.Event{ID: id, Type: model.TypeSubstitution, Payload: model.Payload{"team": string(team), "playerOut": out, "playerIn": in}}
}

func TestCurrent(t *testing.T) {
	Convey("Given two lineup snapshots for home and one for away", t, func() {
		events := []model.Event{
			lineupEvent("1", model.SideHome, [6]any{1, 2, 3, 4, 5, 6}, model.Payload{"isInitial": true}),
			lineupEvent("2", model.SideAway, [6]any{11, 12, 13, 14, 15, 16}, nil),
			lineupEvent("3", model.SideHome, [6]any{2, 3, 4, 5, 6, "x"}, model.Payload{
				"liberoSubstitution": map[string]any{"position": "V", "liberoNumber": 9, "playerNumber": 6},
			}),
		}

		Convey("When reading the current home lineup", func() {
			state := lineup.Current(events, model.SideHome)

			Convey("Then the latest snapshot replaces the earlier one", func() {
				So(state.Known, ShouldBeTrue)
				So(state.Numbers(), ShouldResemble, []string{"2", "3", "4", "5", "6", ""})
			})

			Convey("Then the embedded libero descriptor is exposed", func() {
				So(state.Libero, ShouldNotBeNil)
				So(*state.Libero, ShouldResemble, lineup.LiberoSubstitution{Position: "V", LiberoNumber: "9", ReplacedPlayerNumber: "6"})
			})
		})

		Convey("When reading the initial home lineup", func() {
			So(lineup.Initial(events, model.SideHome).Numbers(), ShouldResemble, []string{"1", "2", "3", "4", "5", "6"})
		})

		Convey("When no lineup was recorded", func() {
			state := lineup.Current(nil, model.SideAway)
			So(state.Known, ShouldBeFalse)
			So(state.Numbers(), ShouldResemble, []string{"", "", "", "", "", ""})
		})
	})

	Convey("Given a libero entering after the latest snapshot", t, func() {
		events := []model.Event{
			lineupEvent("1", model.SideHome, [6]any{1, 2, 3, 4, 5, 6}, nil),
			{ID: "2", Type: model.TypeLiberoEntry, Payload: model.Payload{"team": "home", "position": "VI", "liberoIn": 10}},
		}

		Convey("Then the libero takes the slot and remembers who left", func() {
			state := lineup.Current(events, model.SideHome)
			So(state.Positions["VI"], ShouldEqual, "10")
			So(state.Libero.ReplacedPlayerNumber, ShouldEqual, "6")
		})

		Convey("Then a libero exit restores the replaced player", func() {
			events = append(events, model.Event{ID: "3", Type: model.TypeLiberoExit, Payload: model.Payload{"team": "home", "position": "VI"}})
			state := lineup.Current(events, model.SideHome)
			So(state.Positions["VI"], ShouldEqual, "6")
			So(state.Libero, ShouldBeNil)
		})
	})
}

func TestRotate(t *testing.T) {
	Convey("Given a lineup with a libero in V", t, func() {
		state := lineup.Current([]model.Event{
			lineupEvent("1", model.SideHome, [6]any{1, 2, 3, 4, 9, 6}, model.Payload{
				"liberoSubstitution": map[string]any{"position": "V", "liberoNumber": 9, "replacedPlayerNumber": 5},
			}),
		}, model.SideHome)

		Convey("When rotating", func() {
			rotated := lineup.Rotate(state)

			Convey("Then II moves to I and I moves to VI", func() {
				So(rotated.Numbers(), ShouldResemble, []string{"2", "3", "4", "9", "6", "1"})
			})

			Convey("Then the libero follows into the front row", func() {
				So(rotated.Libero.Position, ShouldEqual, "IV")
				So(rotated.LiberoInFrontRow(), ShouldBeTrue)
				So(state.LiberoInFrontRow(), ShouldBeFalse)
			})
		})
	})
}

func TestActiveReplacements(t *testing.T) {
	Convey("Given player 12 replacing 7", t, func() {
		events := []model.Event{sub("1", model.SideHome, 7, 12)}

		Convey("Then 12 is shown as replacing 7", func() {
			So(lineup.ActiveReplacements(events, model.SideHome), ShouldResemble, map[string]string{"12": "7"})
		})

		Convey("When 7 comes back for 12", func() {
			events = append(events, sub("2", model.SideHome, "12", "7"))

			Convey("Then no entry is keyed by 12 and 7 gets no badge", func() {
				active := lineup.ActiveReplacements(events, model.SideHome)
				So(active, ShouldBeEmpty)
			})
		})

		Convey("When a third player replaces 12", func() {
			events = append(events, sub("2", model.SideHome, 12, 15))

			Convey("Then 15 is shown as replacing 12", func() {
				So(lineup.ActiveReplacements(events, model.SideHome), ShouldResemble, map[string]string{"15": "12"})
			})
		})
	})

	Convey("Given arbitrary substitution chains", t, func() {
		Convey("Then a return never leaves an entry keyed by the departing player", func() {
			for n := 1; n <= 6; n++ {
				var events []model.Event
				for i := 0; i < n; i++ {
					events = append(events, sub(fmt.Sprint("s", i), model.SideAway, 20+i, 30+i))
				}
				events = append(events, sub("back", model.SideAway, 30+n-1, 20+n-1))
				active := lineup.ActiveReplacements(events, model.SideAway)
				So(active, ShouldNotContainKey, fmt.Sprint(30+n-1))
				So(len(active), ShouldEqual, n-1)
			}
		})
	})

	Convey("Given malformed player numbers", t, func() {
		events := []model.Event{sub("1", model.SideHome, "seven", 12)}

		Convey("Then the substitution is ignored", func() {
			So(lineup.ActiveReplacements(events, model.SideHome), ShouldBeEmpty)
		})
	})
}

func TestSubstitutionSlots(t *testing.T) {
	Convey("Given a substitution and its return", t, func() {
		events := []model.Event{
			lineupEvent("0", model.SideHome, [6]any{1, 2, 3, 4, 5, 6}, model.Payload{"isInitial": true}),
			sub("1", model.SideHome, 3, 13),
			sub("2", model.SideHome, 13, 3),
		}
		initial := lineup.Initial(events, model.SideHome)
		scores := map[int]string{1: "4:2", 2: "10:8"}

		Convey("When building the slots", func() {
			slots := lineup.SubstitutionSlots(events, model.SideHome, initial, func(i int) string { return scores[i] })

			Convey("Then both entries sit under position III with their scores", func() {
				So(slots[2].Position, ShouldEqual, "III")
				So(slots[2].Entries, ShouldResemble, []lineup.SlotEntry{
					{PlayerIn: "13", PlayerOut: "3", Score: "4:2", Circled: true},
					{PlayerIn: "3", PlayerOut: "13", Score: "10:8"},
				})
				So(slots[0].Entries, ShouldBeEmpty)
			})
		})
	})
}
