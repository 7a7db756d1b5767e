package model_test

import (
	"encoding/json"
	"testing"
	"time"

	model "github.com/openvolley/scoresheet/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

func TestEvent(t *testing.T) {
	convey.Convey("Given a raw event document", t, func() {
		raw := `{"id":"e1","matchId":"m1","setIndex":2,"type":"substitution","ts":"2025-03-01T18:04:05Z","seq":7,
			"payload":{"team":"Away","playerOut":"7","playerIn":12.0,"note":{"x":1},"extra":true}}`

		convey.Convey("When decoding it from JSON", func() {
			var e model.Event
			err := json.Unmarshal([]byte(raw), &e)

			convey.Convey("Then the typed fields and lenient accessors resolve", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(e.Set(), convey.ShouldEqual, 2)
				convey.So(e.Seq, convey.ShouldEqual, 7)
				convey.So(e.Team(), convey.ShouldEqual, model.SideAway)
				convey.So(e.Payload.PlayerNumber("playerOut"), convey.ShouldEqual, "7")
				convey.So(e.Payload.PlayerNumber("playerIn"), convey.ShouldEqual, "12")
				convey.So(e.Payload.Map("note"), convey.ShouldNotBeNil)
				convey.So(e.Payload.Bool("extra"), convey.ShouldBeTrue)
				convey.So(e.TS.Equal(time.Date(2025, 3, 1, 18, 4, 5, 0, time.UTC)), convey.ShouldBeTrue)
			})

			convey.Convey("Then unknown payload fields survive a round trip", func() {
				out, err := json.Marshal(e)
				convey.So(err, convey.ShouldBeNil)
				convey.So(string(out), convey.ShouldContainSubstring, `"extra":true`)
				convey.So(string(out), convey.ShouldContainSubstring, `"note":{"x":1}`)
			})
		})

		convey.Convey("When the set index is missing or out of range", func() {
			convey.So(model.Event{}.Set(), convey.ShouldEqual, 1)
			convey.So(model.Event{SetIndex: 9}.Set(), convey.ShouldEqual, 1)
			convey.So(model.Event{SetIndex: 5}.Set(), convey.ShouldEqual, 5)
		})
	})

	convey.Convey("Given malformed payload values", t, func() {
		p := model.Payload{"playerNumber": "seven", "neg": -3, "frac": 4.5, "team": "visitors"}

		convey.Convey("Then accessors return empty values instead of failing", func() {
			convey.So(p.PlayerNumber("playerNumber"), convey.ShouldEqual, "")
			convey.So(p.PlayerNumber("neg"), convey.ShouldEqual, "")
			convey.So(p.PlayerNumber("frac"), convey.ShouldEqual, "")
			convey.So(p.PlayerNumber("missing"), convey.ShouldEqual, "")
			convey.So(p.Side("team"), convey.ShouldEqual, model.Side(""))
			convey.So(p.Map("team"), convey.ShouldBeNil)
		})

		convey.Convey("Then a nil payload is safe to read", func() {
			var empty model.Payload
			convey.So(empty.String("x"), convey.ShouldEqual, "")
			convey.So(empty.Bool("x"), convey.ShouldBeFalse)
		})
	})
}

func TestTimestamp(t *testing.T) {
	convey.Convey("Given timestamps in different encodings", t, func() {
		want := time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC)

		convey.Convey("When parsing ISO-8601 and epoch milliseconds", func() {
			iso := model.ParseTimestamp("2025-03-01T19:00:00+01:00")
			ms := model.ParseTimestamp("1740852000000")

			convey.Convey("Then both resolve to the same instant", func() {
				convey.So(iso.Equal(want), convey.ShouldBeTrue)
				convey.So(ms.Equal(want), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When decoding a JSON number", func() {
			var ts model.Timestamp
			err := json.Unmarshal([]byte("1740852000000"), &ts)
			convey.So(err, convey.ShouldBeNil)
			convey.So(ts.Equal(want), convey.ShouldBeTrue)
		})

		convey.Convey("When decoding garbage", func() {
			var ts model.Timestamp
			err := json.Unmarshal([]byte(`"not a time"`), &ts)

			convey.Convey("Then it is treated as unknown", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(ts.IsZero(), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When encoding the zero value", func() {
			out, err := json.Marshal(model.Timestamp{})
			convey.So(err, convey.ShouldBeNil)
			convey.So(string(out), convey.ShouldEqual, "null")
		})
	})

	convey.Convey("Given a match file encoded as YAML and msgpack", t, func() {
		doc := `
id: m1
scheduledAt: "2025-03-01T18:00:00Z"
coinTossTeamA: away
homeShortName: HOM
`
		convey.Convey("When decoding YAML", func() {
			var m model.Match
			err := yaml.Unmarshal([]byte(doc), &m)

			convey.Convey("Then the timestamp and sides decode", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(m.CoinTossTeamA, convey.ShouldEqual, model.SideAway)
				convey.So(m.ScheduledAt.Equal(time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC)), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When an event goes through msgpack", func() {
			in := model.Event{
				ID:      "e1",
				Type:    model.TypePoint,
				Payload: model.Payload{"team": "home", "playerNumber": 9},
				TS:      model.At(time.Date(2025, 3, 1, 18, 1, 0, 0, time.UTC)),
			}
			data, err := msgpack.Marshal(in)
			convey.So(err, convey.ShouldBeNil)

			var out model.Event
			err = msgpack.Unmarshal(data, &out)

			convey.Convey("Then the payload stays readable", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out.Team(), convey.ShouldEqual, model.SideHome)
				convey.So(out.Payload.PlayerNumber("playerNumber"), convey.ShouldEqual, "9")
				convey.So(out.TS.Equal(in.TS.Time), convey.ShouldBeTrue)
			})
		})
	})
}

func TestSetMerge(t *testing.T) {
	convey.Convey("Given a finished set", t, func() {
		end := model.At(time.Date(2025, 3, 1, 18, 30, 0, 0, time.UTC))
		stored := model.Set{Index: 1, HomePoints: 25, AwayPoints: 20, Finished: true, EndTime: end}

		convey.Convey("When an update tries to clear the finished flag", func() {
			merged := stored.Merge(model.Set{Index: 1, HomePoints: 25, AwayPoints: 20})

			convey.Convey("Then the set stays finished with its end time", func() {
				convey.So(merged.Finished, convey.ShouldBeTrue)
				convey.So(merged.EndTime.Equal(end.Time), convey.ShouldBeTrue)
			})
		})
	})
}
