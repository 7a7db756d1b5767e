package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLogger(t *testing.T) {
	Convey("Given a logger writing JSON to a buffer", t, func() {
		var buf bytes.Buffer
		So(Init(WithWriter(&buf), WithJSON()), ShouldBeNil)
		ctx := context.Background()

		Convey("When a named logger writes a record", func() {
			Named("store").Info(ctx, "appended", String("match", "m1"), Int("count", 2), Error(errors.New("boom")))

			Convey("Then fields, component and source are present", func() {
				var rec map[string]any
				So(json.Unmarshal(buf.Bytes(), &rec), ShouldBeNil)
				So(rec["msg"], ShouldEqual, "appended")
				So(rec["component"], ShouldEqual, "store")
				So(rec["match"], ShouldEqual, "m1")
				So(rec["count"], ShouldEqual, 2)
				So(rec["error"], ShouldEqual, "boom")
				So(rec["source"], ShouldContainSubstring, "logger_test.go")
			})
		})

		Convey("When the level is raised to warn", func() {
			So(SetLevelString("WARN"), ShouldBeNil)
			Get().Info(ctx, "hidden")
			Get().Debug(ctx, "hidden")
			Get().Warn(ctx, "shown")

			Convey("Then lower records are dropped", func() {
				So(buf.String(), ShouldNotContainSubstring, "hidden")
				So(buf.String(), ShouldContainSubstring, "shown")
			})
		})

		Convey("When an unknown level is given", func() {
			So(SetLevelString("verbose"), ShouldNotBeNil)
		})

		Convey("Then Sync never fails", func() {
			So(Sync(), ShouldBeNil)
		})
	})
}
