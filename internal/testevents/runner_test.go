package testevents

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/openvolley/scoresheet/internal/adapters/http/api"
	service "github.com/openvolley/scoresheet/internal/app"
	"github.com/openvolley/scoresheet/internal/cli"
	"github.com/openvolley/scoresheet/pkg/logger"
)

func init() {
	if err := logger.Init(logger.WithWriter(io.Discard)); err != nil {
		panic(err)
	}
}

func TestRun(t *testing.T) {
	convey.Convey("Given a running scoresheet service", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		svc := service.New(service.WithWorkerCount(4))
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()

		mux := http.NewServeMux()
		api.NewServer(svc, svc).Register(mux)
		srv := httptest.NewServer(mux)
		defer srv.Close()

		dir := t.TempDir()
		config := &Config{
			BaseURL:     srv.URL,
			Matches:     3,
			Seed:        11,
			Workers:     4,
			BatchSize:   16,
			Timeout:     5 * time.Second,
			WaitTimeout: 10 * time.Second,
			OutputDir:   dir,
		}

		convey.Convey("When the simulator runs against it", func() {
			stats, err := Run(ctx, config)

			convey.Convey("Then every match is stored and verified", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(stats.MatchesVerified, convey.ShouldEqual, 3)
				convey.So(stats.MatchesFailed, convey.ShouldEqual, 0)
				convey.So(stats.EventsFailed, convey.ShouldEqual, 0)
				convey.So(stats.EventsAccepted, convey.ShouldEqual, stats.EventsGenerated)
			})

			convey.Convey("Then the saved match files replay deterministically", func() {
				convey.So(err, convey.ShouldBeNil)
				mf, err := cli.LoadMatchFile(filepath.Join(dir, MatchID(11, 0)+".yaml"))
				convey.So(err, convey.ShouldBeNil)
				res, err := cli.Replay(mf, 2, 5)
				convey.So(err, convey.ShouldBeNil)
				convey.So(res.Deterministic, convey.ShouldBeTrue)
			})

			convey.Convey("When the same run is repeated", func() {
				again, err := Run(ctx, config)

				convey.Convey("Then the events come back as duplicates", func() {
					convey.So(err, convey.ShouldBeNil)
					convey.So(again.EventsAccepted, convey.ShouldEqual, 0)
					convey.So(again.EventsDuplicate, convey.ShouldEqual, again.EventsGenerated)
				})
			})
		})
	})

	convey.Convey("Given no service at the configured address", t, func() {
		config := &Config{BaseURL: "http://127.0.0.1:1", Matches: 1, Workers: 1, Timeout: time.Second}

		convey.Convey("Then the health check fails", func() {
			_, err := Run(context.Background(), config)
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}
