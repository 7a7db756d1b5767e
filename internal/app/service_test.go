package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/openvolley/scoresheet/internal/adapters/repository"
	service "github.com/openvolley/scoresheet/internal/app"
	"github.com/openvolley/scoresheet/internal/domain/model"
	"github.com/openvolley/scoresheet/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestService_Start(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New(service.WithWorkerCount(2), service.WithQueueSize(8))
		defer svc.Stop()

		Convey("When starting the service", func() {
			err := svc.Start(context.Background())

			Convey("Then it reports itself as started", func() {
				So(err, ShouldBeNil)
				stats := svc.GetStats()
				So(stats["started"], ShouldBeTrue)
				So(stats["store"], ShouldEqual, service.DriverMemory)
				So(stats["queueLength"], ShouldEqual, 0)
			})

			Convey("And starting twice is harmless", func() {
				So(svc.Start(context.Background()), ShouldBeNil)
			})
		})
	})

	Convey("Given injected stores", t, func() {
		sqlite, err := repository.OpenSQLite(filepath.Join(t.TempDir(), "injected.db"))
		So(err, ShouldBeNil)
		defer func() { _ = sqlite.Close() }()

		Convey("Then stats report the driver of each store", func() {
			cases := []struct {
				store repository.Store
				want  string
			}{
				{sqlite, service.DriverSQLite},
				{repository.NewMemoryStore(), service.DriverMemory},
				{&blockingStore{MemoryStore: repository.NewMemoryStore()}, service.DriverCustom},
			}
			for _, c := range cases {
				svc := service.New(service.WithStore(c.store), service.WithWorkerCount(1))
				So(svc.Start(context.Background()), ShouldBeNil)
				So(svc.GetStats()["store"], ShouldEqual, c.want)
				svc.Stop()
			}
		})
	})

	Convey("Given an unknown store driver", t, func() {
		svc := service.New(service.WithStoreDriver("mongo", ""))

		Convey("Then start fails", func() {
			err := svc.Start(context.Background())
			So(errors.Is(err, service.ErrUnknownDriver), ShouldBeTrue)
		})
	})
}

// submit mirrors the HTTP intake: dedupe, enqueue, release on backpressure.
func submit(ctx context.Context, svc *service.Service, e model.Event) (accepted, duplicate bool) {
	if svc.SeenAndRecord(ctx, e.MatchID, e.ID) {
		return false, true
	}
	if !svc.Enqueue(ctx, e) {
		svc.Unrecord(ctx, e.MatchID, e.ID)
		return false, false
	}
	return true, false
}

func TestService_Dedupe(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := service.New(service.WithWorkerCount(1))
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()
		ctx := context.Background()

		Convey("When the same id is seen twice for one match", func() {
			first := svc.SeenAndRecord(ctx, "m1", "e1")
			second := svc.SeenAndRecord(ctx, "m1", "e1")

			Convey("Then only the second is a duplicate", func() {
				So(first, ShouldBeFalse)
				So(second, ShouldBeTrue)
				So(svc.Size(), ShouldEqual, 1)
			})
		})

		Convey("When the same id is used in another match", func() {
			svc.SeenAndRecord(ctx, "m1", "e1")

			Convey("Then it is a different event", func() {
				So(svc.SeenAndRecord(ctx, "m2", "e1"), ShouldBeFalse)
			})
		})

		Convey("When an id is released", func() {
			svc.SeenAndRecord(ctx, "m1", "e1")
			svc.Unrecord(ctx, "m1", "e1")

			Convey("Then it can be recorded again", func() {
				So(svc.SeenAndRecord(ctx, "m1", "e1"), ShouldBeFalse)
			})
		})
	})
}

func TestService_Backpressure(t *testing.T) {
	Convey("Given a started service whose store blocks", t, func() {
		store := &blockingStore{MemoryStore: repository.NewMemoryStore(), release: make(chan struct{})}
		svc := service.New(service.WithStore(store), service.WithWorkerCount(1), service.WithQueueSize(2))
		So(svc.Start(context.Background()), ShouldBeNil)
		defer func() {
			close(store.release)
			svc.Stop()
		}()

		ctx := context.Background()
		var rejected int
		for i := range 10 {
			accepted, _ := submit(ctx, svc, model.Event{ID: string(rune('a' + i)), MatchID: "m1", Type: model.TypePoint})
			if !accepted {
				rejected++
			}
		}

		Convey("Then events beyond the queue capacity are rejected", func() {
			So(rejected, ShouldBeGreaterThan, 0)
		})

		Convey("Then a rejected id can be resubmitted later", func() {
			accepted, dup := submit(ctx, svc, model.Event{ID: "j", MatchID: "m1", Type: model.TypePoint})
			So(dup, ShouldBeFalse)
			So(accepted, ShouldBeFalse)
		})
	})
}

// blockingStore holds every append until release is closed.
type blockingStore struct {
	*repository.MemoryStore
	release chan struct{}
}

func (b *blockingStore) Append(ctx context.Context, e model.Event) (bool, error) {
	select {
	case <-b.release:
	case <-time.After(5 * time.Second):
	}
	return b.MemoryStore.Append(ctx, e)
}
