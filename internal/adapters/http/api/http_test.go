package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/openvolley/scoresheet/internal/adapters/http/api"
	"github.com/openvolley/scoresheet/internal/adapters/repository"
	"github.com/openvolley/scoresheet/internal/domain/derive"
	"github.com/openvolley/scoresheet/internal/domain/model"
	"github.com/openvolley/scoresheet/internal/domain/sides"
)

type mockDeps struct {
	mu       sync.Mutex
	seen     map[string]bool
	queued   []model.Event
	capacity int
	store    *repository.MemoryStore
	lastView sides.View
}

func newMockDeps(capacity int) *mockDeps {
	return &mockDeps{seen: map[string]bool{}, capacity: capacity, store: repository.NewMemoryStore()}
}

func (m *mockDeps) SeenAndRecord(_ context.Context, matchID, eventID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := matchID + "/" + eventID
	if m.seen[key] {
		return true
	}
	m.seen[key] = true
	return false
}

func (m *mockDeps) Unrecord(_ context.Context, matchID, eventID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.seen, matchID+"/"+eventID)
}

func (m *mockDeps) Enqueue(_ context.Context, e model.Event) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.queued) >= m.capacity {
		return false
	}
	m.queued = append(m.queued, e)
	return true
}

func (m *mockDeps) PutMatch(ctx context.Context, match model.Match) error {
	return m.store.PutMatch(ctx, match)
}

func (m *mockDeps) Match(ctx context.Context, id string) (model.Match, error) {
	return m.store.Match(ctx, id)
}

func (m *mockDeps) PutSet(ctx context.Context, id string, s model.Set) (model.Set, error) {
	return m.store.PutSet(ctx, id, s)
}

func (m *mockDeps) Matches(ctx context.Context) ([]string, error) { return m.store.Matches(ctx) }

func (m *mockDeps) Events(ctx context.Context, id string) ([]model.Event, error) {
	return m.store.Events(ctx, id)
}

func (m *mockDeps) SetView(ctx context.Context, id string, n int, view sides.View) (derive.SetView, error) {
	match, err := m.store.Match(ctx, id)
	if err != nil {
		return derive.SetView{}, err
	}
	m.lastView = view
	if view == "" {
		view = sides.ViewSecondReferee
	}
	return derive.Derive(nil, match, nil, n, view), nil
}

func (m *mockDeps) Summary(ctx context.Context, id string) (derive.MatchSummary, error) {
	match, err := m.store.Match(ctx, id)
	if err != nil {
		return derive.MatchSummary{}, err
	}
	return derive.Summarize(nil, match, nil), nil
}

func (m *mockDeps) GetStats() map[string]any { return map[string]any{"started": true} }

func serve(mux *http.ServeMux, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decode(w *httptest.ResponseRecorder) map[string]any {
	out := map[string]any{}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return out
}

func newMux(deps *mockDeps) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, deps).Register(mux)
	return mux
}

func TestServer_Register(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		mux := newMux(newMockDeps(10))

		Convey("Then the health endpoint serves metrics", func() {
			w := serve(mux, http.MethodGet, "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("Then the stats endpoint serves JSON", func() {
			w := serve(mux, http.MethodGet, "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decode(w)["started"], ShouldEqual, true)
		})

		Convey("Then unknown paths are not found", func() {
			So(serve(mux, http.MethodGet, "/rankings", "").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("Then a wrong method is refused", func() {
			So(serve(mux, http.MethodGet, "/events", "").Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})
}

func TestEventsHandler(t *testing.T) {
	Convey("Given the events endpoint", t, func() {
		deps := newMockDeps(3)
		mux := newMux(deps)

		Convey("When a valid event is posted", func() {
			w := serve(mux, http.MethodPost, "/events",
				`{"id":"e1","matchId":"m1","setIndex":1,"type":"point","ts":1740852000000,"payload":{"team":"home","x":{"y":1}}}`)

			Convey("Then it is accepted and enqueued untouched", func() {
				So(w.Code, ShouldEqual, http.StatusAccepted)
				So(decode(w)["status"], ShouldEqual, "accepted")
				So(deps.queued, ShouldHaveLength, 1)
				So(deps.queued[0].Team(), ShouldEqual, model.SideHome)
				So(deps.queued[0].Payload.Map("x"), ShouldNotBeNil)
			})

			Convey("And posting it again is a duplicate", func() {
				w := serve(mux, http.MethodPost, "/events", `{"id":"e1","matchId":"m1","type":"point"}`)
				So(w.Code, ShouldEqual, http.StatusOK)
				So(decode(w)["duplicate"], ShouldEqual, true)
				So(deps.queued, ShouldHaveLength, 1)
			})
		})

		Convey("When an event has no id", func() {
			w := serve(mux, http.MethodPost, "/events", `{"matchId":"m1","type":"timeout","payload":{"team":"away"}}`)

			Convey("Then one is generated", func() {
				So(w.Code, ShouldEqual, http.StatusAccepted)
				id, _ := decode(w)["id"].(string)
				So(id, ShouldHaveLength, 36)
				So(deps.queued[0].ID, ShouldEqual, id)
			})
		})

		Convey("When the envelope is malformed", func() {
			So(serve(mux, http.MethodPost, "/events", `{`).Code, ShouldEqual, http.StatusBadRequest)
			So(serve(mux, http.MethodPost, "/events", `{}`).Code, ShouldEqual, http.StatusBadRequest)
			So(serve(mux, http.MethodPost, "/events", `{"matchId":"m1"}`).Code, ShouldEqual, http.StatusBadRequest)
			So(serve(mux, http.MethodPost, "/events", `{"matchId":"m1","type":"point","seq":-1}`).Code, ShouldEqual, http.StatusBadRequest)
			So(serve(mux, http.MethodPost, "/events", `[]`).Code, ShouldEqual, http.StatusBadRequest)
			So(deps.queued, ShouldBeEmpty)

			w := serve(mux, http.MethodPost, "/events", `{}`)
			So(decode(w)["code"], ShouldEqual, "bad_request")
		})

		Convey("When a batch holds one invalid event", func() {
			w := serve(mux, http.MethodPost, "/events", `[{"id":"a","matchId":"m1","type":"point"},{"id":"b","type":"point"}]`)

			Convey("Then nothing is enqueued", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decode(w)["message"], ShouldContainSubstring, "event 1")
				So(deps.queued, ShouldBeEmpty)
			})
		})

		Convey("When a batch exceeds the queue capacity", func() {
			w := serve(mux, http.MethodPost, "/events",
				`[{"id":"a","matchId":"m1","type":"point"},{"id":"b","matchId":"m1","type":"point"},
				  {"id":"c","matchId":"m1","type":"point"},{"id":"d","matchId":"m1","type":"point"}]`)

			Convey("Then the request is refused with backpressure", func() {
				So(w.Code, ShouldEqual, http.StatusTooManyRequests)
				So(decode(w)["code"], ShouldEqual, "backpressure")
				So(deps.queued, ShouldHaveLength, 3)
			})

			Convey("And the refused event can be retried", func() {
				deps.capacity = 4
				w := serve(mux, http.MethodPost, "/events", `{"id":"d","matchId":"m1","type":"point"}`)
				So(w.Code, ShouldEqual, http.StatusAccepted)
			})
		})

		Convey("When a batch only repeats known events", func() {
			body := `[{"id":"a","matchId":"m1","type":"point"}]`
			serve(mux, http.MethodPost, "/events", body)
			w := serve(mux, http.MethodPost, "/events", body)

			Convey("Then the batch is reported as duplicate", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(decode(w)["duplicates"], ShouldEqual, 1)
			})
		})
	})
}

func TestMatchesHandler(t *testing.T) {
	Convey("Given the match endpoints", t, func() {
		deps := newMockDeps(10)
		mux := newMux(deps)

		Convey("When a match is stored", func() {
			w := serve(mux, http.MethodPut, "/matches/m1", `{"homeShortName":"HOM","coinTossTeamA":"away"}`)
			So(w.Code, ShouldEqual, http.StatusOK)

			Convey("Then it can be read back with the path id", func() {
				w := serve(mux, http.MethodGet, "/matches/m1", "")
				So(w.Code, ShouldEqual, http.StatusOK)
				body := decode(w)
				So(body["id"], ShouldEqual, "m1")
				So(body["coinTossTeamA"], ShouldEqual, "away")
			})

			Convey("Then it is listed", func() {
				w := serve(mux, http.MethodGet, "/matches", "")
				So(w.Body.String(), ShouldContainSubstring, `"m1"`)
			})

			Convey("Then set views honour the requested view", func() {
				w := serve(mux, http.MethodGet, "/matches/m1/sets/2?view=first_referee", "")
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.lastView, ShouldEqual, sides.ViewFirstReferee)
				So(decode(w)["setIndex"], ShouldEqual, 2)
			})

			Convey("Then the summary is served", func() {
				w := serve(mux, http.MethodGet, "/matches/m1/summary", "")
				So(w.Code, ShouldEqual, http.StatusOK)
				So(decode(w)["matchId"], ShouldEqual, "m1")
			})

			Convey("Then a finished set stays finished", func() {
				w := serve(mux, http.MethodPut, "/matches/m1/sets/1", `{"homePoints":25,"awayPoints":20,"finished":true}`)
				So(w.Code, ShouldEqual, http.StatusOK)
				w = serve(mux, http.MethodPut, "/matches/m1/sets/1", `{"homePoints":25,"awayPoints":20,"finished":false}`)
				So(w.Code, ShouldEqual, http.StatusOK)
				So(decode(w)["finished"], ShouldEqual, true)
			})
		})

		Convey("When the body id disagrees with the path", func() {
			w := serve(mux, http.MethodPut, "/matches/m1", `{"id":"m2"}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the match does not exist", func() {
			So(serve(mux, http.MethodGet, "/matches/zz", "").Code, ShouldEqual, http.StatusNotFound)
			So(serve(mux, http.MethodGet, "/matches/zz/summary", "").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When the set or view is invalid", func() {
			serve(mux, http.MethodPut, "/matches/m1", `{}`)
			So(serve(mux, http.MethodGet, "/matches/m1/sets/6", "").Code, ShouldEqual, http.StatusBadRequest)
			So(serve(mux, http.MethodGet, "/matches/m1/sets/x", "").Code, ShouldEqual, http.StatusBadRequest)
			So(serve(mux, http.MethodGet, "/matches/m1/sets/1?view=coach", "").Code, ShouldEqual, http.StatusBadRequest)
			So(serve(mux, http.MethodPut, "/matches/m1/sets/0", `{}`).Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestWrapKind(t *testing.T) {
	Convey("Given a wrapped store error", t, func() {
		err := api.WrapKind("op", api.ErrNotFound, repository.ErrNotFound)

		Convey("Then both the kind and the cause match", func() {
			So(errors.Is(err, api.ErrNotFound), ShouldBeTrue)
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			So(err.Error(), ShouldStartWith, "op: ")
		})
	})
}
