package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/openvolley/scoresheet/internal/domain/model"
)

// EventsHandler handles event intake.
type EventsHandler struct {
	deps EventDependencies
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(deps EventDependencies) *EventsHandler {
	return &EventsHandler{deps: deps}
}

type ackResponse struct {
	Status    string `json:"status"`
	ID        string `json:"id,omitempty"`
	Duplicate bool   `json:"duplicate"`
}

type batchResponse struct {
	Status     string   `json:"status"`
	Accepted   int      `json:"accepted"`
	Duplicates int      `json:"duplicates"`
	IDs        []string `json:"ids"`
}

// decodeEvents reads a single event object or a JSON array of events.
func decodeEvents(r io.Reader) ([]model.Event, bool, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, false, err
	}
	body = bytes.TrimSpace(body)
	if len(body) > 0 && body[0] == '[' {
		var events []model.Event
		if err := json.Unmarshal(body, &events); err != nil {
			return nil, true, err
		}
		return events, true, nil
	}
	var e model.Event
	if err := json.Unmarshal(body, &e); err != nil {
		return nil, false, err
	}
	return []model.Event{e}, false, nil
}

// prepare checks the envelope of an event and assigns a time-ordered id
// when the client sent none. Payloads are never inspected.
func prepare(e *model.Event) error {
	switch {
	case e.MatchID == "":
		return errors.New("missing matchId")
	case e.Type == "":
		return errors.New("missing type")
	case e.Seq < 0:
		return errors.New("seq must not be negative")
	}
	if e.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("generate id: %w", err)
		}
		e.ID = id.String()
	}
	return nil
}

// HandlePostEvents handles POST /events with one event or an array. A batch
// is validated as a whole before anything is enqueued; under backpressure
// the events enqueued so far stay accepted.
func (h *EventsHandler) HandlePostEvents(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_events"

	events, batch, err := decodeEvents(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if batch && len(events) == 0 {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("empty batch")))
		return
	}
	for i := range events {
		if err := prepare(&events[i]); err != nil {
			if batch {
				err = fmt.Errorf("event %d: %w", i, err)
			}
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
	}

	resp := batchResponse{Status: "accepted", IDs: make([]string, 0, len(events))}
	ctx := r.Context()
	for _, e := range events {
		if h.deps.SeenAndRecord(ctx, e.MatchID, e.ID) {
			resp.Duplicates++
			resp.IDs = append(resp.IDs, e.ID)
			continue
		}
		if !h.deps.Enqueue(ctx, e) {
			// Release the id so the client can retry it.
			h.deps.Unrecord(ctx, e.MatchID, e.ID)
			writeError(w, http.StatusTooManyRequests, "backpressure",
				fmt.Errorf("%w: %d of %d events accepted", NewKind(op, ErrBackpressure), resp.Accepted+resp.Duplicates, len(events)))
			return
		}
		resp.Accepted++
		resp.IDs = append(resp.IDs, e.ID)
	}

	if !batch {
		if resp.Duplicates == 1 {
			writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", ID: resp.IDs[0], Duplicate: true})
			return
		}
		writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", ID: resp.IDs[0]})
		return
	}
	if resp.Accepted == 0 {
		resp.Status = "duplicate"
		writeJSON(w, http.StatusOK, resp)
		return
	}
	writeJSON(w, http.StatusAccepted, resp)
}
