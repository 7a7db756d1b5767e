package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/openvolley/scoresheet/internal/domain/model"
	"github.com/openvolley/scoresheet/internal/domain/sides"
)

// MatchesHandler serves match records and derived views.
type MatchesHandler struct {
	deps MatchDependencies
}

// NewMatchesHandler creates a new matches handler.
func NewMatchesHandler(deps MatchDependencies) *MatchesHandler {
	return &MatchesHandler{deps: deps}
}

// setIndex parses the {n} path value.
func setIndex(r *http.Request) (int, error) {
	n, err := strconv.Atoi(r.PathValue("n"))
	if err != nil || n < model.MinSet || n > model.MaxSet {
		return 0, fmt.Errorf("set index must be between %d and %d", model.MinSet, model.MaxSet)
	}
	return n, nil
}

// parseView accepts an empty value (the server default) or one of the two
// referee views.
func parseView(s string) (sides.View, error) {
	switch sides.View(s) {
	case "", sides.ViewFirstReferee, sides.ViewSecondReferee:
		return sides.View(s), nil
	}
	return "", fmt.Errorf("unknown view %q", s)
}

// HandleList handles GET /matches.
func (h *MatchesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ids, err := h.deps.Matches(r.Context())
	if err != nil {
		writeStoreError(w, "api.list_matches", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"matches": ids})
}

// HandleGetMatch handles GET /matches/{id}.
func (h *MatchesHandler) HandleGetMatch(w http.ResponseWriter, r *http.Request) {
	m, err := h.deps.Match(r.Context(), r.PathValue("id"))
	if err != nil {
		writeStoreError(w, "api.get_match", err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// HandlePutMatch handles PUT /matches/{id}. The path id wins over an empty
// body id; a different body id is rejected.
func (h *MatchesHandler) HandlePutMatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.put_match"
	id := r.PathValue("id")

	var m model.Match
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&m); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if m.ID != "" && m.ID != id {
		writeError(w, http.StatusBadRequest, "bad_request",
			WrapKind(op, ErrBadRequest, fmt.Errorf("body id %q does not match path id %q", m.ID, id)))
		return
	}
	m.ID = id
	if err := h.deps.PutMatch(r.Context(), m); err != nil {
		writeStoreError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// HandlePutSet handles PUT /matches/{id}/sets/{n}.
func (h *MatchesHandler) HandlePutSet(w http.ResponseWriter, r *http.Request) {
	const op = "api.put_set"
	n, err := setIndex(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	var set model.Set
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&set); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	set.Index = n
	stored, err := h.deps.PutSet(r.Context(), r.PathValue("id"), set)
	if err != nil {
		writeStoreError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, stored)
}

// HandleSetView handles GET /matches/{id}/sets/{n}?view=.
func (h *MatchesHandler) HandleSetView(w http.ResponseWriter, r *http.Request) {
	const op = "api.set_view"
	n, err := setIndex(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	view, err := parseView(r.URL.Query().Get("view"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	v, err := h.deps.SetView(r.Context(), r.PathValue("id"), n, view)
	if err != nil {
		writeStoreError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// HandleSummary handles GET /matches/{id}/summary.
func (h *MatchesHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.deps.Summary(r.Context(), r.PathValue("id"))
	if err != nil {
		writeStoreError(w, "api.summary", err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// HandleEvents handles GET /matches/{id}/events.
func (h *MatchesHandler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.deps.Events(r.Context(), r.PathValue("id"))
	if err != nil {
		writeStoreError(w, "api.events", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"matchId": r.PathValue("id"), "events": events})
}
