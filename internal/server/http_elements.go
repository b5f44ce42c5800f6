package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/loomworks/loom/internal/events"
	"github.com/loomworks/loom/internal/idgen"
	"github.com/loomworks/loom/internal/model"
)

// createElementInput is the JSON body for POST /v1/elements.
type createElementInput struct {
	Type      string `json:"type"`
	Title     string `json:"title"`
	CreatedBy string `json:"created_by"`
}

// handleCreateElement handles POST /v1/elements.
func (s *Server) handleCreateElement(w http.ResponseWriter, r *http.Request) {
	var in createElementInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	id, err := idgen.Generate()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate ID")
		return
	}

	now := time.Now().UTC()
	el := &model.Element{
		ID:        id,
		Type:      model.ElementType(in.Type),
		Title:     in.Title,
		Status:    model.StatusOpen,
		CreatedAt: now,
		CreatedBy: in.CreatedBy,
		UpdatedAt: now,
	}

	if err := model.ValidateElement(el); err != nil {
		writeFailure(w, err)
		return
	}

	if err := s.store.CreateElement(r.Context(), el); err != nil {
		writeFailure(w, err)
		return
	}

	s.recordAndPublish(r.Context(), events.TopicElementCreated, el.ID, el.CreatedBy, events.ElementCreated{Element: el})

	writeJSON(w, http.StatusCreated, el)
}

// handleListElements handles GET /v1/elements.
func (s *Server) handleListElements(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := model.ElementFilter{
		Search: q.Get("search"),
		Sort:   q.Get("sort"),
	}

	if v := q.Get("status"); v != "" {
		for _, s := range strings.Split(v, ",") {
			filter.Status = append(filter.Status, model.Status(s))
		}
	}
	if v := q.Get("type"); v != "" {
		for _, t := range strings.Split(v, ",") {
			filter.Type = append(filter.Type, model.ElementType(t))
		}
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Offset = n
		}
	}

	elements, total, err := s.store.ListElements(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list elements")
		return
	}

	// Ensure elements is never null in JSON output.
	if elements == nil {
		elements = []*model.Element{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"elements": elements,
		"total":    total,
	})
}

// handleGetElement handles GET /v1/elements/{id}.
func (s *Server) handleGetElement(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	el, err := s.store.GetElement(r.Context(), id)
	if err != nil {
		writeFailure(w, err)
		return
	}

	writeJSON(w, http.StatusOK, el)
}

// setStatusInput is the JSON body for POST /v1/elements/{id}/status.
type setStatusInput struct {
	Status string `json:"status"`
	Actor  string `json:"actor"`
}

// handleSetStatus handles POST /v1/elements/{id}/status. Moving an element
// into a terminal status resolves its outgoing blocking edges; targets left
// with no unresolved blocker get an unblocked event.
func (s *Server) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	var in setStatusInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	status := model.Status(in.Status)
	if !status.IsValid() {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid status %q", in.Status))
		return
	}

	oldStatus, err := s.store.ElementStatus(r.Context(), id)
	if err != nil {
		writeFailure(w, err)
		return
	}

	el, err := s.store.SetElementStatus(r.Context(), id, status, in.Actor)
	if err != nil {
		writeFailure(w, err)
		return
	}

	s.recordAndPublish(r.Context(), events.TopicElementStatusChanged, el.ID, in.Actor, events.ElementStatusChanged{
		Element:   el,
		OldStatus: oldStatus,
		Actor:     in.Actor,
	})

	if status.Terminal() && !oldStatus.Terminal() {
		s.publishUnblocked(r.Context(), el.ID)
	}

	writeJSON(w, http.StatusOK, el)
}

// publishUnblocked emits an unblocked event for each target of the element's
// outgoing blocking edges that is now ready. Best-effort.
func (s *Server) publishUnblocked(ctx context.Context, sourceID string) {
	edges, err := s.store.Outgoing(ctx, sourceID, model.BlockingTypes()...)
	if err != nil {
		return
	}
	notified := make(map[string]bool)
	for _, d := range edges {
		if notified[d.TargetID] {
			continue
		}
		notified[d.TargetID] = true
		rd, err := s.engine.IsReady(ctx, d.TargetID)
		if err != nil || !rd.Ready {
			continue
		}
		s.recordAndPublish(ctx, events.TopicElementUnblocked, d.TargetID, "", events.ElementUnblocked{ElementID: d.TargetID})
	}
}

// handleDeleteElement handles DELETE /v1/elements/{id}. Edges touching the
// element are removed by the store cascade.
func (s *Server) handleDeleteElement(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := s.store.DeleteElement(r.Context(), id); err != nil {
		writeFailure(w, err)
		return
	}

	s.recordAndPublish(r.Context(), events.TopicElementDeleted, id, "", events.ElementDeleted{ElementID: id})

	w.WriteHeader(http.StatusNoContent)
}

// handleGetEvents handles GET /v1/elements/{id}/events.
func (s *Server) handleGetEvents(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	evts, err := s.store.GetEvents(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get events")
		return
	}

	if evts == nil {
		evts = []*model.Event{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"events": evts})
}
