package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/loomworks/loom/internal/events"
	"github.com/loomworks/loom/internal/model"
)

// handleGetDependencies handles GET /v1/elements/{id}/dependencies.
// Returns both directions: incoming edges point at the element, outgoing
// edges originate from it.
func (s *Server) handleGetDependencies(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	incoming, err := s.store.Incoming(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get dependencies")
		return
	}
	outgoing, err := s.store.Outgoing(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get dependencies")
		return
	}

	if incoming == nil {
		incoming = []*model.Dependency{}
	}
	if outgoing == nil {
		outgoing = []*model.Dependency{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"incoming": incoming,
		"outgoing": outgoing,
	})
}

// addDependencyRequest is the JSON body for POST /v1/elements/{id}/dependencies.
// The path element is the target of the edge: for blocking types it is the
// waiting party and source_id names what it waits on.
type addDependencyRequest struct {
	SourceID  string          `json:"source_id"`
	Type      string          `json:"type"`
	CreatedBy string          `json:"created_by"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
}

// handleAddDependency handles POST /v1/elements/{id}/dependencies.
func (s *Server) handleAddDependency(w http.ResponseWriter, r *http.Request) {
	targetID := r.PathValue("id")
	if targetID == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	var req addDependencyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.SourceID == "" {
		writeError(w, http.StatusBadRequest, "source_id is required")
		return
	}

	depType := model.DependencyType(req.Type)
	meta, err := model.DecodeMetadata(depType, req.Metadata)
	if err != nil {
		writeFailure(w, err)
		return
	}

	dep := &model.Dependency{
		SourceID:  req.SourceID,
		TargetID:  targetID,
		Type:      depType,
		CreatedAt: time.Now().UTC(),
		CreatedBy: req.CreatedBy,
		Meta:      meta,
	}

	if err := s.engine.CreateDependency(r.Context(), dep); err != nil {
		writeFailure(w, err)
		return
	}

	s.recordAndPublish(r.Context(), events.TopicDependencyCreated, dep.TargetID, dep.CreatedBy, events.DependencyCreated{Dependency: dep})

	writeJSON(w, http.StatusCreated, dep)
}

// handleRemoveDependency handles DELETE /v1/elements/{id}/dependencies.
// source_id and type are taken from query parameters.
func (s *Server) handleRemoveDependency(w http.ResponseWriter, r *http.Request) {
	targetID := r.PathValue("id")
	if targetID == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	q := r.URL.Query()
	sourceID := q.Get("source_id")
	if sourceID == "" {
		writeError(w, http.StatusBadRequest, "source_id query parameter is required")
		return
	}
	depType := model.DependencyType(q.Get("type"))
	if !depType.IsValid() {
		writeError(w, http.StatusBadRequest, "type query parameter is required")
		return
	}

	if err := s.engine.RemoveDependency(r.Context(), sourceID, targetID, depType); err != nil {
		writeFailure(w, err)
		return
	}

	s.recordAndPublish(r.Context(), events.TopicDependencyRemoved, targetID, "", events.DependencyRemoved{
		SourceID: sourceID,
		TargetID: targetID,
		Type:     string(depType),
	})

	w.WriteHeader(http.StatusNoContent)
}

// handleAreRelated handles GET /v1/elements/{id}/related/{other}.
func (s *Server) handleAreRelated(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	other := r.PathValue("other")
	if id == "" || other == "" {
		writeError(w, http.StatusBadRequest, "id and other are required")
		return
	}

	related, err := s.engine.AreRelated(r.Context(), id, other)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to check relation")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"related": related})
}

// handleGetReadiness handles GET /v1/elements/{id}/readiness.
func (s *Server) handleGetReadiness(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	// Readiness of a missing element is a 404, not an empty result.
	if _, err := s.store.ElementStatus(r.Context(), id); err != nil {
		writeFailure(w, err)
		return
	}

	readiness, err := s.engine.IsReady(r.Context(), id)
	if err != nil {
		writeFailure(w, err)
		return
	}

	writeJSON(w, http.StatusOK, readiness)
}

// handleGetTree handles GET /v1/elements/{id}/tree.
// The optional depth query parameter bounds recursion in each direction.
func (s *Server) handleGetTree(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	depth := 0
	if v := r.URL.Query().Get("depth"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "depth must be a non-negative integer")
			return
		}
		depth = n
	}

	tree, err := s.engine.BuildTree(r.Context(), id, depth)
	if err != nil {
		writeFailure(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tree)
}
