package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/loomworks/loom/internal/events"
)

// satisfyGateRequest is the JSON body for POST /v1/elements/{id}/gate/satisfy.
// The path element is the waiting target of the awaits edge.
type satisfyGateRequest struct {
	SourceID string `json:"source_id"`
	Actor    string `json:"actor"`
}

// handleSatisfyGate handles POST /v1/elements/{id}/gate/satisfy.
// Marks the external or webhook gate on the awaits edge satisfied.
func (s *Server) handleSatisfyGate(w http.ResponseWriter, r *http.Request) {
	targetID := r.PathValue("id")
	if targetID == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	var req satisfyGateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.SourceID == "" {
		writeError(w, http.StatusBadRequest, "source_id is required")
		return
	}

	dep, err := s.engine.RecordGateSatisfaction(r.Context(), req.SourceID, targetID, req.Actor)
	if err != nil {
		writeFailure(w, err)
		return
	}

	s.recordAndPublish(r.Context(), events.TopicGateSatisfied, targetID, req.Actor, events.GateSatisfied{
		Dependency: dep,
		Actor:      req.Actor,
	})
	s.publishUnblockedIfReady(r.Context(), targetID)

	writeJSON(w, http.StatusOK, dep)
}

// recordApprovalRequest is the JSON body for POST /v1/elements/{id}/gate/approve.
type recordApprovalRequest struct {
	SourceID string `json:"source_id"`
	Approver string `json:"approver"`
}

// handleRecordApproval handles POST /v1/elements/{id}/gate/approve.
func (s *Server) handleRecordApproval(w http.ResponseWriter, r *http.Request) {
	targetID := r.PathValue("id")
	if targetID == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	var req recordApprovalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.SourceID == "" {
		writeError(w, http.StatusBadRequest, "source_id is required")
		return
	}
	if req.Approver == "" {
		writeError(w, http.StatusBadRequest, "approver is required")
		return
	}

	dep, res, err := s.engine.RecordApproval(r.Context(), req.SourceID, targetID, req.Approver)
	if err != nil {
		writeFailure(w, err)
		return
	}

	s.recordAndPublish(r.Context(), events.TopicApprovalRecorded, targetID, req.Approver, events.ApprovalRecorded{
		Dependency: dep,
		Approver:   req.Approver,
		Satisfied:  res.Satisfied,
	})
	if res.Satisfied {
		s.publishUnblockedIfReady(r.Context(), targetID)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"dependency": dep,
		"satisfied":  res.Satisfied,
		"reason":     res.Reason,
	})
}

// publishUnblockedIfReady emits an unblocked event when the element has no
// remaining unresolved blocker. Best-effort.
func (s *Server) publishUnblockedIfReady(ctx context.Context, elementID string) {
	rd, err := s.engine.IsReady(ctx, elementID)
	if err != nil || !rd.Ready {
		return
	}
	s.recordAndPublish(ctx, events.TopicElementUnblocked, elementID, "", events.ElementUnblocked{ElementID: elementID})
}
