package server

import (
	"net/http"
	"strconv"

	"github.com/loomworks/loom/internal/graph"
	"github.com/loomworks/loom/internal/model"
)

func limitParam(r *http.Request, fallback int) int {
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

// handleGetGraph handles GET /v1/graph.
// Returns all elements as nodes, all dependencies as edges, and aggregate
// stats for graph visualization.
func (s *Server) handleGetGraph(w http.ResponseWriter, r *http.Request) {
	g, err := s.store.GetGraph(r.Context(), limitParam(r, 500))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get graph")
		return
	}

	writeJSON(w, http.StatusOK, g)
}

// handleGetStats handles GET /v1/stats.
func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.GetStats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// handleGetReady handles GET /v1/ready.
// Returns open elements with no unresolved blocking dependency.
func (s *Server) handleGetReady(w http.ResponseWriter, r *http.Request) {
	ready, err := s.engine.ListReady(r.Context(), limitParam(r, 200))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list ready elements")
		return
	}

	if ready == nil {
		ready = []*model.Element{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"elements": ready,
		"total":    len(ready),
	})
}

// handleGetBlocked handles GET /v1/blocked.
// Returns non-terminal elements holding at least one unresolved blocker,
// annotated with the blocking reasons.
func (s *Server) handleGetBlocked(w http.ResponseWriter, r *http.Request) {
	blocked, err := s.engine.ListBlocked(r.Context(), limitParam(r, 200))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list blocked elements")
		return
	}

	if blocked == nil {
		blocked = []*graph.BlockedElement{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"elements": blocked,
		"total":    len(blocked),
	})
}
