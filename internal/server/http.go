package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/loomworks/loom/internal/graph"
	"github.com/loomworks/loom/internal/model"
	"github.com/loomworks/loom/internal/store"
)

// NewHTTPHandler returns an http.Handler with all routes registered.
// When authToken is non-empty, requests (except GET /v1/health) must include
// a valid Authorization: Bearer <token> header.
func (s *Server) NewHTTPHandler(authToken string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/elements", s.handleCreateElement)
	mux.HandleFunc("GET /v1/elements", s.handleListElements)
	mux.HandleFunc("GET /v1/elements/{id}", s.handleGetElement)
	mux.HandleFunc("POST /v1/elements/{id}/status", s.handleSetStatus)
	mux.HandleFunc("DELETE /v1/elements/{id}", s.handleDeleteElement)
	mux.HandleFunc("GET /v1/elements/{id}/events", s.handleGetEvents)
	mux.HandleFunc("GET /v1/elements/{id}/dependencies", s.handleGetDependencies)
	mux.HandleFunc("POST /v1/elements/{id}/dependencies", s.handleAddDependency)
	mux.HandleFunc("DELETE /v1/elements/{id}/dependencies", s.handleRemoveDependency)
	mux.HandleFunc("GET /v1/elements/{id}/related/{other}", s.handleAreRelated)
	mux.HandleFunc("GET /v1/elements/{id}/readiness", s.handleGetReadiness)
	mux.HandleFunc("GET /v1/elements/{id}/tree", s.handleGetTree)
	mux.HandleFunc("POST /v1/elements/{id}/gate/satisfy", s.handleSatisfyGate)
	mux.HandleFunc("POST /v1/elements/{id}/gate/approve", s.handleRecordApproval)
	mux.HandleFunc("GET /v1/graph", s.handleGetGraph)
	mux.HandleFunc("GET /v1/stats", s.handleGetStats)
	mux.HandleFunc("GET /v1/ready", s.handleGetReady)
	mux.HandleFunc("GET /v1/blocked", s.handleGetBlocked)
	mux.HandleFunc("GET /v1/health", s.handleHealth)
	return RecoveryMiddleware(LoggingMiddleware(AuthMiddleware(authToken, mux)))
}

// handleHealth handles GET /v1/health.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeFailure maps domain errors to HTTP statuses: invalid input to 400,
// cycle insertion and duplicate edges to 409, missing rows to 404,
// everything else to 500.
func writeFailure(w http.ResponseWriter, err error) {
	var ie inputError
	if errors.As(err, &ie) {
		writeError(w, http.StatusBadRequest, ie.Error())
		return
	}
	var ve *model.ValidationError
	if errors.As(err, &ve) {
		writeError(w, http.StatusBadRequest, ve.Error())
		return
	}
	if graph.IsCycleError(err) {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if errors.Is(err, store.ErrExists) {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}
