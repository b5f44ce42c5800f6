// Package server exposes the dependency graph over HTTP/JSON. Handlers are
// thin: validation and graph semantics live in internal/graph, persistence
// in internal/store.
package server

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/loomworks/loom/internal/events"
	"github.com/loomworks/loom/internal/graph"
	"github.com/loomworks/loom/internal/model"
	"github.com/loomworks/loom/internal/store"
)

// Server handles element and dependency requests.
type Server struct {
	store     store.Store
	engine    *graph.Engine
	publisher events.Publisher
}

// NewServer returns a Server backed by the given store and publisher.
func NewServer(s store.Store, p events.Publisher) *Server {
	return &Server{
		store:     s,
		engine:    graph.New(s),
		publisher: p,
	}
}

// recordAndPublish persists an event to the store and publishes it to NATS.
// Both operations are best-effort; failures are logged but do not block the caller.
func (s *Server) recordAndPublish(ctx context.Context, topic, elementID, actor string, event any) {
	payload, err := json.Marshal(event)
	if err != nil {
		slog.Warn("failed to marshal event", "topic", topic, "element_id", elementID, "error", err)
		return
	}
	if err := s.store.RecordEvent(ctx, &model.Event{
		Topic:     topic,
		ElementID: elementID,
		Actor:     actor,
		Payload:   payload,
	}); err != nil {
		slog.Warn("failed to record event", "topic", topic, "element_id", elementID, "error", err)
	}
	if err := s.publisher.Publish(ctx, topic, event); err != nil {
		slog.Warn("failed to publish event", "topic", topic, "element_id", elementID, "error", err)
	}
}

// inputError indicates invalid user input. The transport layer maps this
// to 400.
type inputError string

func (e inputError) Error() string { return string(e) }
