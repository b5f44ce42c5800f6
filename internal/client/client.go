// Package client provides a transport-agnostic interface for the loom service
// and an HTTP/JSON implementation that talks to the loom REST API.
package client

import (
	"context"
	"encoding/json"

	"github.com/loomworks/loom/internal/graph"
	"github.com/loomworks/loom/internal/model"
)

// LoomClient is the interface that all loom CLI commands use to communicate
// with the server. It is implemented by HTTPClient (default) and can be
// backed by any transport.
type LoomClient interface {
	// Element CRUD
	CreateElement(ctx context.Context, req *CreateElementRequest) (*model.Element, error)
	GetElement(ctx context.Context, id string) (*model.Element, error)
	ListElements(ctx context.Context, req *ListElementsRequest) (*ListElementsResponse, error)
	SetStatus(ctx context.Context, id, status, actor string) (*model.Element, error)
	DeleteElement(ctx context.Context, id string) error

	// Dependencies
	AddDependency(ctx context.Context, req *AddDependencyRequest) (*model.Dependency, error)
	RemoveDependency(ctx context.Context, targetID, sourceID, depType string) error
	GetDependencies(ctx context.Context, id string) (*DependenciesResponse, error)
	AreRelated(ctx context.Context, a, b string) (bool, error)

	// Derived views
	GetReadiness(ctx context.Context, id string) (*graph.Readiness, error)
	GetTree(ctx context.Context, id string, depth int) (*graph.Tree, error)
	ListReady(ctx context.Context, limit int) ([]*model.Element, error)
	ListBlocked(ctx context.Context, limit int) ([]*graph.BlockedElement, error)
	GetGraph(ctx context.Context, limit int) (*model.GraphResponse, error)
	GetStats(ctx context.Context) (*model.GraphStats, error)

	// Gates
	SatisfyGate(ctx context.Context, targetID, sourceID, actor string) (*model.Dependency, error)
	RecordApproval(ctx context.Context, targetID, sourceID, approver string) (*ApprovalResponse, error)

	// Events
	GetEvents(ctx context.Context, id string) ([]*model.Event, error)

	// Health
	Health(ctx context.Context) (string, error)

	// Lifecycle
	Close() error
}

// CreateElementRequest holds parameters for creating an element.
type CreateElementRequest struct {
	Type      string `json:"type"`
	Title     string `json:"title"`
	CreatedBy string `json:"created_by,omitempty"`
}

// ListElementsRequest holds parameters for listing elements.
type ListElementsRequest struct {
	Status []string `json:"status,omitempty"`
	Type   []string `json:"type,omitempty"`
	Search string   `json:"search,omitempty"`
	Sort   string   `json:"sort,omitempty"`
	Limit  int      `json:"limit,omitempty"`
	Offset int      `json:"offset,omitempty"`
}

// ListElementsResponse is the response from ListElements.
type ListElementsResponse struct {
	Elements []*model.Element `json:"elements"`
	Total    int              `json:"total"`
}

// AddDependencyRequest holds parameters for adding a dependency edge. The
// edge points source -> target; for blocking types the target waits.
type AddDependencyRequest struct {
	TargetID  string          `json:"-"`
	SourceID  string          `json:"source_id"`
	Type      string          `json:"type"`
	CreatedBy string          `json:"created_by,omitempty"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
}

// DependenciesResponse holds both edge directions for an element.
type DependenciesResponse struct {
	Incoming []*model.Dependency `json:"incoming"`
	Outgoing []*model.Dependency `json:"outgoing"`
}

// ApprovalResponse is the response from RecordApproval.
type ApprovalResponse struct {
	Dependency *model.Dependency `json:"dependency"`
	Satisfied  bool              `json:"satisfied"`
	Reason     string            `json:"reason,omitempty"`
}
