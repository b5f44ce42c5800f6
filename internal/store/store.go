package store

import (
	"context"
	"errors"

	"github.com/loomworks/loom/internal/model"
)

// ErrNotFound is returned when an element or dependency does not exist.
var ErrNotFound = errors.New("not found")

// ErrExists is returned when inserting a dependency whose composite key
// (source, target, type) is already present.
var ErrExists = errors.New("already exists")

// Store defines the persistence interface for elements and dependencies.
type Store interface {
	// Element CRUD
	CreateElement(ctx context.Context, el *model.Element) error
	GetElement(ctx context.Context, id string) (*model.Element, error)
	ListElements(ctx context.Context, filter model.ElementFilter) ([]*model.Element, int, error) // returns elements, total count, error
	SetElementStatus(ctx context.Context, id string, status model.Status, actor string) (*model.Element, error)
	DeleteElement(ctx context.Context, id string) error
	// ElementStatus is the cheap status-only lookup used by the readiness engine.
	ElementStatus(ctx context.Context, id string) (model.Status, error)

	// Dependencies. Outgoing returns edges whose source is the given
	// element; Incoming returns edges whose target is. An empty types list
	// means all types.
	AddDependency(ctx context.Context, dep *model.Dependency) error
	RemoveDependency(ctx context.Context, sourceID, targetID string, depType model.DependencyType) error
	GetDependency(ctx context.Context, sourceID, targetID string, depType model.DependencyType) (*model.Dependency, error)
	// UpdateDependencyMeta rewrites the metadata of an existing edge in
	// place. Identity (source, target, type) never changes.
	UpdateDependencyMeta(ctx context.Context, dep *model.Dependency) error
	Outgoing(ctx context.Context, sourceID string, types ...model.DependencyType) ([]*model.Dependency, error)
	Incoming(ctx context.Context, targetID string, types ...model.DependencyType) ([]*model.Dependency, error)
	AreRelated(ctx context.Context, a, b string) (bool, error)

	// Graph visualization
	GetGraph(ctx context.Context, limit int) (*model.GraphResponse, error)
	GetStats(ctx context.Context) (*model.GraphStats, error)

	// Events
	RecordEvent(ctx context.Context, event *model.Event) error
	GetEvents(ctx context.Context, elementID string) ([]*model.Event, error)

	// Transaction support
	RunInTransaction(ctx context.Context, fn func(tx Store) error) error

	// Lifecycle
	Close() error
}
