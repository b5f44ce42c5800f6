package events

import (
	"context"

	"github.com/loomworks/loom/internal/model"
)

// Event topic constants
const (
	TopicElementCreated       = "loom.element.created"
	TopicElementStatusChanged = "loom.element.status_changed"
	TopicElementDeleted       = "loom.element.deleted"

	TopicDependencyCreated = "loom.dependency.created"
	TopicDependencyRemoved = "loom.dependency.removed"

	// Gate events fire on awaits edges.
	TopicGateSatisfied    = "loom.gate.satisfied"
	TopicApprovalRecorded = "loom.gate.approval_recorded"
	TopicElementUnblocked = "loom.element.unblocked"
)

// Event types

type ElementCreated struct {
	Element *model.Element `json:"element"`
}

type ElementStatusChanged struct {
	Element   *model.Element `json:"element"`
	OldStatus model.Status   `json:"old_status"`
	Actor     string         `json:"actor,omitempty"`
}

type ElementDeleted struct {
	ElementID string `json:"element_id"`
}

type DependencyCreated struct {
	Dependency *model.Dependency `json:"dependency"`
}

type DependencyRemoved struct {
	SourceID string `json:"source_id"`
	TargetID string `json:"target_id"`
	Type     string `json:"type"`
}

type GateSatisfied struct {
	Dependency *model.Dependency `json:"dependency"`
	Actor      string            `json:"actor,omitempty"`
}

type ApprovalRecorded struct {
	Dependency *model.Dependency `json:"dependency"`
	Approver   string            `json:"approver"`
	Satisfied  bool              `json:"satisfied"`
}

// ElementUnblocked fires when resolving the last blocker of an element.
type ElementUnblocked struct {
	ElementID string `json:"element_id"`
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}
