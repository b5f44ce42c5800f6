package model

import "time"

// ElementType categorizes a graph node.
// Well-known constants are provided below, but element types are extensible;
// custom types are valid as long as they are non-empty.
type ElementType string

const (
	TypeTask     ElementType = "task"
	TypeDocument ElementType = "document"
	TypeChannel  ElementType = "channel"
	TypeMessage  ElementType = "message"
	TypeLibrary  ElementType = "library"
	TypeEntity   ElementType = "entity"
)

// String returns the string representation of the element type.
func (t ElementType) String() string {
	return string(t)
}

// IsValid reports whether the element type is a non-empty string.
// Element types are extensible, so any non-empty value is accepted.
func (t ElementType) IsValid() bool {
	return t != ""
}

// Status represents the lifecycle state of an element.
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// IsValid checks whether the status is a known value.
func (s Status) IsValid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether the status resolves blocking edges whose source
// reached it. Only completed and cancelled are terminal.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Element is a graph node: task, document, channel, message, library, or
// entity. The dependency engine treats elements as opaque identifiers and
// only consults Status (for terminality) and Type (as a weak filter).
type Element struct {
	ID        string      `json:"id"`
	Type      ElementType `json:"type"`
	Title     string      `json:"title"`
	Status    Status      `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
	CreatedBy string      `json:"created_by,omitempty"`
	UpdatedAt time.Time   `json:"updated_at"`
	ClosedAt  *time.Time  `json:"closed_at,omitempty"`
	ClosedBy  string      `json:"closed_by,omitempty"`

	// Relational data -- populated by queries, not stored in the elements table.
	Dependencies []*Dependency `json:"dependencies,omitempty"`
}
