package model

import (
	"encoding/json"
	"time"
)

// DependencyType is the closed set of relationship types between elements.
// Unlike element types, the taxonomy is not extensible: every component
// consults the methods below instead of hardcoding type names.
type DependencyType string

// Blocking category: the source must reach a terminal status (or its gate
// must be satisfied) before the target is ready.
const (
	DepBlocks      DependencyType = "blocks"
	DepParentChild DependencyType = "parent-child" // source = child, target = parent
	DepAwaits      DependencyType = "awaits"       // target waits on an external gate
)

// Associative category: informational edges that never block readiness.
// Cycles are permitted.
const (
	DepRelatesTo  DependencyType = "relates-to" // symmetric; stored normalized
	DepReferences DependencyType = "references"
	DepSupersedes DependencyType = "supersedes"
	DepDuplicates DependencyType = "duplicates"
	DepCausedBy   DependencyType = "caused-by"
	DepValidates  DependencyType = "validates"
)

// Attribution category: link an element to an acting entity.
const (
	DepAuthoredBy DependencyType = "authored-by"
	DepAssignedTo DependencyType = "assigned-to"
	DepApprovedBy DependencyType = "approved-by"
)

// Threading category: link a message to its thread parent.
const (
	DepRepliesTo DependencyType = "replies-to"
)

// DependencyCategory groups dependency types by their graph semantics.
type DependencyCategory string

const (
	CategoryBlocking    DependencyCategory = "blocking"
	CategoryAssociative DependencyCategory = "associative"
	CategoryAttribution DependencyCategory = "attribution"
	CategoryThreading   DependencyCategory = "threading"
)

// String returns the string representation of the dependency type.
func (d DependencyType) String() string {
	return string(d)
}

// Category returns the category the dependency type belongs to, or the empty
// string for types outside the taxonomy.
func (d DependencyType) Category() DependencyCategory {
	switch d {
	case DepBlocks, DepParentChild, DepAwaits:
		return CategoryBlocking
	case DepRelatesTo, DepReferences, DepSupersedes, DepDuplicates, DepCausedBy, DepValidates:
		return CategoryAssociative
	case DepAuthoredBy, DepAssignedTo, DepApprovedBy:
		return CategoryAttribution
	case DepRepliesTo:
		return CategoryThreading
	}
	return ""
}

// IsValid reports whether the type is a member of the closed taxonomy.
func (d DependencyType) IsValid() bool {
	return d.Category() != ""
}

// Blocking reports whether the type participates in cycle prevention and
// readiness derivation.
func (d DependencyType) Blocking() bool {
	return d.Category() == CategoryBlocking
}

// DependencyTypes returns every valid dependency type.
func DependencyTypes() []DependencyType {
	return []DependencyType{
		DepBlocks, DepParentChild, DepAwaits,
		DepRelatesTo, DepReferences, DepSupersedes, DepDuplicates, DepCausedBy, DepValidates,
		DepAuthoredBy, DepAssignedTo, DepApprovedBy,
		DepRepliesTo,
	}
}

// BlockingTypes returns the types that gate readiness. The cycle check and
// the readiness engine operate on this set jointly, never per-type.
func BlockingTypes() []DependencyType {
	return []DependencyType{DepBlocks, DepParentChild, DepAwaits}
}

// Dependency is a directed, typed edge between two elements. Edges are
// interpreted source->target: for blocking types the target is the waiting
// party. Identity is the composite (SourceID, TargetID, Type), so the same
// pair of elements may carry several edges of different types at once.
type Dependency struct {
	SourceID  string         `json:"source_id"`
	TargetID  string         `json:"target_id"`
	Type      DependencyType `json:"type"`
	CreatedAt time.Time      `json:"created_at"`
	CreatedBy string         `json:"created_by,omitempty"`
	Meta      Metadata       `json:"metadata,omitempty"`
}

// Normalize rewrites a relates-to edge so the lexicographically smaller id is
// the source. A lookup in either direction then finds the same row.
func (d *Dependency) Normalize() {
	if d.Type == DepRelatesTo && d.TargetID < d.SourceID {
		d.SourceID, d.TargetID = d.TargetID, d.SourceID
	}
}

// dependencyWire mirrors Dependency with raw metadata, used to decode the
// Meta union by dependency type.
type dependencyWire struct {
	SourceID  string          `json:"source_id"`
	TargetID  string          `json:"target_id"`
	Type      DependencyType  `json:"type"`
	CreatedAt time.Time       `json:"created_at"`
	CreatedBy string          `json:"created_by,omitempty"`
	Meta      json.RawMessage `json:"metadata,omitempty"`
}

// UnmarshalJSON decodes the dependency and dispatches metadata decoding on
// the dependency type.
func (d *Dependency) UnmarshalJSON(data []byte) error {
	var w dependencyWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	meta, err := DecodeMetadata(w.Type, w.Meta)
	if err != nil {
		return err
	}
	*d = Dependency{
		SourceID:  w.SourceID,
		TargetID:  w.TargetID,
		Type:      w.Type,
		CreatedAt: w.CreatedAt,
		CreatedBy: w.CreatedBy,
		Meta:      meta,
	}
	return nil
}
