// Package snapshot exports the full dependency graph as JSONL and ships it
// to configured destinations on a schedule.
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/loomworks/loom/internal/model"
	"github.com/loomworks/loom/internal/store"
)

// header is the first JSONL record written by ExportJSONL.
type header struct {
	Version         string    `json:"version"`
	Type            string    `json:"type"`
	Timestamp       time.Time `json:"timestamp"`
	ElementCount    int       `json:"element_count"`
	DependencyCount int       `json:"dependency_count"`
}

// record wraps a single JSONL line with a type discriminator.
type record struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// ExportJSONL writes every element and dependency edge from the store as
// JSONL to w. Elements are sorted by ID and edges by their composite key, so
// two exports of the same graph are byte-identical apart from the header
// timestamp.
func ExportJSONL(ctx context.Context, s store.Store, w io.Writer) error {
	// Fetch all elements (no filter, no limit).
	elements, _, err := s.ListElements(ctx, model.ElementFilter{Sort: "created_at"})
	if err != nil {
		return fmt.Errorf("list elements: %w", err)
	}

	sort.Slice(elements, func(i, j int) bool {
		return elements[i].ID < elements[j].ID
	})

	// Collect outgoing edges per element; each edge appears exactly once.
	var deps []*model.Dependency
	for _, el := range elements {
		el.Dependencies = nil // edges are exported as their own records
		out, err := s.Outgoing(ctx, el.ID)
		if err != nil {
			return fmt.Errorf("get edges for %s: %w", el.ID, err)
		}
		deps = append(deps, out...)
	}

	sort.Slice(deps, func(i, j int) bool {
		if deps[i].SourceID != deps[j].SourceID {
			return deps[i].SourceID < deps[j].SourceID
		}
		if deps[i].TargetID != deps[j].TargetID {
			return deps[i].TargetID < deps[j].TargetID
		}
		return deps[i].Type < deps[j].Type
	})

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	// Write header.
	if err := enc.Encode(header{
		Version:         "1",
		Type:            "header",
		Timestamp:       time.Now().UTC(),
		ElementCount:    len(elements),
		DependencyCount: len(deps),
	}); err != nil {
		return fmt.Errorf("encode header: %w", err)
	}

	// Write elements.
	for _, el := range elements {
		if err := enc.Encode(record{Type: "element", Data: el}); err != nil {
			return fmt.Errorf("encode element %s: %w", el.ID, err)
		}
	}

	// Write edges.
	for _, d := range deps {
		if err := enc.Encode(record{Type: "dependency", Data: d}); err != nil {
			return fmt.Errorf("encode dependency %s->%s: %w", d.SourceID, d.TargetID, err)
		}
	}

	return nil
}
