package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/loomworks/loom/internal/model"
)

// Blocker describes one unresolved blocking edge and a human-readable
// reason the routing layer can surface.
type Blocker struct {
	Edge   *model.Dependency `json:"edge"`
	Reason string            `json:"reason"`
}

// Readiness is the derived blocked/ready view of one element. It is a
// best-effort snapshot recomputed on every query; nothing is persisted.
type Readiness struct {
	ElementID string    `json:"element_id"`
	Ready     bool      `json:"ready"`
	BlockedBy []Blocker `json:"blocked_by,omitempty"`
}

// BlockedElement pairs an element with the blockers that hold it.
type BlockedElement struct {
	Element   *model.Element `json:"element"`
	BlockedBy []Blocker      `json:"blocked_by"`
}

// IsReady derives readiness from the element's incoming blocking edges: for
// blocks and parent-child edges the source must be in a terminal status;
// awaits edges resolve through their gate. An element with no incoming
// blocking edges is ready by definition.
func (e *Engine) IsReady(ctx context.Context, elementID string) (*Readiness, error) {
	edges, err := e.store.Incoming(ctx, elementID, model.BlockingTypes()...)
	if err != nil {
		return nil, err
	}

	r := &Readiness{ElementID: elementID, Ready: true}
	now := time.Now().UTC()
	for _, d := range edges {
		blocked, reason, err := e.unresolved(ctx, d, now)
		if err != nil {
			return nil, err
		}
		if blocked {
			r.Ready = false
			r.BlockedBy = append(r.BlockedBy, Blocker{Edge: d, Reason: reason})
		}
	}
	return r, nil
}

// unresolved reports whether the blocking edge currently holds its target.
func (e *Engine) unresolved(ctx context.Context, d *model.Dependency, now time.Time) (bool, string, error) {
	if d.Type == model.DepAwaits {
		var res Resolution
		if gm, ok := d.Meta.(model.GateMeta); ok {
			res = ResolveGate(gm.Gate, now)
		} else {
			// Fail closed on malformed metadata: report unsatisfied rather
			// than erroring out of the whole readiness computation.
			res = Resolution{Reason: "malformed gate metadata"}
		}
		if res.Satisfied {
			return false, "", nil
		}
		return true, res.Reason, nil
	}

	// blocks and parent-child resolve when the source reaches a terminal status.
	status, err := e.store.ElementStatus(ctx, d.SourceID)
	if err != nil {
		return false, "", err
	}
	if status.Terminal() {
		return false, "", nil
	}
	return true, fmt.Sprintf("%s %s is %s", d.Type, d.SourceID, status), nil
}

// ListReady returns non-terminal elements with no unresolved blocking edge,
// recomputed from the store on each call.
func (e *Engine) ListReady(ctx context.Context, limit int) ([]*model.Element, error) {
	elements, _, err := e.store.ListElements(ctx, model.ElementFilter{
		Status: []model.Status{model.StatusOpen},
		Sort:   "created_at",
		Limit:  limit,
	})
	if err != nil {
		return nil, err
	}

	ready := make([]*model.Element, 0, len(elements))
	for _, el := range elements {
		r, err := e.IsReady(ctx, el.ID)
		if err != nil {
			return nil, err
		}
		if r.Ready {
			ready = append(ready, el)
		}
	}
	return ready, nil
}

// ListBlocked returns open elements with at least one unresolved blocker,
// annotated with the blocking reasons.
func (e *Engine) ListBlocked(ctx context.Context, limit int) ([]*BlockedElement, error) {
	elements, _, err := e.store.ListElements(ctx, model.ElementFilter{
		Status: []model.Status{model.StatusOpen, model.StatusInProgress},
		Sort:   "created_at",
		Limit:  limit,
	})
	if err != nil {
		return nil, err
	}

	blocked := make([]*BlockedElement, 0)
	for _, el := range elements {
		r, err := e.IsReady(ctx, el.ID)
		if err != nil {
			return nil, err
		}
		if !r.Ready {
			blocked = append(blocked, &BlockedElement{Element: el, BlockedBy: r.BlockedBy})
		}
	}
	return blocked, nil
}
