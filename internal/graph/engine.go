// Package graph implements the dependency engine: validation-gated edge
// creation, blocking-cycle prevention, gate resolution, readiness
// derivation, and bounded dependency-tree construction. The engine never
// logs and never persists derived state; it is a library consumed by the
// routing layer.
package graph

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/loomworks/loom/internal/model"
	"github.com/loomworks/loom/internal/store"
)

// Engine evaluates and mutates the typed dependency graph on top of an
// abstract element/edge store.
type Engine struct {
	store store.Store
}

// New returns an Engine backed by the given store.
func New(s store.Store) *Engine {
	return &Engine{store: s}
}

// CycleError reports that inserting an edge would close a directed loop in
// the blocking-category subgraph. It is a distinct error kind so callers
// can present it separately from malformed input.
type CycleError struct {
	SourceID string
	TargetID string
	Type     model.DependencyType
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency %s -> %s (%s) would create a circular dependency", e.SourceID, e.TargetID, e.Type)
}

// CreateDependency validates the candidate edge, verifies both endpoints
// exist, and persists it. For blocking types the cycle check and the insert
// run inside one store transaction so two concurrent inserts cannot each
// pass the check against a stale snapshot and jointly create a cycle.
func (e *Engine) CreateDependency(ctx context.Context, dep *model.Dependency) error {
	if dep.CreatedAt.IsZero() {
		dep.CreatedAt = time.Now().UTC()
	}
	dep.Normalize()
	if err := model.ValidateDependency(dep); err != nil {
		return err
	}

	return e.store.RunInTransaction(ctx, func(tx store.Store) error {
		if _, err := tx.ElementStatus(ctx, dep.SourceID); err != nil {
			return fmt.Errorf("source element %s: %w", dep.SourceID, err)
		}
		if _, err := tx.ElementStatus(ctx, dep.TargetID); err != nil {
			return fmt.Errorf("target element %s: %w", dep.TargetID, err)
		}
		if dep.Type.Blocking() {
			cycle, err := wouldCreateCycle(ctx, tx, dep.SourceID, dep.TargetID)
			if err != nil {
				return err
			}
			if cycle {
				return &CycleError{SourceID: dep.SourceID, TargetID: dep.TargetID, Type: dep.Type}
			}
		}
		return tx.AddDependency(ctx, dep)
	})
}

// RemoveDependency deletes an edge by its composite key. relates-to pairs
// are normalized first so removal works regardless of argument order.
func (e *Engine) RemoveDependency(ctx context.Context, sourceID, targetID string, depType model.DependencyType) error {
	d := model.Dependency{SourceID: sourceID, TargetID: targetID, Type: depType}
	d.Normalize()
	return e.store.RemoveDependency(ctx, d.SourceID, d.TargetID, d.Type)
}

// AreRelated reports whether a relates-to edge exists between the two
// elements, regardless of insertion order.
func (e *Engine) AreRelated(ctx context.Context, a, b string) (bool, error) {
	return e.store.AreRelated(ctx, a, b)
}

// RecordGateSatisfaction marks the gate of an awaits edge satisfied. Only
// external and webhook gates can be satisfied this way; timer gates resolve
// by the clock and approval gates via RecordApproval.
func (e *Engine) RecordGateSatisfaction(ctx context.Context, sourceID, targetID, actor string) (*model.Dependency, error) {
	dep, gm, err := e.awaitsEdge(ctx, sourceID, targetID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	switch g := gm.Gate.(type) {
	case model.ExternalGate:
		g.Satisfied = true
		g.SatisfiedAt = &now
		g.SatisfiedBy = actor
		gm.Gate = g
	case model.WebhookGate:
		g.Satisfied = true
		g.SatisfiedAt = &now
		g.SatisfiedBy = actor
		gm.Gate = g
	default:
		return nil, &model.ValidationError{Errors: []model.FieldError{{
			Field:    "metadata.gate_type",
			Value:    string(gm.Gate.Kind()),
			Expected: "only external and webhook gates can be satisfied manually",
		}}}
	}

	dep.Meta = gm
	if err := e.store.UpdateDependencyMeta(ctx, dep); err != nil {
		return nil, err
	}
	return dep, nil
}

// RecordApproval records an approval on an approval gate. Recording is
// idempotent per approver; approvers outside the required set are recorded
// but never counted toward the threshold.
func (e *Engine) RecordApproval(ctx context.Context, sourceID, targetID, approver string) (*model.Dependency, Resolution, error) {
	dep, gm, err := e.awaitsEdge(ctx, sourceID, targetID)
	if err != nil {
		return nil, Resolution{}, err
	}

	g, ok := gm.Gate.(model.ApprovalGate)
	if !ok {
		return nil, Resolution{}, &model.ValidationError{Errors: []model.FieldError{{
			Field:    "metadata.gate_type",
			Value:    string(gm.Gate.Kind()),
			Expected: "approvals apply only to approval gates",
		}}}
	}

	already := false
	for _, a := range g.CurrentApprovers {
		if a == approver {
			already = true
			break
		}
	}
	if !already {
		g.CurrentApprovers = append(g.CurrentApprovers, approver)
		gm.Gate = g
		dep.Meta = gm
		if err := e.store.UpdateDependencyMeta(ctx, dep); err != nil {
			return nil, Resolution{}, err
		}
	}

	return dep, ResolveGate(g, time.Now().UTC()), nil
}

// awaitsEdge loads the awaits edge between the two elements and unwraps its
// gate metadata.
func (e *Engine) awaitsEdge(ctx context.Context, sourceID, targetID string) (*model.Dependency, model.GateMeta, error) {
	dep, err := e.store.GetDependency(ctx, sourceID, targetID, model.DepAwaits)
	if err != nil {
		return nil, model.GateMeta{}, err
	}
	gm, ok := dep.Meta.(model.GateMeta)
	if !ok || gm.Gate == nil {
		return nil, model.GateMeta{}, fmt.Errorf("awaits edge %s -> %s carries no gate metadata", sourceID, targetID)
	}
	return dep, gm, nil
}

// IsCycleError reports whether err is (or wraps) a *CycleError.
func IsCycleError(err error) bool {
	var ce *CycleError
	return errors.As(err, &ce)
}
