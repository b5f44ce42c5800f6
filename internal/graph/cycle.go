package graph

import (
	"context"

	"github.com/loomworks/loom/internal/model"
	"github.com/loomworks/loom/internal/store"
)

// WouldCreateCycle reports whether inserting source->target as an edge of
// the given type would close a directed loop in the blocking-category
// subgraph. Non-blocking types never participate: the answer is false
// without touching the store. The check is category-wide: a blocks edge, a
// parent-child edge, and an awaits edge all feed the same acyclicity
// constraint.
func (e *Engine) WouldCreateCycle(ctx context.Context, sourceID, targetID string, depType model.DependencyType) (bool, error) {
	if !depType.Blocking() {
		return false, nil
	}
	return wouldCreateCycle(ctx, e.store, sourceID, targetID)
}

// wouldCreateCycle walks outgoing blocking edges from target looking for
// source: if target already reaches source, adding source->target closes a
// loop. The visited set guarantees termination; the blocking subgraph is
// acyclic by construction but diamonds are common.
func wouldCreateCycle(ctx context.Context, s store.Store, sourceID, targetID string) (bool, error) {
	visited := map[string]bool{targetID: true}
	queue := []string{targetID}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if id == sourceID {
			return true, nil
		}

		edges, err := s.Outgoing(ctx, id, model.BlockingTypes()...)
		if err != nil {
			return false, err
		}
		for _, d := range edges {
			if !visited[d.TargetID] {
				visited[d.TargetID] = true
				queue = append(queue, d.TargetID)
			}
		}
	}
	return false, nil
}
