package graph

import (
	"context"

	"github.com/loomworks/loom/internal/model"
)

// TreeNode is one element in a dependency tree. Via is the edge type that
// linked this node to its parent (empty on the root). Ref marks a node that
// was already expanded elsewhere in the tree and appears here as a leaf
// reference only, so no edge is lost and no subtree is duplicated.
type TreeNode struct {
	ID           string               `json:"id"`
	Via          model.DependencyType `json:"via,omitempty"`
	Ref          bool                 `json:"ref,omitempty"`
	Dependencies []*TreeNode          `json:"dependencies,omitempty"` // blocking predecessors: what this waits on
	Dependents   []*TreeNode          `json:"dependents,omitempty"`   // blocking successors: what waits on this
	Related      []*TreeNode          `json:"related,omitempty"`      // non-blocking neighbors, never recursed
}

// Tree is the bidirectional dependency tree for one root element, consumed
// by visualization layers that lay nodes out per depth level.
type Tree struct {
	Root            *TreeNode `json:"root"`
	DependencyDepth int       `json:"dependency_depth"`
	DependentDepth  int       `json:"dependent_depth"`
	NodeCount       int       `json:"node_count"`
}

// BuildTree materializes the subgraph around rootID: dependencies
// (blocking-category predecessors via incoming edges, recursively) and
// dependents (blocking successors via outgoing edges, recursively).
// Non-blocking neighbors are attached as leaf references and never
// recursed, so associative rings cannot cause unbounded traversal. maxDepth
// bounds recursion in either direction; zero or negative means unbounded.
// Termination is guaranteed by a shared visited set keyed by element id.
func (e *Engine) BuildTree(ctx context.Context, rootID string, maxDepth int) (*Tree, error) {
	if _, err := e.store.ElementStatus(ctx, rootID); err != nil {
		return nil, err
	}

	w := &treeWalk{
		engine:   e,
		maxDepth: maxDepth,
		seen:     map[string]bool{rootID: true},
		expanded: map[string]bool{rootID: true},
		linked:   map[string]bool{},
	}
	root := &TreeNode{ID: rootID}

	depDepth, err := w.expand(ctx, root, directionUp, 0)
	if err != nil {
		return nil, err
	}
	depdDepth, err := w.expand(ctx, root, directionDown, 0)
	if err != nil {
		return nil, err
	}

	return &Tree{
		Root:            root,
		DependencyDepth: depDepth,
		DependentDepth:  depdDepth,
		NodeCount:       len(w.seen),
	}, nil
}

type treeDirection int

const (
	directionUp   treeDirection = iota // toward dependencies (incoming edges)
	directionDown                      // toward dependents (outgoing edges)
)

type treeWalk struct {
	engine   *Engine
	maxDepth int
	seen     map[string]bool // every distinct element id appearing in the tree
	expanded map[string]bool // ids whose adjacency has been walked
	linked   map[string]bool // ids whose associative neighbors are attached
}

// expand walks one direction from n and returns the deepest blocking level
// reached (the root is level 0). Edges mutating mid-walk surface as a node
// simply missing from the snapshot, not as a crash.
func (w *treeWalk) expand(ctx context.Context, n *TreeNode, dir treeDirection, depth int) (int, error) {
	if w.maxDepth > 0 && depth >= w.maxDepth {
		return depth, nil
	}

	incoming, err := w.engine.store.Incoming(ctx, n.ID)
	if err != nil {
		return 0, err
	}
	outgoing, err := w.engine.store.Outgoing(ctx, n.ID)
	if err != nil {
		return 0, err
	}

	// Associative neighbors sit on either side of the node regardless of
	// the direction being walked; relates-to rows in particular store the
	// smaller id as the source, so a one-sided scan misses half a ring.
	if !w.linked[n.ID] {
		w.linked[n.ID] = true
		for _, side := range [2][]*model.Dependency{incoming, outgoing} {
			for _, d := range side {
				if d.Type.Blocking() {
					continue
				}
				neighborID := d.SourceID
				if neighborID == n.ID {
					neighborID = d.TargetID
				}
				w.seen[neighborID] = true
				n.Related = append(n.Related, &TreeNode{ID: neighborID, Via: d.Type})
			}
		}
	}

	edges := incoming
	if dir == directionDown {
		edges = outgoing
	}

	deepest := depth
	for _, d := range edges {
		if !d.Type.Blocking() {
			continue
		}
		childID := d.SourceID
		if dir == directionDown {
			childID = d.TargetID
		}
		child := &TreeNode{ID: childID, Via: d.Type}

		if w.expanded[childID] {
			child.Ref = true
			w.attach(n, child, dir)
			if depth+1 > deepest {
				deepest = depth + 1
			}
			continue
		}
		w.seen[childID] = true
		w.expanded[childID] = true
		w.attach(n, child, dir)

		dd, err := w.expand(ctx, child, dir, depth+1)
		if err != nil {
			return 0, err
		}
		if dd > deepest {
			deepest = dd
		}
	}
	return deepest, nil
}

func (w *treeWalk) attach(parent, child *TreeNode, dir treeDirection) {
	if dir == directionUp {
		parent.Dependencies = append(parent.Dependencies, child)
	} else {
		parent.Dependents = append(parent.Dependents, child)
	}
}
