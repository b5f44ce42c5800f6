package graph

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/loomworks/loom/internal/model"
)

func TestIsReadyNoBlockers(t *testing.T) {
	ms := newMockStore()
	ms.addElement("el-a", model.StatusOpen)

	e := New(ms)
	r, err := e.IsReady(context.Background(), "el-a")
	if err != nil {
		t.Fatalf("IsReady: %v", err)
	}
	if !r.Ready {
		t.Error("element with no incoming blocking edges must be ready")
	}
	if len(r.BlockedBy) != 0 {
		t.Errorf("BlockedBy = %v, want empty", r.BlockedBy)
	}
}

func TestIsReadyBlockedByOpenSource(t *testing.T) {
	ms := newMockStore()
	ms.addElement("el-a", model.StatusOpen)
	ms.addElement("el-b", model.StatusOpen)
	ms.addDep("el-a", "el-b", model.DepBlocks, nil)

	e := New(ms)
	r, err := e.IsReady(context.Background(), "el-b")
	if err != nil {
		t.Fatalf("IsReady: %v", err)
	}
	if r.Ready {
		t.Fatal("el-b is blocked by open el-a")
	}
	if len(r.BlockedBy) != 1 {
		t.Fatalf("BlockedBy = %v, want one blocker", r.BlockedBy)
	}
	if r.BlockedBy[0].Edge.SourceID != "el-a" {
		t.Errorf("blocker source = %s, want el-a", r.BlockedBy[0].Edge.SourceID)
	}
}

func TestIsReadyTerminalSourceResolves(t *testing.T) {
	ms := newMockStore()
	ms.addElement("el-a", model.StatusCompleted)
	ms.addElement("el-c", model.StatusCancelled)
	ms.addElement("el-b", model.StatusOpen)
	ms.addDep("el-a", "el-b", model.DepBlocks, nil)
	ms.addDep("el-c", "el-b", model.DepParentChild, nil)

	e := New(ms)
	r, err := e.IsReady(context.Background(), "el-b")
	if err != nil {
		t.Fatalf("IsReady: %v", err)
	}
	if !r.Ready {
		t.Errorf("both sources are terminal, want ready; blockers: %v", r.BlockedBy)
	}
}

func TestIsReadyCompletionUnblocks(t *testing.T) {
	ms := newMockStore()
	ms.addElement("el-a", model.StatusInProgress)
	ms.addElement("el-b", model.StatusOpen)
	ms.addDep("el-a", "el-b", model.DepBlocks, nil)

	e := New(ms)
	ctx := context.Background()

	r, err := e.IsReady(ctx, "el-b")
	if err != nil {
		t.Fatalf("IsReady: %v", err)
	}
	if r.Ready {
		t.Fatal("want blocked while el-a is in progress")
	}

	if _, err := ms.SetElementStatus(ctx, "el-a", model.StatusCompleted, "test"); err != nil {
		t.Fatalf("SetElementStatus: %v", err)
	}
	r, err = e.IsReady(ctx, "el-b")
	if err != nil {
		t.Fatalf("IsReady: %v", err)
	}
	if !r.Ready {
		t.Error("readiness must be recomputed from current status")
	}
}

func TestIsReadyAwaitsGate(t *testing.T) {
	ms := newMockStore()
	ms.addElement("el-gate", model.StatusOpen)
	ms.addElement("el-b", model.StatusOpen)
	ms.addDep("el-gate", "el-b", model.DepAwaits, model.GateMeta{Gate: model.TimerGate{
		WaitUntil: time.Now().UTC().Add(time.Hour),
	}})

	e := New(ms)
	ctx := context.Background()

	r, err := e.IsReady(ctx, "el-b")
	if err != nil {
		t.Fatalf("IsReady: %v", err)
	}
	if r.Ready {
		t.Fatal("timer gate an hour out must block")
	}

	// An expired timer resolves regardless of the source's status.
	ms.addDep("el-gate", "el-b", model.DepAwaits, model.GateMeta{Gate: model.TimerGate{
		WaitUntil: time.Now().UTC().Add(-time.Hour),
	}})
	r, err = e.IsReady(ctx, "el-b")
	if err != nil {
		t.Fatalf("IsReady: %v", err)
	}
	if !r.Ready {
		t.Errorf("expired timer must not block; blockers: %v", r.BlockedBy)
	}
}

func TestIsReadyMalformedGateFailsClosed(t *testing.T) {
	ms := newMockStore()
	ms.addElement("el-a", model.StatusCompleted)
	ms.addElement("el-b", model.StatusOpen)
	// awaits edge without gate metadata: treated as unsatisfied, not an error.
	ms.addDep("el-a", "el-b", model.DepAwaits, nil)

	e := New(ms)
	r, err := e.IsReady(context.Background(), "el-b")
	if err != nil {
		t.Fatalf("IsReady: %v", err)
	}
	if r.Ready {
		t.Fatal("malformed gate must fail closed")
	}
	if !strings.Contains(r.BlockedBy[0].Reason, "malformed") {
		t.Errorf("reason = %q, want integrity reason", r.BlockedBy[0].Reason)
	}
}

func TestIsReadyIgnoresAssociativeEdges(t *testing.T) {
	ms := newMockStore()
	ms.addElement("el-a", model.StatusOpen)
	ms.addElement("el-b", model.StatusOpen)
	ms.addDep("el-a", "el-b", model.DepReferences, nil)
	ms.addDep("el-a", "el-b", model.DepRelatesTo, nil)

	e := New(ms)
	r, err := e.IsReady(context.Background(), "el-b")
	if err != nil {
		t.Fatalf("IsReady: %v", err)
	}
	if !r.Ready {
		t.Errorf("associative edges never block; blockers: %v", r.BlockedBy)
	}
}

func TestListReadyAndBlocked(t *testing.T) {
	ms := newMockStore()
	ms.addElement("el-done", model.StatusCompleted)
	ms.addElement("el-free", model.StatusOpen)
	ms.addElement("el-held", model.StatusOpen)
	ms.addElement("el-blocker", model.StatusInProgress)
	ms.addDep("el-blocker", "el-held", model.DepBlocks, nil)

	e := New(ms)
	ctx := context.Background()

	ready, err := e.ListReady(ctx, 0)
	if err != nil {
		t.Fatalf("ListReady: %v", err)
	}
	if len(ready) != 1 || ready[0].ID != "el-free" {
		ids := make([]string, 0, len(ready))
		for _, el := range ready {
			ids = append(ids, el.ID)
		}
		t.Errorf("ready = %v, want [el-free]", ids)
	}

	blocked, err := e.ListBlocked(ctx, 0)
	if err != nil {
		t.Fatalf("ListBlocked: %v", err)
	}
	if len(blocked) != 1 || blocked[0].Element.ID != "el-held" {
		t.Fatalf("blocked = %v, want el-held only", blocked)
	}
	if len(blocked[0].BlockedBy) != 1 {
		t.Errorf("el-held blockers = %v, want one", blocked[0].BlockedBy)
	}
}
