package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/loomworks/loom/internal/model"
)

func TestExportJSONL_Empty(t *testing.T) {
	ms := newMockStore()
	var buf bytes.Buffer
	if err := ExportJSONL(context.Background(), ms, &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := nonEmptyLines(buf.String())
	if len(lines) != 1 {
		t.Fatalf("expected 1 line (header only), got %d", len(lines))
	}

	var h header
	if err := json.Unmarshal([]byte(lines[0]), &h); err != nil {
		t.Fatalf("unmarshal header: %v", err)
	}
	if h.Version != "1" || h.Type != "header" || h.ElementCount != 0 || h.DependencyCount != 0 {
		t.Fatalf("unexpected header: %+v", h)
	}
}

func TestExportJSONL_WithElementsAndEdges(t *testing.T) {
	ms := newMockStore()
	now := time.Now().UTC()

	// Add elements out of ID order to verify sorting.
	ms.elements["el-zzz"] = &model.Element{ID: "el-zzz", Type: model.TypeTask, Title: "Second", Status: model.StatusOpen, CreatedAt: now, UpdatedAt: now}
	ms.elements["el-aaa"] = &model.Element{ID: "el-aaa", Type: model.TypeDocument, Title: "First", Status: model.StatusOpen, CreatedAt: now, UpdatedAt: now}

	ms.deps = append(ms.deps, &model.Dependency{
		SourceID: "el-aaa", TargetID: "el-zzz", Type: model.DepBlocks, CreatedAt: now, CreatedBy: "alice",
	})

	var buf bytes.Buffer
	if err := ExportJSONL(context.Background(), ms, &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := nonEmptyLines(buf.String())
	// 1 header + 2 elements + 1 dependency = 4 lines
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d:\n%s", len(lines), buf.String())
	}

	// Verify header.
	var h header
	if err := json.Unmarshal([]byte(lines[0]), &h); err != nil {
		t.Fatalf("unmarshal header: %v", err)
	}
	if h.ElementCount != 2 || h.DependencyCount != 1 {
		t.Fatalf("header counts: element=%d dependency=%d", h.ElementCount, h.DependencyCount)
	}

	// Verify elements are sorted by ID (el-aaa before el-zzz).
	var rec1, rec2 record
	if err := json.Unmarshal([]byte(lines[1]), &rec1); err != nil {
		t.Fatalf("unmarshal line 1: %v", err)
	}
	if err := json.Unmarshal([]byte(lines[2]), &rec2); err != nil {
		t.Fatalf("unmarshal line 2: %v", err)
	}
	if rec1.Type != "element" || rec2.Type != "element" {
		t.Fatalf("expected element types, got %q and %q", rec1.Type, rec2.Type)
	}

	data1, _ := json.Marshal(rec1.Data)
	data2, _ := json.Marshal(rec2.Data)
	var e1, e2 model.Element
	if err := json.Unmarshal(data1, &e1); err != nil {
		t.Fatalf("unmarshal e1: %v", err)
	}
	if err := json.Unmarshal(data2, &e2); err != nil {
		t.Fatalf("unmarshal e2: %v", err)
	}
	if e1.ID != "el-aaa" || e2.ID != "el-zzz" {
		t.Fatalf("elements not sorted: got %q, %q", e1.ID, e2.ID)
	}

	// Verify dependency line.
	var rec3 record
	if err := json.Unmarshal([]byte(lines[3]), &rec3); err != nil {
		t.Fatalf("unmarshal line 3: %v", err)
	}
	if rec3.Type != "dependency" {
		t.Fatalf("expected dependency type, got %q", rec3.Type)
	}
	data3, _ := json.Marshal(rec3.Data)
	var d model.Dependency
	if err := json.Unmarshal(data3, &d); err != nil {
		t.Fatalf("unmarshal dependency: %v", err)
	}
	if d.SourceID != "el-aaa" || d.TargetID != "el-zzz" || d.Type != model.DepBlocks {
		t.Fatalf("unexpected dependency: %+v", d)
	}
}

func TestExportJSONL_GateMetadataSurvives(t *testing.T) {
	ms := newMockStore()
	now := time.Now().UTC()
	wait := now.Add(time.Hour).Truncate(time.Second)

	ms.elements["el-a"] = &model.Element{ID: "el-a", Type: model.TypeTask, Title: "A", Status: model.StatusOpen, CreatedAt: now, UpdatedAt: now}
	ms.elements["el-b"] = &model.Element{ID: "el-b", Type: model.TypeTask, Title: "B", Status: model.StatusOpen, CreatedAt: now, UpdatedAt: now}
	ms.deps = append(ms.deps, &model.Dependency{
		SourceID: "el-a", TargetID: "el-b", Type: model.DepAwaits, CreatedAt: now,
		Meta: model.GateMeta{Gate: model.TimerGate{WaitUntil: wait}},
	})

	var buf bytes.Buffer
	if err := ExportJSONL(context.Background(), ms, &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := nonEmptyLines(buf.String())
	var rec record
	if err := json.Unmarshal([]byte(lines[3]), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	data, _ := json.Marshal(rec.Data)
	var d model.Dependency
	if err := json.Unmarshal(data, &d); err != nil {
		t.Fatalf("unmarshal dependency: %v", err)
	}
	gm, ok := d.Meta.(model.GateMeta)
	if !ok {
		t.Fatalf("Meta = %T, want GateMeta", d.Meta)
	}
	tg, ok := gm.Gate.(model.TimerGate)
	if !ok {
		t.Fatalf("Gate = %T, want TimerGate", gm.Gate)
	}
	if !tg.WaitUntil.Equal(wait) {
		t.Errorf("WaitUntil = %v, want %v", tg.WaitUntil, wait)
	}
}

func nonEmptyLines(s string) []string {
	var result []string
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			result = append(result, line)
		}
	}
	return result
}
