package snapshot

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

// mockDestination records writes.
type mockDestination struct {
	writes atomic.Int64
	last   atomic.Value // []byte
	err    error
}

func (d *mockDestination) Write(_ context.Context, data []byte) error {
	if d.err != nil {
		return d.err
	}
	d.writes.Add(1)
	d.last.Store(data)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSchedulerStartStop(t *testing.T) {
	ms := newMockStore()
	dest := &mockDestination{}

	s := NewScheduler(ms, []Destination{dest}, 50*time.Millisecond, discardLogger())
	s.Start()

	// Wait for the initial export plus at least one tick.
	time.Sleep(150 * time.Millisecond)
	s.Stop()

	n := dest.writes.Load()
	if n < 2 {
		t.Errorf("expected at least 2 writes (initial + tick), got %d", n)
	}

	// The payload should be valid JSONL with a header line.
	data, _ := dest.last.Load().([]byte)
	lines := nonEmptyLines(string(data))
	if len(lines) != 1 {
		t.Errorf("expected header-only export for empty store, got %d lines", len(lines))
	}
}

func TestSchedulerStopWithoutStart(t *testing.T) {
	s := NewScheduler(newMockStore(), nil, time.Minute, discardLogger())
	s.Stop() // must not panic or block
}

func TestSchedulerMultipleDestinations(t *testing.T) {
	ms := newMockStore()
	d1 := &mockDestination{}
	d2 := &mockDestination{}

	s := NewScheduler(ms, []Destination{d1, d2}, time.Hour, discardLogger())
	s.Start()
	time.Sleep(50 * time.Millisecond)
	s.Stop()

	if d1.writes.Load() < 1 {
		t.Error("first destination never written")
	}
	if d2.writes.Load() < 1 {
		t.Error("second destination never written")
	}
}

func TestSchedulerDestinationErrorDoesNotStopOthers(t *testing.T) {
	ms := newMockStore()
	failing := &mockDestination{err: context.DeadlineExceeded}
	ok := &mockDestination{}

	s := NewScheduler(ms, []Destination{failing, ok}, time.Hour, discardLogger())
	s.Start()
	time.Sleep(50 * time.Millisecond)
	s.Stop()

	if ok.writes.Load() < 1 {
		t.Error("healthy destination skipped after a failing one")
	}
}
