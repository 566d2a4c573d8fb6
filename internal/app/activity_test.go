package app

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeActivityService struct {
	batches [][]ActivityRecord
	fail    bool
}

func (f *fakeActivityService) TrackActivity(_ context.Context, records []ActivityRecord) error {
	if f.fail {
		return errors.New("delivery refused")
	}
	batch := make([]ActivityRecord, len(records))
	copy(batch, records)
	f.batches = append(f.batches, batch)
	return nil
}

func newTestBatcher(svc ActivityService) (*Batcher, *manualScheduler) {
	sched := &manualScheduler{}
	b := NewBatcher(svc, sched, 10*time.Second, 5, NopLogger())
	return b, sched
}

func TestBatcherFlushesAtThresholdWithoutTimer(t *testing.T) {
	svc := &fakeActivityService{}
	b, _ := newTestBatcher(svc)

	for i := 0; i < 4; i++ {
		b.Track("page_view", "", "")
	}
	if len(svc.batches) != 0 {
		t.Fatalf("flushed before threshold")
	}
	b.Track("page_view", "", "")
	if len(svc.batches) != 1 {
		t.Fatalf("expected one flush, got %d", len(svc.batches))
	}
	if len(svc.batches[0]) != 5 {
		t.Fatalf("flush carried %d records, want 5", len(svc.batches[0]))
	}
	if b.Pending() != 0 {
		t.Fatalf("queue not cleared after flush")
	}
}

func TestBatcherTimerFlushesPartialQueue(t *testing.T) {
	svc := &fakeActivityService{}
	b, sched := newTestBatcher(svc)

	for i := 0; i < 4; i++ {
		b.Track("page_view", "", "")
	}
	sched.tick(10 * time.Second)

	if len(svc.batches) != 1 {
		t.Fatalf("expected exactly one flush, got %d", len(svc.batches))
	}
	if len(svc.batches[0]) != 4 {
		t.Fatalf("flush carried %d records, want 4", len(svc.batches[0]))
	}
}

func TestBatcherEmptyQueueTimerDoesNotDeliver(t *testing.T) {
	svc := &fakeActivityService{}
	_, sched := newTestBatcher(svc)
	sched.tick(10 * time.Second)
	if len(svc.batches) != 0 {
		t.Fatalf("empty flush delivered %d batches", len(svc.batches))
	}
}

func TestBatcherRequeuesOnDeliveryFailure(t *testing.T) {
	svc := &fakeActivityService{fail: true}
	b, sched := newTestBatcher(svc)

	b.Track("paper_generated", "graphs", "s1")
	b.Track("page_view", "", "s1")
	sched.tick(10 * time.Second)

	if b.Pending() != 2 {
		t.Fatalf("failed batch dropped, pending = %d", b.Pending())
	}

	// Events tracked between flush and failure stay behind the requeued batch.
	b.Track("page_view", "", "s2")
	svc.fail = false
	sched.tick(10 * time.Second)

	if len(svc.batches) != 1 {
		t.Fatalf("expected one successful flush, got %d", len(svc.batches))
	}
	got := svc.batches[0]
	if len(got) != 3 {
		t.Fatalf("redelivery carried %d records, want 3", len(got))
	}
	if got[0].Type != "paper_generated" || got[2].SessionID != "s2" {
		t.Fatalf("requeue order wrong: %+v", got)
	}
	if b.Pending() != 0 {
		t.Fatalf("queue not drained after redelivery")
	}
}

func TestBatcherCloseStopsTimerAndFlushes(t *testing.T) {
	svc := &fakeActivityService{}
	b, sched := newTestBatcher(svc)

	b.Track("page_view", "", "")
	b.Close()

	if len(svc.batches) != 1 {
		t.Fatalf("close did not flush")
	}
	if n := sched.activeCount(10 * time.Second); n != 0 {
		t.Fatalf("flush timer still active after Close")
	}
}

func TestBatcherStampsRecords(t *testing.T) {
	svc := &fakeActivityService{}
	b, _ := newTestBatcher(svc)
	b.Track("paper_generated", "graph coloring", "s1")
	b.Flush()

	rec := svc.batches[0][0]
	if rec.ID == "" {
		t.Fatalf("record id missing")
	}
	if rec.Timestamp.IsZero() {
		t.Fatalf("record timestamp missing")
	}
	if rec.Type != "paper_generated" || rec.Details != "graph coloring" || rec.SessionID != "s1" {
		t.Fatalf("record fields %+v", rec)
	}
}
