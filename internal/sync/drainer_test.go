package sync

import (
	"context"
	"errors"
	"testing"

	"github.com/fieldvoice/fieldvoicego/internal/models"
	"github.com/fieldvoice/fieldvoicego/internal/refine"
)

func enqueueValid(t *testing.T, rig *testRig, projectID, reportDate string) *models.QueueEntry {
	t.Helper()
	draft := validDraft(projectID, reportDate)
	payload := refine.BuildPayload(draft, nil, "J. Inspector")
	entry, err := rig.store.Enqueue(draft, payload, models.DraftStatusPendingSync, "")
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	return entry
}

func TestDrainOfflineShortCircuits(t *testing.T) {
	rig := newTestRig(t)
	rig.checker.online = false
	enqueueValid(t, rig, "proj-1", "2026-08-27")
	enqueueValid(t, rig, "proj-1", "2026-08-28")

	result := rig.drainer.Drain(context.Background())
	if !result.Skipped {
		t.Fatalf("result = %+v, want skipped", result)
	}
	if rig.refiner.calls != 0 {
		t.Errorf("refiner called %d times while offline", rig.refiner.calls)
	}
	if depth := rig.store.QueueDepth(); depth != 2 {
		t.Errorf("queue depth = %d, want 2 (untouched)", depth)
	}
}

func TestDrainSyncsAllPending(t *testing.T) {
	rig := newTestRig(t)
	enqueueValid(t, rig, "proj-1", "2026-08-26")
	enqueueValid(t, rig, "proj-1", "2026-08-27")
	enqueueValid(t, rig, "proj-2", "2026-08-27")

	result := rig.drainer.Drain(context.Background())
	if result.Synced != 3 || result.Failed != 0 {
		t.Fatalf("result = %+v", result)
	}
	if depth := rig.store.QueueDepth(); depth != 0 {
		t.Errorf("queue depth = %d after drain", depth)
	}

	summaries, _ := rig.repo.Summaries(context.Background())
	if len(summaries) != 3 {
		t.Errorf("remote reports = %d, want 3", len(summaries))
	}
}

func TestDrainFailureKeepsEntryWithError(t *testing.T) {
	rig := newTestRig(t)
	entry := enqueueValid(t, rig, "proj-1", "2026-08-28")
	rig.refiner.err = errors.New("refine webhook returned 503: maintenance")

	result := rig.drainer.Drain(context.Background())
	if result.Synced != 0 || result.Failed != 1 {
		t.Fatalf("result = %+v", result)
	}

	got, err := rig.store.QueueEntry(entry.ID)
	if err != nil || got == nil {
		t.Fatalf("entry gone after failed drain: %v", err)
	}
	if got.Status != models.DraftStatusSyncFailed {
		t.Errorf("status = %s, want sync_failed", got.Status)
	}
	if got.ErrorMessage == "" {
		t.Error("failure reason not recorded")
	}

	// Each entry gets exactly one attempt per pass.
	if rig.refiner.calls != 1 {
		t.Errorf("refiner calls = %d, want 1", rig.refiner.calls)
	}
}

func TestDrainRetriesFailedEntriesNextPass(t *testing.T) {
	rig := newTestRig(t)
	entry := enqueueValid(t, rig, "proj-1", "2026-08-28")

	rig.refiner.err = errors.New("transient network error")
	first := rig.drainer.Drain(context.Background())
	if first.Failed != 1 {
		t.Fatalf("first pass = %+v", first)
	}

	// Backend recovers; the failed entry drains on the next pass.
	rig.refiner.err = nil
	second := rig.drainer.Drain(context.Background())
	if second.Synced != 1 || second.Failed != 0 {
		t.Fatalf("second pass = %+v", second)
	}
	if got, _ := rig.store.QueueEntry(entry.ID); got != nil {
		t.Errorf("entry still queued after successful retry: %+v", got)
	}
}

func TestDrainOverlapGuard(t *testing.T) {
	rig := newTestRig(t)

	// Simulate a pass already holding the guard.
	rig.drainer.mu.Lock()
	rig.drainer.inProgress = true
	rig.drainer.mu.Unlock()

	enqueueValid(t, rig, "proj-1", "2026-08-28")
	result := rig.drainer.Drain(context.Background())
	if !result.Skipped {
		t.Fatalf("overlapping drain not skipped: %+v", result)
	}
	if rig.refiner.calls != 0 {
		t.Error("overlapping drain touched the queue")
	}
}
