package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/fieldvoice/fieldvoicego/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "local.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testDraft(projectID, reportDate string) *models.Draft {
	return &models.Draft{
		ProjectID:   projectID,
		ProjectName: "Test Project",
		ReportDate:  reportDate,
		CaptureMode: models.CaptureModeMinimal,
		MinimalNotes: &models.MinimalNotes{
			FreeformNotes: "Crews placed concrete at the north abutment.",
		},
		Status: models.DraftStatusDraft,
	}
}

func TestSaveAndGetDraft(t *testing.T) {
	s := newTestStore(t)

	draft := testDraft("proj-1", "2026-08-28")
	s.SaveDraft(draft)

	got := s.GetDraft("proj-1", "2026-08-28")
	if got == nil {
		t.Fatal("GetDraft returned nil after save")
	}
	if got.MinimalNotes == nil || got.MinimalNotes.FreeformNotes != draft.MinimalNotes.FreeformNotes {
		t.Errorf("notes not round-tripped: %+v", got.MinimalNotes)
	}
	if got.LastSaved.IsZero() {
		t.Error("LastSaved not stamped on save")
	}
}

func TestGetDraftAbsent(t *testing.T) {
	s := newTestStore(t)
	if got := s.GetDraft("proj-1", "2026-08-28"); got != nil {
		t.Errorf("expected nil for absent draft, got %+v", got)
	}
}

func TestSaveDraftOverwrites(t *testing.T) {
	s := newTestStore(t)

	draft := testDraft("proj-1", "2026-08-28")
	s.SaveDraft(draft)

	draft.MinimalNotes.FreeformNotes = "Revised: pour delayed until afternoon."
	s.SaveDraft(draft)

	got := s.GetDraft("proj-1", "2026-08-28")
	if got == nil {
		t.Fatal("GetDraft returned nil")
	}
	if got.MinimalNotes.FreeformNotes != "Revised: pour delayed until afternoon." {
		t.Errorf("expected last write to win, got %q", got.MinimalNotes.FreeformNotes)
	}
}

func TestStaleDraftIsDiscarded(t *testing.T) {
	s := newTestStore(t)

	// A row stored under one key whose embedded identity points
	// elsewhere must never be surfaced.
	stale := testDraft("proj-other", "2026-08-01")
	payload := mustJSON(t, stale)
	row := models.StoredDraft{
		Key:        models.DraftKey("proj-1", "2026-08-28"),
		ProjectID:  "proj-1",
		ReportDate: "2026-08-28",
		Payload:    payload,
		LastSaved:  time.Now().UTC(),
	}
	if err := s.db.Create(&row).Error; err != nil {
		t.Fatalf("seed stale row: %v", err)
	}

	if got := s.GetDraft("proj-1", "2026-08-28"); got != nil {
		t.Fatalf("stale draft surfaced: %+v", got)
	}

	// And the stale row is gone, not just hidden.
	var count int64
	s.db.Model(&models.StoredDraft{}).Count(&count)
	if count != 0 {
		t.Errorf("stale row still present, count=%d", count)
	}
}

func TestDeleteDraftIdempotent(t *testing.T) {
	s := newTestStore(t)

	draft := testDraft("proj-1", "2026-08-28")
	s.SaveDraft(draft)

	key := draft.Key()
	s.DeleteDraft(key)
	s.DeleteDraft(key) // second delete is a no-op

	if got := s.GetDraft("proj-1", "2026-08-28"); got != nil {
		t.Errorf("draft still present after delete: %+v", got)
	}
}

func TestDebouncedSaverCoalesces(t *testing.T) {
	s := newTestStore(t)
	saver := NewDebouncedSaver(s, 30*time.Millisecond)

	draft := testDraft("proj-1", "2026-08-28")
	for i := 0; i < 5; i++ {
		draft.MinimalNotes.FreeformNotes = "edit " + string(rune('a'+i))
		saver.Save(draft)
		time.Sleep(5 * time.Millisecond)
	}

	// Nothing should be durable until the quiet interval elapses.
	if got := s.GetDraft("proj-1", "2026-08-28"); got != nil {
		t.Fatalf("draft persisted before quiet interval: %+v", got)
	}

	time.Sleep(60 * time.Millisecond)

	got := s.GetDraft("proj-1", "2026-08-28")
	if got == nil {
		t.Fatal("draft not persisted after quiet interval")
	}
	if got.MinimalNotes.FreeformNotes != "edit e" {
		t.Errorf("expected the final edit to win, got %q", got.MinimalNotes.FreeformNotes)
	}
}

func TestDebouncedSaverFlush(t *testing.T) {
	s := newTestStore(t)
	saver := NewDebouncedSaver(s, time.Hour)

	draft := testDraft("proj-1", "2026-08-28")
	saver.Save(draft)

	draft.MinimalNotes.FreeformNotes = "final text"
	saver.Flush(draft)

	got := s.GetDraft("proj-1", "2026-08-28")
	if got == nil {
		t.Fatal("flush did not persist the draft")
	}
	if got.MinimalNotes.FreeformNotes != "final text" {
		t.Errorf("flush persisted stale content: %q", got.MinimalNotes.FreeformNotes)
	}
}

func TestActiveProjectSetting(t *testing.T) {
	s := newTestStore(t)

	if got := s.ActiveProjectID(); got != "" {
		t.Errorf("expected empty active project, got %q", got)
	}
	if err := s.SetActiveProjectID("proj-9"); err != nil {
		t.Fatalf("SetActiveProjectID: %v", err)
	}
	if got := s.ActiveProjectID(); got != "proj-9" {
		t.Errorf("ActiveProjectID = %q, want proj-9", got)
	}
}
