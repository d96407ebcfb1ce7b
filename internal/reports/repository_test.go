package reports

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/fieldvoice/fieldvoicego/internal/models"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Project{}, &models.Contractor{}, &models.ProjectSetItem{},
		&models.Report{}, &models.AIRequest{}, &models.AIResponse{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewRepository(db)
}

func syncableDraft(projectID, reportDate string) *models.Draft {
	return &models.Draft{
		ProjectID:   projectID,
		ReportDate:  reportDate,
		CaptureMode: models.CaptureModeMinimal,
		MinimalNotes: &models.MinimalNotes{
			FreeformNotes: "Subgrade compaction on station 12+00.",
		},
	}
}

func TestLocateOrCreateIsIdempotent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	draft := syncableDraft("proj-1", "2026-08-28")

	first, err := repo.LocateOrCreate(ctx, draft)
	if err != nil {
		t.Fatalf("LocateOrCreate: %v", err)
	}
	if first.Status != models.ReportStatusPendingRefine {
		t.Errorf("status = %s, want pending_refine", first.Status)
	}
	if len(first.RawCapture) == 0 {
		t.Error("raw capture not attached")
	}

	second, err := repo.LocateOrCreate(ctx, draft)
	if err != nil {
		t.Fatalf("second LocateOrCreate: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("second call created a new row: %s != %s", second.ID, first.ID)
	}

	var count int64
	repo.db.Model(&models.Report{}).Count(&count)
	if count != 1 {
		t.Errorf("report rows = %d, want 1", count)
	}
}

func TestLocateOrCreateSurvivesInsertRace(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	// Another device already created the row.
	winner := models.Report{ProjectID: "proj-1", ReportDate: "2026-08-28", Status: models.ReportStatusRefined}
	if err := repo.db.Create(&winner).Error; err != nil {
		t.Fatalf("seed winner: %v", err)
	}

	got, err := repo.LocateOrCreate(ctx, syncableDraft("proj-1", "2026-08-28"))
	if err != nil {
		t.Fatalf("LocateOrCreate: %v", err)
	}
	if got.ID != winner.ID {
		t.Errorf("expected the winner's row back, got %s", got.ID)
	}
	if got.Status != models.ReportStatusRefined {
		t.Errorf("winner's status clobbered: %s", got.Status)
	}
}

func TestSaveGenerated(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	report, err := repo.LocateOrCreate(ctx, syncableDraft("proj-1", "2026-08-28"))
	if err != nil {
		t.Fatalf("LocateOrCreate: %v", err)
	}

	generated := map[string]string{"executiveSummary": "Compaction complete."}
	if err := repo.SaveGenerated(ctx, report.ID, generated); err != nil {
		t.Fatalf("SaveGenerated: %v", err)
	}

	got, err := repo.Get(ctx, report.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != models.ReportStatusRefined {
		t.Errorf("status = %s, want refined", got.Status)
	}
	var roundTrip map[string]string
	if err := json.Unmarshal(got.AIGenerated, &roundTrip); err != nil {
		t.Fatalf("unmarshal generated: %v", err)
	}
	if roundTrip["executiveSummary"] != "Compaction complete." {
		t.Errorf("generated content = %v", roundTrip)
	}
}

func TestSaveGeneratedUnknownReport(t *testing.T) {
	repo := newTestRepo(t)
	if err := repo.SaveGenerated(context.Background(), "no-such-id", map[string]string{}); err == nil {
		t.Fatal("expected error for unknown report")
	}
}

func TestMarkSubmittedOnlyFromRefined(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	report, _ := repo.LocateOrCreate(ctx, syncableDraft("proj-1", "2026-08-28"))

	// pending_refine cannot be submitted
	if err := repo.MarkSubmitted(ctx, report.ID); err == nil {
		t.Fatal("expected error submitting a pending_refine report")
	}

	if err := repo.SaveGenerated(ctx, report.ID, map[string]string{"executiveSummary": "ok"}); err != nil {
		t.Fatalf("SaveGenerated: %v", err)
	}
	if err := repo.MarkSubmitted(ctx, report.ID); err != nil {
		t.Fatalf("MarkSubmitted: %v", err)
	}

	got, _ := repo.Get(ctx, report.ID)
	if got.Status != models.ReportStatusSubmitted {
		t.Errorf("status = %s, want submitted", got.Status)
	}
	if got.SubmittedAt == nil || got.SubmittedAt.IsZero() {
		t.Error("SubmittedAt not stamped")
	}

	// submitting twice fails: the row is no longer refined
	if err := repo.MarkSubmitted(ctx, report.ID); err == nil {
		t.Fatal("expected error submitting twice")
	}
}

func TestRecordAIResponseUpserts(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	report, _ := repo.LocateOrCreate(ctx, syncableDraft("proj-1", "2026-08-28"))

	if err := repo.RecordAIResponse(ctx, report.ID, "webhook", map[string]string{"v": "first"}, 1200*time.Millisecond); err != nil {
		t.Fatalf("first RecordAIResponse: %v", err)
	}
	if err := repo.RecordAIResponse(ctx, report.ID, "webhook", map[string]string{"v": "second"}, 900*time.Millisecond); err != nil {
		t.Fatalf("second RecordAIResponse: %v", err)
	}

	var rows []models.AIResponse
	repo.db.Where("report_id = ?", report.ID).Find(&rows)
	if len(rows) != 1 {
		t.Fatalf("response rows = %d, want 1 (upsert)", len(rows))
	}
	var payload map[string]string
	json.Unmarshal(rows[0].ResponsePayload, &payload)
	if payload["v"] != "second" {
		t.Errorf("retry did not overwrite: %v", payload)
	}
	if rows[0].ProcessingTimeMs != 900 {
		t.Errorf("ProcessingTimeMs = %d", rows[0].ProcessingTimeMs)
	}
}

func TestSummariesProjection(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	repo.LocateOrCreate(ctx, syncableDraft("proj-1", "2026-08-27"))
	repo.LocateOrCreate(ctx, syncableDraft("proj-2", "2026-08-28"))

	summaries, err := repo.Summaries(ctx)
	if err != nil {
		t.Fatalf("Summaries: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("summaries = %d, want 2", len(summaries))
	}
	for _, s := range summaries {
		if s.ID == "" || s.ProjectID == "" || s.ReportDate == "" || !s.Status.IsValid() {
			t.Errorf("incomplete summary: %+v", s)
		}
	}
}

func TestProjectsFiltersInactive(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	active := models.Project{Name: "Active Project", IsActive: true,
		Contractors: []models.Contractor{{Name: "Crew A", IsActive: true}}}
	inactive := models.Project{Name: "Closed Project"}
	if err := repo.db.Create(&active).Error; err != nil {
		t.Fatalf("seed active: %v", err)
	}
	if err := repo.db.Create(&inactive).Error; err != nil {
		t.Fatalf("seed inactive: %v", err)
	}
	// the zero value would be swallowed by the column default on insert
	if err := repo.db.Model(&inactive).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	projects, err := repo.Projects(ctx)
	if err != nil {
		t.Fatalf("Projects: %v", err)
	}
	if len(projects) != 1 || projects[0].Name != "Active Project" {
		t.Errorf("projects = %+v", projects)
	}
	if len(projects[0].Contractors) != 1 {
		t.Errorf("contractor roster not preloaded: %+v", projects[0].Contractors)
	}

	got, err := repo.Project(ctx, "missing")
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for unknown project, got %+v", got)
	}
}
