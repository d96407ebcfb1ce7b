package refine

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/fieldvoice/fieldvoicego/internal/models"
)

func minimalDraft() *models.Draft {
	return &models.Draft{
		ProjectID:   "proj-1",
		ProjectName: "Draft-side Name",
		ReportDate:  "2026-08-28",
		CaptureMode: models.CaptureModeMinimal,
		MinimalNotes: &models.MinimalNotes{
			FreeformNotes: "Crews set forms for the east wall.",
		},
	}
}

func TestBuildPayloadMinimal(t *testing.T) {
	draft := minimalDraft()
	payload := BuildPayload(draft, nil, "J. Inspector")

	if payload.ReportID != "proj-1_2026-08-28" {
		t.Errorf("ReportID = %q", payload.ReportID)
	}
	if payload.CaptureMode != models.CaptureModeMinimal {
		t.Errorf("CaptureMode = %q", payload.CaptureMode)
	}
	if payload.FieldNotes.FreeformNotes != draft.MinimalNotes.FreeformNotes {
		t.Errorf("FreeformNotes = %q", payload.FieldNotes.FreeformNotes)
	}
	if payload.FieldNotes.WorkSummary != "" {
		t.Error("guided fields must stay empty in minimal mode")
	}
	if payload.InspectorName != "J. Inspector" {
		t.Errorf("InspectorName = %q", payload.InspectorName)
	}
	// Collections are always present, never null on the wire.
	if payload.Photos == nil || payload.ProjectContext.Contractors == nil || payload.ProjectContext.Equipment == nil {
		t.Error("collections must be non-nil")
	}
	// Without master data the draft's own project name carries over.
	if payload.ProjectContext.ProjectName != "Draft-side Name" {
		t.Errorf("ProjectName = %q", payload.ProjectContext.ProjectName)
	}
}

func TestBuildPayloadGuidedWithProject(t *testing.T) {
	draft := &models.Draft{
		ProjectID:   "proj-1",
		ReportDate:  "2026-08-28",
		CaptureMode: models.CaptureModeGuided,
		GuidedNotes: &models.GuidedNotes{
			WorkSummary: "Paving continued on taxiway B.",
			Issues:      "Milling machine down two hours.",
			Safety:      "Toolbox talk held, no incidents.",
		},
		Photos: []models.PhotoMeta{
			{ID: "ph-1", Caption: "East wall forms", Timestamp: time.Date(2026, 8, 28, 14, 5, 0, 0, time.UTC)},
		},
	}
	project := &models.Project{
		ID:              "proj-1",
		Name:            "Terminal Apron Expansion",
		ProjectNumber:   "NOAB-2025-021",
		Location:        "Kenner, LA",
		Engineer:        "Gulf Coast Engineering",
		PrimeContractor: "Magnolia Paving Co",
		Contractors: []models.Contractor{
			{Name: "Magnolia Paving Co"},
			{Name: "Southern Striping"},
		},
		Equipment: []models.ProjectSetItem{
			{Name: "Asphalt Paver"},
		},
	}

	payload := BuildPayload(draft, project, "J. Inspector")

	pc := payload.ProjectContext
	if pc.ProjectName != "Terminal Apron Expansion" || pc.NoabProjectNo != "NOAB-2025-021" {
		t.Errorf("project context wrong: %+v", pc)
	}
	if len(pc.Contractors) != 2 || pc.Contractors[0] != "Magnolia Paving Co" {
		t.Errorf("contractors = %v", pc.Contractors)
	}
	if len(pc.Equipment) != 1 || pc.Equipment[0] != "Asphalt Paver" {
		t.Errorf("equipment = %v", pc.Equipment)
	}
	if payload.FieldNotes.WorkSummary != draft.GuidedNotes.WorkSummary {
		t.Errorf("WorkSummary = %q", payload.FieldNotes.WorkSummary)
	}
	if payload.FieldNotes.FreeformNotes != "" {
		t.Error("minimal field must stay empty in guided mode")
	}
	if len(payload.Photos) != 1 || payload.Photos[0].Timestamp != "2026-08-28T14:05:00Z" {
		t.Errorf("photos = %+v", payload.Photos)
	}
}

func TestBuildPayloadIsPure(t *testing.T) {
	draft := minimalDraft()
	before := *draft

	_ = BuildPayload(draft, nil, "J. Inspector")

	if draft.ProjectID != before.ProjectID || draft.ProjectName != before.ProjectName {
		t.Error("BuildPayload mutated the draft")
	}
}

func TestDecodeGenerated(t *testing.T) {
	obj := `{"executiveSummary":"Quiet day.","workPerformed":"Grading.","safety":{"hasIncidents":false,"noIncidents":true,"notes":""}}`

	t.Run("plain object", func(t *testing.T) {
		g, err := decodeGenerated(json.RawMessage(obj))
		if err != nil {
			t.Fatalf("decodeGenerated: %v", err)
		}
		if g.ExecutiveSummary != "Quiet day." {
			t.Errorf("ExecutiveSummary = %q", g.ExecutiveSummary)
		}
		if g.Activities == nil || g.Operations == nil || g.Equipment == nil || g.GeneralIssues == nil || g.QaqcNotes == nil {
			t.Error("absent collections must normalize to empty, not nil")
		}
	})

	t.Run("double-encoded string", func(t *testing.T) {
		quoted, _ := json.Marshal(obj)
		g, err := decodeGenerated(json.RawMessage(quoted))
		if err != nil {
			t.Fatalf("decodeGenerated: %v", err)
		}
		if g.WorkPerformed != "Grading." {
			t.Errorf("WorkPerformed = %q", g.WorkPerformed)
		}
	})

	t.Run("empty", func(t *testing.T) {
		if _, err := decodeGenerated(nil); err == nil {
			t.Fatal("expected error for empty field")
		}
	})

	t.Run("garbage", func(t *testing.T) {
		if _, err := decodeGenerated(json.RawMessage(`{broken`)); err == nil {
			t.Fatal("expected error for malformed JSON")
		}
	})
}
