// Package reports is the data access layer for the canonical remote
// report store and its AI audit tables.
package reports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fieldvoice/fieldvoicego/internal/models"
)

// Repository provides access to reports, projects, and AI audit rows
// in the remote store.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a repository over the remote store connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByProjectDate returns the report row for (projectID, reportDate),
// or nil if none exists.
func (r *Repository) FindByProjectDate(ctx context.Context, projectID, reportDate string) (*models.Report, error) {
	var report models.Report
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND report_date = ?", projectID, reportDate).
		First(&report).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up report: %w", err)
	}
	return &report, nil
}

// LocateOrCreate finds the report row for (projectID, reportDate),
// creating one with status pending_refine and the raw capture attached
// if absent. The unique constraint on (project_id, report_date) backs
// the check-then-create: if another device wins the insert race the
// conflicting create is a no-op and the winner's row is returned.
func (r *Repository) LocateOrCreate(ctx context.Context, draft *models.Draft) (*models.Report, error) {
	existing, err := r.FindByProjectDate(ctx, draft.ProjectID, draft.ReportDate)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	raw, err := json.Marshal(draft)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize raw capture: %w", err)
	}

	report := models.Report{
		ProjectID:   draft.ProjectID,
		ReportDate:  draft.ReportDate,
		Status:      models.ReportStatusPendingRefine,
		CaptureMode: string(draft.CaptureMode),
		RawCapture:  raw,
	}
	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "project_id"}, {Name: "report_date"}},
			DoNothing: true,
		}).
		Create(&report).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create report: %w", err)
	}

	// Re-read to cover both our insert and a concurrent winner.
	created, err := r.FindByProjectDate(ctx, draft.ProjectID, draft.ReportDate)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, fmt.Errorf("report for %s/%s vanished after create", draft.ProjectID, draft.ReportDate)
	}
	return created, nil
}

// SaveGenerated persists refinement output against the report identity
// and moves the row to refined. Repeated successful syncs overwrite.
func (r *Repository) SaveGenerated(ctx context.Context, reportID string, generated interface{}) error {
	payload, err := json.Marshal(generated)
	if err != nil {
		return fmt.Errorf("failed to serialize generated content: %w", err)
	}

	result := r.db.WithContext(ctx).Model(&models.Report{}).
		Where("id = ?", reportID).
		Updates(map[string]interface{}{
			"status":       models.ReportStatusRefined,
			"ai_generated": datatypes.JSON(payload),
			"updated_at":   time.Now().UTC(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to save generated content: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("report %s not found", reportID)
	}
	return nil
}

// Get returns a report by id, or nil if absent.
func (r *Repository) Get(ctx context.Context, id string) (*models.Report, error) {
	var report models.Report
	err := r.db.WithContext(ctx).First(&report, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load report %s: %w", id, err)
	}
	return &report, nil
}

// MarkSubmitted moves a refined report to submitted and stamps the
// submission time. Only refined reports can be submitted.
func (r *Repository) MarkSubmitted(ctx context.Context, id string) error {
	now := time.Now().UTC()
	result := r.db.WithContext(ctx).Model(&models.Report{}).
		Where("id = ? AND status = ?", id, models.ReportStatusRefined).
		Updates(map[string]interface{}{
			"status":       models.ReportStatusSubmitted,
			"submitted_at": &now,
			"updated_at":   now,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to submit report %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("report %s is not in refined status", id)
	}
	return nil
}

// SetPDFUrl records where the exported PDF for a report was stored.
func (r *Repository) SetPDFUrl(ctx context.Context, id, url string) error {
	return r.db.WithContext(ctx).Model(&models.Report{}).
		Where("id = ?", id).
		Update("pdf_url", url).Error
}

// Summaries returns the light projection of every report, for the
// eligibility index.
func (r *Repository) Summaries(ctx context.Context) ([]models.ReportSummary, error) {
	var summaries []models.ReportSummary
	err := r.db.WithContext(ctx).Model(&models.Report{}).
		Select("id", "project_id", "report_date", "status").
		Order("report_date DESC").
		Find(&summaries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load report summaries: %w", err)
	}
	return summaries, nil
}

// RecordAIRequest writes the audit row for an outbound refinement call.
// Audit only: failures are returned for logging, never block the sync.
func (r *Repository) RecordAIRequest(ctx context.Context, reportID string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to serialize AI request: %w", err)
	}
	row := models.AIRequest{
		ReportID:       reportID,
		RequestPayload: data,
		SentAt:         time.Now().UTC(),
	}
	return r.db.WithContext(ctx).Create(&row).Error
}

// RecordAIResponse upserts the audit row for a refinement result,
// keyed on report_id so retries overwrite rather than duplicate.
func (r *Repository) RecordAIResponse(ctx context.Context, reportID, modelUsed string, response interface{}, processingTime time.Duration) error {
	data, err := json.Marshal(response)
	if err != nil {
		return fmt.Errorf("failed to serialize AI response: %w", err)
	}
	row := models.AIResponse{
		ReportID:         reportID,
		ResponsePayload:  data,
		ModelUsed:        modelUsed,
		ProcessingTimeMs: int(processingTime.Milliseconds()),
		ReceivedAt:       time.Now().UTC(),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "report_id"}},
			UpdateAll: true,
		}).
		Create(&row).Error
}

// Projects returns all active projects with their rosters.
func (r *Repository) Projects(ctx context.Context) ([]models.Project, error) {
	var projects []models.Project
	err := r.db.WithContext(ctx).
		Preload("Contractors", "is_active = ?", true).
		Preload("Equipment", "is_active = ?", true).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&projects).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load projects: %w", err)
	}
	return projects, nil
}

// Project returns one project with its roster, or nil if absent.
func (r *Repository) Project(ctx context.Context, id string) (*models.Project, error) {
	var project models.Project
	err := r.db.WithContext(ctx).
		Preload("Contractors", "is_active = ?", true).
		Preload("Equipment", "is_active = ?", true).
		First(&project, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load project %s: %w", id, err)
	}
	return &project, nil
}
