package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/google/uuid"
)

// ReportStatus is the lifecycle status of a canonical report row.
type ReportStatus string

const (
	ReportStatusDraft         ReportStatus = "draft"
	ReportStatusPendingRefine ReportStatus = "pending_refine"
	ReportStatusRefined       ReportStatus = "refined"
	ReportStatusSubmitted     ReportStatus = "submitted"
)

// IsValid returns true if the status is a recognized value.
func (s ReportStatus) IsValid() bool {
	switch s {
	case ReportStatusDraft, ReportStatusPendingRefine, ReportStatusRefined, ReportStatusSubmitted:
		return true
	}
	return false
}

// IsOpen returns true if the report still needs inspector attention
// (not yet refined or submitted).
func (s ReportStatus) IsOpen() bool {
	return s == ReportStatusDraft || s == ReportStatusPendingRefine
}

// Report is the canonical daily inspection report row in the remote store.
// Once a draft has synced, this row is the single source of truth.
// Unique on (project_id, report_date): one report per project per day.
type Report struct {
	ID          string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	ProjectID   string         `gorm:"type:varchar(36);not null;uniqueIndex:idx_project_date" json:"projectId"`
	ReportDate  string         `gorm:"type:varchar(10);not null;uniqueIndex:idx_project_date" json:"reportDate"`
	Status      ReportStatus   `gorm:"type:varchar(20);not null;default:'draft';index:idx_report_status" json:"status"`
	CaptureMode string         `gorm:"type:varchar(10)" json:"captureMode"`
	RawCapture  datatypes.JSON `gorm:"type:jsonb" json:"rawCapture,omitempty"`
	AIGenerated datatypes.JSON `gorm:"type:jsonb" json:"aiGenerated,omitempty"`
	PDFUrl      string         `gorm:"type:varchar(500)" json:"pdfUrl,omitempty"`
	CreatedAt   time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt   time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"updatedAt"`
	SubmittedAt *time.Time     `json:"submittedAt,omitempty"`
}

// TableName specifies the table name
func (Report) TableName() string {
	return "reports"
}

// BeforeCreate hook
func (r *Report) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.Status == "" {
		r.Status = ReportStatusDraft
	}
	return nil
}

// ReportSummary is the light projection of a report used by the
// eligibility rules and the dashboard listing. Refreshed periodically
// into the in-memory index by the summary loader.
type ReportSummary struct {
	ID         string       `json:"id"`
	ProjectID  string       `json:"projectId"`
	ReportDate string       `json:"reportDate"`
	Status     ReportStatus `json:"status"`
}

// AIRequest records the outbound refinement payload for a report.
// Written just before the webhook call; audit only.
type AIRequest struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	ReportID       string         `gorm:"type:varchar(36);not null;index:idx_ai_request_report" json:"reportId"`
	RequestPayload datatypes.JSON `gorm:"type:jsonb" json:"requestPayload"`
	SentAt         time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"sentAt"`
}

// TableName specifies the table name
func (AIRequest) TableName() string {
	return "report_ai_request"
}

// AIResponse records the refinement result for a report. Upserted on
// report_id so repeated syncs overwrite rather than duplicate.
type AIResponse struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	ReportID         string         `gorm:"type:varchar(36);not null;uniqueIndex:idx_ai_response_report" json:"reportId"`
	ResponsePayload  datatypes.JSON `gorm:"type:jsonb" json:"responsePayload"`
	ModelUsed        string         `gorm:"type:varchar(100)" json:"modelUsed"`
	ProcessingTimeMs int            `json:"processingTimeMs"`
	ReceivedAt       time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"receivedAt"`
}

// TableName specifies the table name
func (AIResponse) TableName() string {
	return "report_ai_response"
}
