package models

import (
	"time"

	"gorm.io/datatypes"
)

// QueueEntry is a durable record of a draft awaiting outbound sync,
// stored in the local store. Appended when a finalize attempt fails,
// updated in place on repeated failures, removed on success.
// Insertion order (id order) is display order.
type QueueEntry struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	ProjectID    string         `gorm:"type:varchar(36);not null" json:"projectId"`
	ProjectName  string         `gorm:"type:varchar(255)" json:"projectName"`
	ReportDate   string         `gorm:"type:varchar(10);not null" json:"reportDate"`
	CaptureMode  string         `gorm:"type:varchar(10)" json:"captureMode"`
	Payload      datatypes.JSON `gorm:"type:json" json:"payload"`
	Snapshot     datatypes.JSON `gorm:"type:json" json:"snapshot"`
	Status       DraftStatus    `gorm:"type:varchar(20);not null;default:'pending_sync';index:idx_queue_status" json:"status"`
	ErrorMessage string         `gorm:"type:text" json:"errorMessage,omitempty"`
	LastSaved    time.Time      `gorm:"not null" json:"lastSaved"`
	CreatedAt    time.Time      `json:"createdAt"`
}

// TableName specifies the table name
func (QueueEntry) TableName() string {
	return "sync_queue"
}

// NeedsSync returns true if the entry is still awaiting a successful sync.
func (e *QueueEntry) NeedsSync() bool {
	return e.Status == DraftStatusPendingSync || e.Status == DraftStatusSyncFailed
}

// StoredDraft is the local persistence row for the single active draft
// per (project, date). The full draft travels as one JSON payload,
// mirroring a last-write-wins cache entry.
type StoredDraft struct {
	Key        string         `gorm:"type:varchar(120);primaryKey" json:"key"`
	ProjectID  string         `gorm:"type:varchar(36);not null" json:"projectId"`
	ReportDate string         `gorm:"type:varchar(10);not null" json:"reportDate"`
	Payload    datatypes.JSON `gorm:"type:json;not null" json:"payload"`
	LastSaved  time.Time      `gorm:"not null" json:"lastSaved"`
}

// TableName specifies the table name
func (StoredDraft) TableName() string {
	return "drafts"
}

// Setting is a small local key/value pair (active project pointer,
// onboarding flags).
type Setting struct {
	Key   string `gorm:"type:varchar(64);primaryKey" json:"key"`
	Value string `gorm:"type:text" json:"value"`
}

// TableName specifies the table name
func (Setting) TableName() string {
	return "settings"
}
