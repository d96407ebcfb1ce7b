package models

import (
	"fmt"
	"strings"
	"time"
)

// CaptureMode selects which capture flow produced the field notes.
type CaptureMode string

const (
	// CaptureModeMinimal is a single freeform notes field.
	CaptureModeMinimal CaptureMode = "minimal"
	// CaptureModeGuided is the structured section-by-section flow.
	CaptureModeGuided CaptureMode = "guided"
)

// IsValid returns true if the mode is a recognized value.
func (m CaptureMode) IsValid() bool {
	return m == CaptureModeMinimal || m == CaptureModeGuided
}

// DraftStatus is the local lifecycle status of an in-progress draft.
type DraftStatus string

const (
	DraftStatusDraft       DraftStatus = "draft"
	DraftStatusPendingSync DraftStatus = "pending_sync"
	DraftStatusSyncFailed  DraftStatus = "sync_failed"
)

// MinimalNotes is the capture content of a minimal-mode draft.
type MinimalNotes struct {
	FreeformNotes string `json:"freeformNotes"`
}

// GuidedNotes is the capture content of a guided-mode draft.
type GuidedNotes struct {
	WorkSummary string `json:"workSummary"`
	Issues      string `json:"issues"`
	Safety      string `json:"safety"`
}

// WeatherSnapshot is the weather block captured with a report.
type WeatherSnapshot struct {
	HighTemp          *float64 `json:"highTemp,omitempty"`
	LowTemp           *float64 `json:"lowTemp,omitempty"`
	Precipitation     string   `json:"precipitation,omitempty"`
	GeneralCondition  string   `json:"generalCondition,omitempty"`
	JobSiteCondition  string   `json:"jobSiteCondition,omitempty"`
	AdverseConditions string   `json:"adverseConditions,omitempty"`
}

// ActivityEntry is one contractor's work for the day.
type ActivityEntry struct {
	ContractorID string `json:"contractorId"`
	Contractor   string `json:"contractor"`
	Description  string `json:"description"`
	NoWork       bool   `json:"noWork,omitempty"`
}

// PersonnelEntry is a headcount line for one contractor's crew.
type PersonnelEntry struct {
	ContractorID string `json:"contractorId"`
	Contractor   string `json:"contractor"`
	Supervisors  int    `json:"supervisors"`
	Operators    int    `json:"operators"`
	Laborers     int    `json:"laborers"`
	Operations   string `json:"operations,omitempty"`
}

// EquipmentEntry is one piece of equipment used on site.
type EquipmentEntry struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
	Notes string `json:"notes,omitempty"`
}

// GPSPoint is a photo geotag.
type GPSPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// PhotoMeta is the metadata of a site photo. File bytes live in object
// storage; only metadata travels with the draft.
type PhotoMeta struct {
	ID        string    `json:"id"`
	Caption   string    `json:"caption"`
	Timestamp time.Time `json:"timestamp"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	GPS       *GPSPoint `json:"gps,omitempty"`
}

// Draft is the mutable, in-progress capture of one day's inspection.
// Identity is (ProjectID, ReportDate); at most one non-terminal draft
// exists per identity in the local store at any time.
type Draft struct {
	ProjectID   string      `json:"projectId"`
	ProjectName string      `json:"projectName"`
	ReportDate  string      `json:"reportDate"`
	CaptureMode CaptureMode `json:"captureMode"`

	// Exactly one of the notes blocks is populated, per CaptureMode.
	MinimalNotes *MinimalNotes `json:"minimalNotes,omitempty"`
	GuidedNotes  *GuidedNotes  `json:"guidedNotes,omitempty"`

	Weather    WeatherSnapshot  `json:"weather"`
	Activities []ActivityEntry  `json:"activities,omitempty"`
	Personnel  []PersonnelEntry `json:"personnel,omitempty"`
	Equipment  []EquipmentEntry `json:"equipment,omitempty"`
	Photos     []PhotoMeta      `json:"photos,omitempty"`

	InspectorName string      `json:"inspectorName,omitempty"`
	Status        DraftStatus `json:"status"`
	LastSaved     time.Time   `json:"lastSaved"`
	ErrorMessage  string      `json:"errorMessage,omitempty"`
}

// DraftKey builds the local storage key for a (project, date) identity.
func DraftKey(projectID, reportDate string) string {
	return fmt.Sprintf("draft_%s_%s", projectID, reportDate)
}

// Key returns the draft's own storage key.
func (d *Draft) Key() string {
	return DraftKey(d.ProjectID, d.ReportDate)
}

// HasContent reports whether the draft carries the minimal required
// capture content for its mode. Empty drafts are rejected before any
// network call is made.
func (d *Draft) HasContent() bool {
	switch d.CaptureMode {
	case CaptureModeMinimal:
		return d.MinimalNotes != nil && strings.TrimSpace(d.MinimalNotes.FreeformNotes) != ""
	case CaptureModeGuided:
		return d.GuidedNotes != nil && strings.TrimSpace(d.GuidedNotes.WorkSummary) != ""
	}
	return false
}

// Validate checks the identity and mode fields a draft must carry
// before it can be synced.
func (d *Draft) Validate() error {
	if d.ProjectID == "" {
		return fmt.Errorf("draft has no project")
	}
	if d.ReportDate == "" {
		return fmt.Errorf("draft has no report date")
	}
	if !d.CaptureMode.IsValid() {
		return fmt.Errorf("unknown capture mode %q", d.CaptureMode)
	}
	if !d.HasContent() {
		if d.CaptureMode == CaptureModeMinimal {
			return fmt.Errorf("field notes are required")
		}
		return fmt.Errorf("work summary is required")
	}
	return nil
}
