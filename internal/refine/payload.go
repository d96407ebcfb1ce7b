package refine

import (
	"fmt"
	"time"

	"github.com/fieldvoice/fieldvoicego/internal/models"
)

// ProjectContext carries the project master data the refiner needs to
// write prose with correct names and numbers.
type ProjectContext struct {
	ProjectID       string   `json:"projectId"`
	ProjectName     string   `json:"projectName"`
	NoabProjectNo   string   `json:"noabProjectNo,omitempty"`
	Location        string   `json:"location,omitempty"`
	Engineer        string   `json:"engineer,omitempty"`
	PrimeContractor string   `json:"primeContractor,omitempty"`
	Contractors     []string `json:"contractors"`
	Equipment       []string `json:"equipment"`
}

// FieldNotes is the capture-mode-specific notes block. Exactly one
// shape is populated depending on the draft's capture mode.
type FieldNotes struct {
	FreeformNotes string `json:"freeformNotes,omitempty"`
	WorkSummary   string `json:"workSummary,omitempty"`
	Issues        string `json:"issues,omitempty"`
	Safety        string `json:"safety,omitempty"`
}

// PayloadPhoto is the photo metadata forwarded to the refiner. Image
// bytes never travel with the payload, only captions and context.
type PayloadPhoto struct {
	ID        string           `json:"id"`
	Caption   string           `json:"caption,omitempty"`
	Timestamp string           `json:"timestamp,omitempty"`
	Date      string           `json:"date,omitempty"`
	Time      string           `json:"time,omitempty"`
	GPS       *models.GPSPoint `json:"gps,omitempty"`
}

// Payload is the wire shape submitted to the refinement backend.
type Payload struct {
	ReportID       string                 `json:"reportId"`
	CaptureMode    models.CaptureMode     `json:"captureMode"`
	ProjectContext ProjectContext         `json:"projectContext"`
	FieldNotes     FieldNotes             `json:"fieldNotes"`
	Weather        models.WeatherSnapshot `json:"weather"`
	Photos         []PayloadPhoto         `json:"photos"`
	ReportDate     string                 `json:"reportDate"`
	InspectorName  string                 `json:"inspectorName"`
}

// BuildPayload assembles the refinement payload from a draft and its
// project master data. Pure function: no I/O, no mutation of inputs.
func BuildPayload(draft *models.Draft, project *models.Project, inspectorName string) *Payload {
	payload := &Payload{
		ReportID:      fmt.Sprintf("%s_%s", draft.ProjectID, draft.ReportDate),
		CaptureMode:   draft.CaptureMode,
		ReportDate:    draft.ReportDate,
		InspectorName: inspectorName,
		Weather:       draft.Weather,
		Photos:        []PayloadPhoto{},
		ProjectContext: ProjectContext{
			ProjectID:   draft.ProjectID,
			ProjectName: draft.ProjectName,
			Contractors: []string{},
			Equipment:   []string{},
		},
	}

	if project != nil {
		payload.ProjectContext.ProjectName = project.Name
		payload.ProjectContext.NoabProjectNo = project.ProjectNumber
		payload.ProjectContext.Location = project.Location
		payload.ProjectContext.Engineer = project.Engineer
		payload.ProjectContext.PrimeContractor = project.PrimeContractor
		for _, c := range project.Contractors {
			payload.ProjectContext.Contractors = append(payload.ProjectContext.Contractors, c.Name)
		}
		for _, e := range project.Equipment {
			payload.ProjectContext.Equipment = append(payload.ProjectContext.Equipment, e.Name)
		}
	}

	switch draft.CaptureMode {
	case models.CaptureModeMinimal:
		if draft.MinimalNotes != nil {
			payload.FieldNotes.FreeformNotes = draft.MinimalNotes.FreeformNotes
		}
	case models.CaptureModeGuided:
		if draft.GuidedNotes != nil {
			payload.FieldNotes.WorkSummary = draft.GuidedNotes.WorkSummary
			payload.FieldNotes.Issues = draft.GuidedNotes.Issues
			payload.FieldNotes.Safety = draft.GuidedNotes.Safety
		}
	}

	for _, photo := range draft.Photos {
		p := PayloadPhoto{
			ID:      photo.ID,
			Caption: photo.Caption,
			Date:    photo.Date,
			Time:    photo.Time,
			GPS:     photo.GPS,
		}
		if !photo.Timestamp.IsZero() {
			p.Timestamp = photo.Timestamp.UTC().Format(time.RFC3339)
		}
		payload.Photos = append(payload.Photos, p)
	}

	return payload
}
