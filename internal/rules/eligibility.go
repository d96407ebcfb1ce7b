// Package rules holds the pure decision logic gating report creation.
package rules

import (
	"github.com/fieldvoice/fieldvoicego/internal/models"
)

// StartReason explains an eligibility decision.
type StartReason string

const (
	// ReasonOK means no report exists for today and nothing blocks one.
	ReasonOK StartReason = "OK"
	// ReasonContinueExisting means today's draft exists and is not yet
	// submitted. Not blocking; the UI should offer "continue".
	ReasonContinueExisting StartReason = "CONTINUE_EXISTING"
	// ReasonUnfinishedPrevious means a report for an earlier date is
	// still open. Blocks starting today's until resolved.
	ReasonUnfinishedPrevious StartReason = "UNFINISHED_PREVIOUS"
	// ReasonAlreadySubmittedToday means today's report is already
	// submitted. Blocks re-entry.
	ReasonAlreadySubmittedToday StartReason = "ALREADY_SUBMITTED_TODAY"
)

// Decision is the result of an eligibility check.
type Decision struct {
	Allowed bool        `json:"allowed"`
	Reason  StartReason `json:"reason"`
}

// CanStartNewReport decides whether a new report may be started for a
// project today, given the cached report summaries. Pure: same input,
// same answer. When several reasons apply at once the most restrictive
// wins: UNFINISHED_PREVIOUS > ALREADY_SUBMITTED_TODAY >
// CONTINUE_EXISTING > OK.
func CanStartNewReport(projectID, today string, summaries []models.ReportSummary) Decision {
	var (
		hasUnfinishedPrevious bool
		submittedToday        bool
		openToday             bool
	)

	for _, s := range summaries {
		if s.ProjectID != projectID {
			continue
		}
		switch {
		case s.ReportDate < today:
			if s.Status.IsOpen() {
				hasUnfinishedPrevious = true
			}
		case s.ReportDate == today:
			if s.Status == models.ReportStatusSubmitted {
				submittedToday = true
			} else {
				openToday = true
			}
		}
	}

	switch {
	case hasUnfinishedPrevious:
		return Decision{Allowed: false, Reason: ReasonUnfinishedPrevious}
	case submittedToday:
		return Decision{Allowed: false, Reason: ReasonAlreadySubmittedToday}
	case openToday:
		return Decision{Allowed: true, Reason: ReasonContinueExisting}
	}
	return Decision{Allowed: true, Reason: ReasonOK}
}
