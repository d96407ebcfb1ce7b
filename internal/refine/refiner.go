// Package refine turns raw field captures into structured report prose
// via an external AI refinement backend.
package refine

import (
	"context"
	"encoding/json"
	"fmt"
)

// SafetySummary is the safety block of the generated content.
type SafetySummary struct {
	HasIncidents bool   `json:"hasIncidents"`
	NoIncidents  bool   `json:"noIncidents"`
	Notes        string `json:"notes"`
}

// GeneratedActivity is one refined contractor-activity line.
type GeneratedActivity struct {
	Contractor  string `json:"contractor"`
	Description string `json:"description"`
}

// GeneratedOperation is one refined personnel/operations line.
type GeneratedOperation struct {
	Contractor  string `json:"contractor"`
	Personnel   string `json:"personnel"`
	Description string `json:"description"`
}

// GeneratedEquipment is one refined equipment-usage line.
type GeneratedEquipment struct {
	Name  string `json:"name"`
	Usage string `json:"usage"`
}

// Generated is the structured content the refinement step produces.
// Validated at the boundary: absent arrays are normalized to empty so
// downstream code never branches on nil.
type Generated struct {
	ExecutiveSummary string               `json:"executiveSummary"`
	WorkPerformed    string               `json:"workPerformed"`
	DelaysIssues     string               `json:"delaysIssues,omitempty"`
	Activities       []GeneratedActivity  `json:"activities"`
	Operations       []GeneratedOperation `json:"operations"`
	Equipment        []GeneratedEquipment `json:"equipment"`
	GeneralIssues    []string             `json:"generalIssues"`
	QaqcNotes        []string             `json:"qaqcNotes"`
	Safety           SafetySummary        `json:"safety"`
}

// Normalize replaces nil collections with empty ones.
func (g *Generated) Normalize() {
	if g.Activities == nil {
		g.Activities = []GeneratedActivity{}
	}
	if g.Operations == nil {
		g.Operations = []GeneratedOperation{}
	}
	if g.Equipment == nil {
		g.Equipment = []GeneratedEquipment{}
	}
	if g.GeneralIssues == nil {
		g.GeneralIssues = []string{}
	}
	if g.QaqcNotes == nil {
		g.QaqcNotes = []string{}
	}
}

// Refiner is an AI refinement backend.
type Refiner interface {
	// Refine submits a payload and returns the generated content.
	// Implementations bound the call with the configured timeout;
	// timeouts, transport errors, and malformed responses are all
	// returned as errors.
	Refine(ctx context.Context, payload *Payload) (*Generated, error)

	// ModelName identifies the backend for the AI response audit row.
	ModelName() string
}

// decodeGenerated parses refinement output that may arrive either as a
// JSON object or as a JSON-encoded string containing the object.
func decodeGenerated(raw json.RawMessage) (*Generated, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty aiGenerated field")
	}

	// Double-encoded payload: unquote, then parse.
	if raw[0] == '"' {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return nil, fmt.Errorf("failed to unquote aiGenerated: %w", err)
		}
		raw = json.RawMessage(inner)
	}

	var generated Generated
	if err := json.Unmarshal(raw, &generated); err != nil {
		return nil, fmt.Errorf("failed to parse aiGenerated: %w", err)
	}
	generated.Normalize()
	return &generated, nil
}
