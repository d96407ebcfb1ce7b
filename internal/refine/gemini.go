package refine

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/fieldvoice/fieldvoicego/internal/logging"
)

// refinePrompt instructs the model to turn raw field notes into the
// structured daily-report JSON we store.
const refinePrompt = `You are an assistant that converts a construction inspector's raw field notes into a polished daily inspection report.

You receive a JSON payload with the project context, the inspector's field notes, weather, and photo captions. Write in professional, factual third-person prose. Do not invent work that the notes do not mention. Attribute activities to the contractors listed in the project context when the notes make the attribution clear.

### OUTPUT FORMAT
Respond with ONLY a JSON object (no markdown fences, no commentary) with exactly these fields:
{
  "executiveSummary": "2-3 sentence summary of the day",
  "workPerformed": "detailed narrative of the work performed",
  "delaysIssues": "narrative of delays or issues, empty string if none",
  "activities": [{"contractor": "...", "description": "..."}],
  "operations": [{"contractor": "...", "personnel": "...", "description": "..."}],
  "equipment": [{"name": "...", "usage": "..."}],
  "generalIssues": ["..."],
  "qaqcNotes": ["..."],
  "safety": {"hasIncidents": false, "noIncidents": true, "notes": "..."}
}

### INPUT PAYLOAD
`

// GeminiRefiner refines reports directly against the Gemini API, used
// when no refinement webhook is deployed.
type GeminiRefiner struct {
	client  *genai.Client
	model   *genai.GenerativeModel
	name    string
	timeout time.Duration
}

// NewGeminiRefiner creates a Gemini-backed refiner.
func NewGeminiRefiner(ctx context.Context, apiKey, modelName string, timeout time.Duration) (*GeminiRefiner, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is empty")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}

	model := client.GenerativeModel(modelName)
	model.ResponseMIMEType = "application/json"

	return &GeminiRefiner{
		client:  client,
		model:   model,
		name:    modelName,
		timeout: timeout,
	}, nil
}

// Close closes the underlying API client.
func (g *GeminiRefiner) Close() {
	if g.client != nil {
		g.client.Close()
	}
}

// ModelName identifies the backend for audit rows.
func (g *GeminiRefiner) ModelName() string {
	return g.name
}

// Refine prompts the model with the payload and parses its JSON reply.
func (g *GeminiRefiner) Refine(ctx context.Context, payload *Payload) (*Generated, error) {
	payloadJSON, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal refine payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	logging.L().Infow("🤖 Refining report via Gemini",
		"reportId", payload.ReportID, "model", g.name)

	resp, err := g.model.GenerateContent(ctx, genai.Text(refinePrompt+string(payloadJSON)))
	if err != nil {
		return nil, fmt.Errorf("gemini generation error: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("empty response from gemini")
	}

	var fullText string
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			fullText += string(txt)
		}
	}

	generated, err := decodeGenerated(json.RawMessage(stripCodeFences(fullText)))
	if err != nil {
		return nil, err
	}

	logging.L().Infow("✅ AI refinement complete", "reportId", payload.ReportID)
	return generated, nil
}

// stripCodeFences removes a ```json ... ``` wrapper some models emit
// even when asked for bare JSON.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

var _ Refiner = (*GeminiRefiner)(nil)
