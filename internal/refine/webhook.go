package refine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fieldvoice/fieldvoicego/internal/logging"
)

// webhookResponse is the envelope the refinement webhook returns.
// aiGenerated is kept raw because some backends double-encode it as a
// JSON string.
type webhookResponse struct {
	Success     bool            `json:"success"`
	Error       string          `json:"error,omitempty"`
	AIGenerated json.RawMessage `json:"aiGenerated"`
}

// WebhookRefiner submits payloads to an external refinement webhook.
type WebhookRefiner struct {
	url     string
	timeout time.Duration
	client  *http.Client
}

// NewWebhookRefiner creates a refiner that POSTs to the given URL.
func NewWebhookRefiner(url string, timeout time.Duration) *WebhookRefiner {
	return &WebhookRefiner{
		url:     url,
		timeout: timeout,
		client:  &http.Client{Timeout: timeout},
	}
}

// ModelName identifies the backend for audit rows.
func (w *WebhookRefiner) ModelName() string {
	return "webhook"
}

// Refine submits the payload and parses the generated content. The call
// is bounded by the configured timeout; a hung backend surfaces as a
// context deadline error, never a stuck sync.
func (w *WebhookRefiner) Refine(ctx context.Context, payload *Payload) (*Generated, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal refine payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build refine request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	logging.L().Infow("🤖 Submitting report for AI refinement",
		"reportId", payload.ReportID, "url", w.url)

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("refine request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read refine response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// The server's own message is preserved verbatim so the
		// operator sees what the backend actually said.
		msg := strings.TrimSpace(string(respBody))
		if msg == "" {
			msg = resp.Status
		}
		return nil, fmt.Errorf("refine webhook returned %d: %s", resp.StatusCode, msg)
	}

	var envelope webhookResponse
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return nil, fmt.Errorf("refine webhook returned malformed JSON: %w", err)
	}
	if !envelope.Success {
		msg := envelope.Error
		if msg == "" {
			msg = "webhook reported failure without detail"
		}
		return nil, fmt.Errorf("refine webhook failed: %s", msg)
	}

	generated, err := decodeGenerated(envelope.AIGenerated)
	if err != nil {
		return nil, err
	}

	logging.L().Infow("✅ AI refinement complete", "reportId", payload.ReportID)
	return generated, nil
}

var _ Refiner = (*WebhookRefiner)(nil)
