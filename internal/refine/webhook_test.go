package refine

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func testPayload() *Payload {
	return BuildPayload(minimalDraft(), nil, "J. Inspector")
}

func TestWebhookRefinerSuccess(t *testing.T) {
	var received Payload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %s", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"aiGenerated": map[string]interface{}{
				"executiveSummary": "Forms set on the east wall.",
				"workPerformed":    "Formwork.",
				"safety":           map[string]interface{}{"noIncidents": true},
			},
		})
	}))
	defer server.Close()

	refiner := NewWebhookRefiner(server.URL, 5*time.Second)
	generated, err := refiner.Refine(context.Background(), testPayload())
	if err != nil {
		t.Fatalf("Refine: %v", err)
	}
	if generated.ExecutiveSummary != "Forms set on the east wall." {
		t.Errorf("ExecutiveSummary = %q", generated.ExecutiveSummary)
	}
	if generated.Activities == nil {
		t.Error("collections not normalized")
	}
	if received.ReportID != "proj-1_2026-08-28" {
		t.Errorf("server saw ReportID = %q", received.ReportID)
	}
}

func TestWebhookRefinerStringEncodedResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inner := `{"executiveSummary":"Stringly typed.","safety":{"noIncidents":true}}`
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "aiGenerated": inner})
	}))
	defer server.Close()

	refiner := NewWebhookRefiner(server.URL, 5*time.Second)
	generated, err := refiner.Refine(context.Background(), testPayload())
	if err != nil {
		t.Fatalf("Refine: %v", err)
	}
	if generated.ExecutiveSummary != "Stringly typed." {
		t.Errorf("ExecutiveSummary = %q", generated.ExecutiveSummary)
	}
}

func TestWebhookRefinerServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model quota exhausted", http.StatusBadGateway)
	}))
	defer server.Close()

	refiner := NewWebhookRefiner(server.URL, 5*time.Second)
	_, err := refiner.Refine(context.Background(), testPayload())
	if err == nil {
		t.Fatal("expected error for 502")
	}
	// The backend's own words must survive into the error.
	if !strings.Contains(err.Error(), "model quota exhausted") || !strings.Contains(err.Error(), "502") {
		t.Errorf("error lost server detail: %v", err)
	}
}

func TestWebhookRefinerReportedFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": "notes too short"})
	}))
	defer server.Close()

	refiner := NewWebhookRefiner(server.URL, 5*time.Second)
	_, err := refiner.Refine(context.Background(), testPayload())
	if err == nil || !strings.Contains(err.Error(), "notes too short") {
		t.Errorf("expected failure detail, got %v", err)
	}
}

func TestWebhookRefinerMalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>gateway timeout</html>"))
	}))
	defer server.Close()

	refiner := NewWebhookRefiner(server.URL, 5*time.Second)
	if _, err := refiner.Refine(context.Background(), testPayload()); err == nil {
		t.Fatal("expected error for malformed body")
	}
}

func TestWebhookRefinerTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	refiner := NewWebhookRefiner(server.URL, 50*time.Millisecond)
	start := time.Now()
	_, err := refiner.Refine(context.Background(), testPayload())
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if time.Since(start) > 2*time.Second {
		t.Error("timeout not bounded")
	}
}
