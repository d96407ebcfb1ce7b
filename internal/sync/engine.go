package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/fieldvoice/fieldvoicego/internal/logging"
	"github.com/fieldvoice/fieldvoicego/internal/models"
	"github.com/fieldvoice/fieldvoicego/internal/refine"
	"github.com/fieldvoice/fieldvoicego/internal/reports"
	"github.com/fieldvoice/fieldvoicego/internal/store"
	"github.com/fieldvoice/fieldvoicego/internal/websocket"
)

// OfflineMessage is what the inspector sees when a finished draft is
// queued instead of synced.
const OfflineMessage = "You're offline. The report is saved and will sync when you're back online."

// Outcome is the result of a sync attempt. Sync never panics and never
// returns a Go error to its caller; failures are data.
type Outcome struct {
	Success  bool   `json:"success"`
	ReportID string `json:"reportId,omitempty"`
	Queued   bool   `json:"queued,omitempty"`
	Error    string `json:"error,omitempty"`
	Message  string `json:"message,omitempty"`
}

// Engine moves a finished draft into the remote report store: locate
// or create the report row, refine the raw capture through the AI
// backend, and persist the generated content.
type Engine struct {
	store         *store.Store
	repo          *reports.Repository
	index         *reports.SummaryIndex
	refiner       refine.Refiner
	monitor       ConnectivityChecker
	hub           *websocket.Hub
	inspectorName string
}

// NewEngine wires a sync engine. hub may be nil in tests.
func NewEngine(localStore *store.Store, repo *reports.Repository, index *reports.SummaryIndex, refiner refine.Refiner, monitor ConnectivityChecker, hub *websocket.Hub, inspectorName string) *Engine {
	return &Engine{
		store:         localStore,
		repo:          repo,
		index:         index,
		refiner:       refiner,
		monitor:       monitor,
		hub:           hub,
		inspectorName: inspectorName,
	}
}

// SyncDraft pushes one draft to the remote store and refines it.
// The returned Outcome carries failure detail; the error channel of
// this operation is the Outcome, never a panic to the caller.
func (e *Engine) SyncDraft(ctx context.Context, draft *models.Draft) Outcome {
	if err := draft.Validate(); err != nil {
		return Outcome{Success: false, Error: err.Error()}
	}

	report, err := e.repo.LocateOrCreate(ctx, draft)
	if err != nil {
		return Outcome{Success: false, Error: fmt.Sprintf("failed to locate report: %v", err)}
	}

	var project *models.Project
	if p, perr := e.repo.Project(ctx, draft.ProjectID); perr != nil {
		// Master data is an enrichment; sync proceeds without it.
		logging.L().Warnw("Could not load project master data", "projectId", draft.ProjectID, "error", perr)
	} else {
		project = p
	}

	payload := refine.BuildPayload(draft, project, e.inspectorName)

	// Audit row; a failed audit write never blocks the sync itself.
	if err := e.repo.RecordAIRequest(ctx, report.ID, payload); err != nil {
		logging.L().Warnw("Failed to record AI request", "reportId", report.ID, "error", err)
	}

	started := time.Now()
	generated, err := e.refiner.Refine(ctx, payload)
	if err != nil {
		e.broadcastSyncResult(payload.ReportID, false, err.Error())
		return Outcome{Success: false, ReportID: report.ID, Error: err.Error()}
	}

	if err := e.repo.RecordAIResponse(ctx, report.ID, e.refiner.ModelName(), generated, time.Since(started)); err != nil {
		logging.L().Warnw("Failed to record AI response", "reportId", report.ID, "error", err)
	}

	if err := e.repo.SaveGenerated(ctx, report.ID, generated); err != nil {
		e.broadcastSyncResult(payload.ReportID, false, err.Error())
		return Outcome{Success: false, ReportID: report.ID, Error: fmt.Sprintf("failed to save generated content: %v", err)}
	}

	e.index.Invalidate()
	e.broadcastSyncResult(payload.ReportID, true, "")
	logging.L().Infow("✅ Draft synced", "reportId", report.ID, "project", draft.ProjectID, "date", draft.ReportDate)
	return Outcome{Success: true, ReportID: report.ID}
}

// Finish completes a draft: sync it now if online, queue it if not.
// Validation failures are returned directly and never queued; retrying
// an invalid draft can only fail the same way.
func (e *Engine) Finish(ctx context.Context, draft *models.Draft) Outcome {
	if err := draft.Validate(); err != nil {
		return Outcome{Success: false, Error: err.Error()}
	}

	if !e.monitor.IsOnline() {
		return e.queueDraft(draft, models.DraftStatusPendingSync, "")
	}

	outcome := e.SyncDraft(ctx, draft)
	if !outcome.Success {
		return e.queueDraft(draft, models.DraftStatusSyncFailed, outcome.Error)
	}

	e.store.DeleteDraft(draft.Key())
	e.broadcastQueueDepth()
	return outcome
}

// queueDraft puts a finished draft into the offline queue. The draft
// itself leaves the working store; the queue snapshot is authoritative.
func (e *Engine) queueDraft(draft *models.Draft, status models.DraftStatus, errorMessage string) Outcome {
	// Offline, so no master data; the drain pass rebuilds the payload
	// from the snapshot with the project loaded.
	payload := refine.BuildPayload(draft, nil, e.inspectorName)

	entry, err := e.store.Enqueue(draft, payload, status, errorMessage)
	if err != nil {
		return Outcome{Success: false, Error: fmt.Sprintf("failed to queue draft: %v", err)}
	}

	e.store.DeleteDraft(draft.Key())
	e.broadcastQueueDepth()

	logging.L().Infow("📥 Draft queued for later sync",
		"entry", entry.ID, "project", draft.ProjectID, "date", draft.ReportDate, "status", status)

	if status == models.DraftStatusSyncFailed {
		return Outcome{Success: false, Queued: true, Error: errorMessage}
	}
	return Outcome{Success: false, Queued: true, Message: OfflineMessage}
}

func (e *Engine) broadcastSyncResult(reportID string, success bool, message string) {
	if e.hub != nil {
		e.hub.BroadcastSyncResult(reportID, success, message)
	}
}

func (e *Engine) broadcastQueueDepth() {
	if e.hub != nil {
		e.hub.BroadcastQueueDepth(int64(e.store.QueueDepth()))
	}
}
