package sync

import (
	"context"
	"sync"
	"time"

	"github.com/fieldvoice/fieldvoicego/internal/logging"
	"github.com/fieldvoice/fieldvoicego/internal/store"
)

// DrainResult summarizes one drain pass over the offline queue.
type DrainResult struct {
	Synced  int  `json:"synced"`
	Failed  int  `json:"failed"`
	Skipped bool `json:"skipped"`
}

// Drainer replays queued drafts against the sync engine when the node
// is back online. At most one drain pass runs at a time.
type Drainer struct {
	engine *Engine
	store  *store.Store

	mu         sync.Mutex
	inProgress bool

	stop     chan struct{}
	stopOnce sync.Once
}

// NewDrainer creates a queue drainer over the given engine.
func NewDrainer(engine *Engine, localStore *store.Store) *Drainer {
	return &Drainer{
		engine: engine,
		store:  localStore,
		stop:   make(chan struct{}),
	}
}

// Drain replays every pending queue entry once. Each entry gets exactly
// one attempt per pass; failures stay queued with their error recorded.
func (d *Drainer) Drain(ctx context.Context) DrainResult {
	d.mu.Lock()
	if d.inProgress {
		d.mu.Unlock()
		logging.L().Debugw("Drain already in progress, skipping")
		return DrainResult{Skipped: true}
	}
	d.inProgress = true
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.inProgress = false
		d.mu.Unlock()
	}()

	if !d.engine.monitor.IsOnline() {
		logging.L().Warnw("📴 Offline, queue drain skipped", "depth", d.store.QueueDepth())
		return DrainResult{Skipped: true}
	}

	// Snapshot the IDs up front so entries queued mid-pass wait for the
	// next pass and removals cannot shift our position.
	ids, err := d.store.PendingQueueIDs()
	if err != nil {
		logging.L().Errorw("Failed to list pending queue entries", "error", err)
		return DrainResult{}
	}
	if len(ids) == 0 {
		return DrainResult{}
	}

	logging.L().Infow("🔄 Draining sync queue", "pending", len(ids))

	var result DrainResult
	for _, id := range ids {
		select {
		case <-ctx.Done():
			logging.L().Warnw("Queue drain cancelled", "synced", result.Synced, "failed", result.Failed)
			return result
		default:
		}

		entry, err := d.store.QueueEntry(id)
		if err != nil {
			logging.L().Errorw("Failed to load queue entry", "entry", id, "error", err)
			result.Failed++
			continue
		}
		if entry == nil || !entry.NeedsSync() {
			// Removed or already handled since the snapshot.
			continue
		}

		draft, err := store.DraftFromEntry(entry)
		if err != nil {
			// A snapshot that cannot be decoded will never sync; mark it
			// failed so the inspector can see and discard it.
			logging.L().Errorw("Corrupt queue snapshot", "entry", id, "error", err)
			if merr := d.store.MarkQueueEntryFailed(id, "corrupt snapshot: "+err.Error()); merr != nil {
				logging.L().Errorw("Failed to mark queue entry", "entry", id, "error", merr)
			}
			result.Failed++
			continue
		}

		outcome := d.engine.SyncDraft(ctx, draft)
		if outcome.Success {
			if err := d.store.RemoveQueueEntry(id); err != nil {
				logging.L().Errorw("Failed to remove synced queue entry", "entry", id, "error", err)
			}
			result.Synced++
		} else {
			if err := d.store.MarkQueueEntryFailed(id, outcome.Error); err != nil {
				logging.L().Errorw("Failed to mark queue entry", "entry", id, "error", err)
			}
			result.Failed++
		}
	}

	logging.L().Infow("✅ Queue drain complete", "synced", result.Synced, "failed", result.Failed)
	if d.engine.hub != nil {
		d.engine.hub.BroadcastDrainResult(result.Synced, result.Failed)
		d.engine.hub.BroadcastQueueDepth(int64(d.store.QueueDepth()))
	}
	return result
}

// Start drains on the given interval until Stop or context cancel.
// A connectivity-restored callback should also call Drain directly so
// queued work does not wait out a full interval.
func (d *Drainer) Start(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				d.Drain(ctx)
			case <-ctx.Done():
				return
			case <-d.stop:
				return
			}
		}
	}()
}

// Stop halts the periodic drain loop.
func (d *Drainer) Stop() {
	d.stopOnce.Do(func() { close(d.stop) })
}
