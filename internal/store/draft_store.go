package store

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/fieldvoice/fieldvoicego/internal/logging"
	"github.com/fieldvoice/fieldvoicego/internal/models"
)

// GetDraft returns the stored draft for (projectID, reportDate), or nil
// if none exists. A stored draft whose embedded identity does not match
// the requested key is stale — it is deleted and nil is returned.
func (s *Store) GetDraft(projectID, reportDate string) *models.Draft {
	key := models.DraftKey(projectID, reportDate)

	var row models.StoredDraft
	err := s.db.First(&row, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		logging.L().Errorw("Failed to read draft", "key", key, "error", err)
		return nil
	}

	var draft models.Draft
	if err := json.Unmarshal(row.Payload, &draft); err != nil {
		logging.L().Errorw("Failed to parse stored draft, discarding", "key", key, "error", err)
		s.DeleteDraft(key)
		return nil
	}

	if draft.ProjectID != projectID || draft.ReportDate != reportDate {
		// Draft is for a different project or date - clear it
		logging.L().Infow("Stale draft found, clearing", "key", key,
			"storedProject", draft.ProjectID, "storedDate", draft.ReportDate)
		s.DeleteDraft(key)
		return nil
	}

	return &draft
}

// SaveDraft overwrites the stored value under the draft's own key.
// Last write wins; there is no merge. Failures are logged and swallowed
// so the in-memory flow keeps working.
func (s *Store) SaveDraft(draft *models.Draft) {
	draft.LastSaved = time.Now().UTC()

	payload, err := json.Marshal(draft)
	if err != nil {
		logging.L().Errorw("Failed to serialize draft", "key", draft.Key(), "error", err)
		return
	}

	row := models.StoredDraft{
		Key:        draft.Key(),
		ProjectID:  draft.ProjectID,
		ReportDate: draft.ReportDate,
		Payload:    payload,
		LastSaved:  draft.LastSaved,
	}
	if err := s.db.Save(&row).Error; err != nil {
		logging.L().Errorw("Failed to save draft", "key", draft.Key(), "error", err)
	}
}

// DeleteDraft removes the stored draft under key. Idempotent.
func (s *Store) DeleteDraft(key string) {
	if err := s.db.Delete(&models.StoredDraft{}, "key = ?", key).Error; err != nil {
		logging.L().Errorw("Failed to delete draft", "key", key, "error", err)
	}
}

// DebouncedSaver coalesces rapid draft saves: a save arriving within
// the quiet interval of the previous one for the same key replaces it,
// so continuous editing produces one write per pause rather than one
// per keystroke.
type DebouncedSaver struct {
	store    *Store
	interval time.Duration

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// NewDebouncedSaver creates a debounced saver over the store.
func NewDebouncedSaver(store *Store, interval time.Duration) *DebouncedSaver {
	return &DebouncedSaver{
		store:    store,
		interval: interval,
		timers:   make(map[string]*time.Timer),
	}
}

// Save schedules the draft to be persisted after the quiet interval,
// replacing any save already pending for the same key.
func (d *DebouncedSaver) Save(draft *models.Draft) {
	// Snapshot now so later mutations by the caller don't leak into
	// the pending write.
	snapshot := *draft
	key := snapshot.Key()

	d.mu.Lock()
	defer d.mu.Unlock()

	if timer, ok := d.timers[key]; ok {
		timer.Stop()
	}
	d.timers[key] = time.AfterFunc(d.interval, func() {
		d.store.SaveDraft(&snapshot)
		d.mu.Lock()
		delete(d.timers, key)
		d.mu.Unlock()
	})
}

// Flush cancels any pending save for the draft's key and persists the
// draft immediately. Used before a finalize so the stored snapshot
// never lags the editor.
func (d *DebouncedSaver) Flush(draft *models.Draft) {
	d.mu.Lock()
	if timer, ok := d.timers[draft.Key()]; ok {
		timer.Stop()
		delete(d.timers, draft.Key())
	}
	d.mu.Unlock()

	d.store.SaveDraft(draft)
}
