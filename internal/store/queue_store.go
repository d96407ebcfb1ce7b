package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/fieldvoice/fieldvoicego/internal/models"
)

// Enqueue appends a queue entry for a draft whose finalize attempt
// failed. The entry carries both the outbound webhook payload and a
// full snapshot of the draft so a later retry needs nothing else.
func (s *Store) Enqueue(draft *models.Draft, payload interface{}, status models.DraftStatus, errorMessage string) (*models.QueueEntry, error) {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize sync payload: %w", err)
	}
	snapshot, err := json.Marshal(draft)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize draft snapshot: %w", err)
	}

	entry := models.QueueEntry{
		ProjectID:    draft.ProjectID,
		ProjectName:  draft.ProjectName,
		ReportDate:   draft.ReportDate,
		CaptureMode:  string(draft.CaptureMode),
		Payload:      payloadJSON,
		Snapshot:     snapshot,
		Status:       status,
		ErrorMessage: errorMessage,
		LastSaved:    time.Now().UTC(),
	}
	if err := s.db.Create(&entry).Error; err != nil {
		return nil, fmt.Errorf("failed to enqueue draft: %w", err)
	}
	return &entry, nil
}

// QueueEntries returns all queue entries in insertion order.
func (s *Store) QueueEntries() ([]models.QueueEntry, error) {
	var entries []models.QueueEntry
	if err := s.db.Order("id ASC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list queue: %w", err)
	}
	return entries, nil
}

// PendingQueueIDs returns a stable snapshot of the IDs of entries that
// still need syncing. Drain passes iterate this snapshot and remove by
// identity, so deletions mid-pass cannot skip unvisited entries.
func (s *Store) PendingQueueIDs() ([]uint, error) {
	var ids []uint
	err := s.db.Model(&models.QueueEntry{}).
		Where("status IN ?", []models.DraftStatus{models.DraftStatusPendingSync, models.DraftStatusSyncFailed}).
		Order("id ASC").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot queue: %w", err)
	}
	return ids, nil
}

// QueueEntry returns a single entry by id, or nil if it no longer exists.
func (s *Store) QueueEntry(id uint) (*models.QueueEntry, error) {
	var entry models.QueueEntry
	err := s.db.First(&entry, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load queue entry %d: %w", id, err)
	}
	return &entry, nil
}

// MarkQueueEntryFailed updates an entry in place after a failed retry.
func (s *Store) MarkQueueEntryFailed(id uint, errorMessage string) error {
	return s.db.Model(&models.QueueEntry{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        models.DraftStatusSyncFailed,
			"error_message": errorMessage,
			"last_saved":    time.Now().UTC(),
		}).Error
}

// RemoveQueueEntry deletes an entry by identity. Idempotent.
func (s *Store) RemoveQueueEntry(id uint) error {
	return s.db.Delete(&models.QueueEntry{}, id).Error
}

// QueueDepth returns how many entries still need syncing.
func (s *Store) QueueDepth() int {
	var count int64
	s.db.Model(&models.QueueEntry{}).
		Where("status IN ?", []models.DraftStatus{models.DraftStatusPendingSync, models.DraftStatusSyncFailed}).
		Count(&count)
	return int(count)
}

// DraftFromEntry reconstructs the draft snapshot carried by a queue entry.
func DraftFromEntry(entry *models.QueueEntry) (*models.Draft, error) {
	var draft models.Draft
	if err := json.Unmarshal(entry.Snapshot, &draft); err != nil {
		return nil, fmt.Errorf("queue entry %d has an unreadable draft snapshot: %w", entry.ID, err)
	}
	return &draft, nil
}
