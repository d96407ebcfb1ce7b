// Package store is the device-local persistence layer: the active
// draft per (project, date), the offline sync queue, and small
// settings. It is a best-effort cache — the remote store becomes
// authoritative once a draft has synced.
package store

import (
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/fieldvoice/fieldvoicego/internal/models"
)

const activeProjectKey = "active_project_id"

// Store is the local SQLite-backed store.
type Store struct {
	db *gorm.DB
}

// Open opens (creating if needed) the local store at path.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}

	if err := db.AutoMigrate(
		&models.StoredDraft{},
		&models.QueueEntry{},
		&models.Setting{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate local store: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ActiveProjectID returns the currently selected project, or "" if none.
func (s *Store) ActiveProjectID() string {
	var setting models.Setting
	if err := s.db.First(&setting, "key = ?", activeProjectKey).Error; err != nil {
		return ""
	}
	return setting.Value
}

// SetActiveProjectID persists the active-project pointer.
func (s *Store) SetActiveProjectID(projectID string) error {
	setting := models.Setting{Key: activeProjectKey, Value: projectID}
	return s.db.Save(&setting).Error
}
