package badger

import (
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/rogo/internal/interfaces"
	"github.com/ternarybob/rogo/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

const settingsKey = "rag_settings"

// settingsRecord wraps RagSettings for badgerhold storage
type settingsRecord struct {
	Key       string `badgerhold:"key"`
	Settings  models.RagSettings
	UpdatedAt time.Time
}

// SettingsStorage implements the SettingsStorage interface for Badger
type SettingsStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewSettingsStorage creates a new SettingsStorage instance
func NewSettingsStorage(db *BadgerDB, logger arbor.ILogger) interfaces.SettingsStorage {
	return &SettingsStorage{
		db:     db,
		logger: logger,
	}
}

// Get returns the stored settings, or the defaults when none were saved yet
func (s *SettingsStorage) Get() (models.RagSettings, error) {
	var record settingsRecord
	err := s.db.Store().Get(settingsKey, &record)
	if err == badgerhold.ErrNotFound {
		return models.DefaultRagSettings(), nil
	}
	if err != nil {
		return models.RagSettings{}, fmt.Errorf("failed to get settings: %w", err)
	}
	return record.Settings, nil
}

func (s *SettingsStorage) Save(settings models.RagSettings) error {
	record := settingsRecord{
		Key:       settingsKey,
		Settings:  settings,
		UpdatedAt: time.Now(),
	}
	if err := s.db.Store().Upsert(settingsKey, record); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	s.logger.Debug().
		Int("chunk_size", settings.ChunkSize).
		Int("retrieval_k", settings.RetrievalK).
		Str("model", settings.Model).
		Msg("Settings saved")

	return nil
}
