// -----------------------------------------------------------------------
// Settings Service - Validated access to the retrieval configuration
// -----------------------------------------------------------------------

package settings

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/rogo/internal/interfaces"
	"github.com/ternarybob/rogo/internal/models"
)

// Service validates and persists the single RagSettings record. Changes
// only affect future ingestions and chats; existing indices keep the
// chunking they were built with.
type Service struct {
	storage  interfaces.SettingsStorage
	validate *validator.Validate
	logger   arbor.ILogger
}

// NewService creates a settings service
func NewService(storage interfaces.SettingsStorage, logger arbor.ILogger) *Service {
	return &Service{
		storage:  storage,
		validate: validator.New(),
		logger:   logger,
	}
}

// Get returns the current settings, falling back to defaults when
// nothing has been saved
func (s *Service) Get() (models.RagSettings, error) {
	return s.storage.Get()
}

// Update validates and persists new settings
func (s *Service) Update(settings models.RagSettings) (models.RagSettings, error) {
	if err := s.validate.Struct(settings); err != nil {
		return models.RagSettings{}, fmt.Errorf("invalid settings: %w", err)
	}
	if settings.ChunkOverlap >= settings.ChunkSize {
		return models.RagSettings{}, fmt.Errorf("invalid settings: chunk_overlap %d must be smaller than chunk_size %d",
			settings.ChunkOverlap, settings.ChunkSize)
	}

	if err := s.storage.Save(settings); err != nil {
		return models.RagSettings{}, fmt.Errorf("failed to save settings: %w", err)
	}

	s.logger.Info().
		Int("chunk_size", settings.ChunkSize).
		Int("chunk_overlap", settings.ChunkOverlap).
		Int("retrieval_k", settings.RetrievalK).
		Str("model", settings.Model).
		Msg("RAG settings updated")

	return settings, nil
}

// Reset restores the defaults and persists them
func (s *Service) Reset() (models.RagSettings, error) {
	defaults := models.DefaultRagSettings()
	if err := s.storage.Save(defaults); err != nil {
		return models.RagSettings{}, fmt.Errorf("failed to reset settings: %w", err)
	}
	return defaults, nil
}
