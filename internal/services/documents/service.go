// -----------------------------------------------------------------------
// Documents Service - Upload, selection and removal of documents
// -----------------------------------------------------------------------

package documents

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/rogo/internal/common"
	"github.com/ternarybob/rogo/internal/interfaces"
	"github.com/ternarybob/rogo/internal/models"
)

// ErrDocumentProcessing is returned when an operation conflicts with an
// ingestion already in flight.
var ErrDocumentProcessing = errors.New("document is already processing")

// Service owns the document records and their stored files. Ingestion is
// delegated to the ingest service; deletion is best-effort across the
// record, the file and the index.
type Service struct {
	uploadDir string
	documents interfaces.DocumentStorage
	index     interfaces.IndexStorage
	ingest    interfaces.IngestService
	logger    arbor.ILogger
}

// NewService creates the documents service, ensuring the upload directory
// exists
func NewService(
	uploadDir string,
	documents interfaces.DocumentStorage,
	index interfaces.IndexStorage,
	ingest interfaces.IngestService,
	logger arbor.ILogger,
) (*Service, error) {
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &Service{
		uploadDir: uploadDir,
		documents: documents,
		index:     index,
		ingest:    ingest,
		logger:    logger,
	}, nil
}

// Upload stores the file, creates a pending record and schedules
// ingestion. The returned document is in pending or processing state; the
// caller observes completion through status polling or the event stream.
func (s *Service) Upload(name string, content io.Reader) (*models.Document, error) {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "" || name == "." {
		return nil, fmt.Errorf("file name is required")
	}

	id := common.NewDocumentID()
	path := filepath.Join(s.uploadDir, fmt.Sprintf("%s_%s", id, name))

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}
	size, err := io.Copy(f, content)
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to write upload: %w", err)
	}

	doc := &models.Document{
		ID:         id,
		Name:       name,
		MediaType:  mediaTypeFor(name),
		Size:       size,
		FilePath:   path,
		Status:     models.StatusPending,
		UploadedAt: time.Now(),
	}
	if err := s.documents.Save(doc); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to save document record: %w", err)
	}

	if _, err := s.ingest.Schedule(doc.ID); err != nil {
		s.logger.Error().Err(err).Str("document_id", doc.ID).Msg("Failed to schedule ingestion")
		// A document that never started ingesting goes straight to error
		failed, uErr := s.documents.Update(doc.ID, func(d *models.Document) error {
			d.Status = models.StatusError
			d.StatusReason = "failed to schedule ingestion"
			return nil
		})
		if uErr != nil {
			s.logger.Error().Err(uErr).Str("document_id", doc.ID).Msg("Failed to persist error status")
			return doc, nil
		}
		return failed, nil
	}

	s.logger.Info().
		Str("document_id", doc.ID).
		Str("name", doc.Name).
		Int64("size", size).
		Msg("Document uploaded")

	return doc, nil
}

// List returns all document records
func (s *Service) List() ([]*models.Document, error) {
	return s.documents.List()
}

// Get returns one document record
func (s *Service) Get(id string) (*models.Document, error) {
	return s.documents.Get(id)
}

// SetSelected toggles a document's membership in the chat selection.
// Valid in any status; only completed documents contribute indices.
func (s *Service) SetSelected(id string, selected bool) (*models.Document, error) {
	return s.documents.SetSelected(id, selected)
}

// Reprocess schedules a fresh ingestion for the document. Allowed from
// completed and error; the rebuilt index replaces the old one.
func (s *Service) Reprocess(id string) (*models.Document, error) {
	doc, err := s.documents.Get(id)
	if err != nil {
		return nil, err
	}
	if doc.Status == models.StatusProcessing {
		return nil, fmt.Errorf("%w: %s", ErrDocumentProcessing, id)
	}

	if _, err := s.ingest.Schedule(id); err != nil {
		return nil, fmt.Errorf("failed to schedule reprocessing: %w", err)
	}
	return doc, nil
}

// Delete removes the record, the stored file and the index. Removal is
// best-effort: failures after the record is gone are logged as warnings,
// not rolled back.
func (s *Service) Delete(id string) error {
	doc, err := s.documents.Get(id)
	if err != nil {
		return err
	}

	if err := s.documents.Delete(id); err != nil {
		return fmt.Errorf("failed to delete document record: %w", err)
	}

	if err := s.index.Delete(id); err != nil {
		s.logger.Warn().Err(err).Str("document_id", id).Msg("Failed to delete index during document removal")
	}
	if doc.FilePath != "" {
		if err := os.Remove(doc.FilePath); err != nil && !os.IsNotExist(err) {
			s.logger.Warn().Err(err).Str("document_id", id).Msg("Failed to delete stored file during document removal")
		}
	}

	s.logger.Info().Str("document_id", id).Str("name", doc.Name).Msg("Document deleted")
	return nil
}

// Stats summarizes the document corpus
func (s *Service) Stats() (*models.DocumentStats, error) {
	return s.documents.Stats()
}

// mediaTypeFor derives the loader media type from the file extension
func mediaTypeFor(name string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if ext == "" {
		return "txt"
	}
	return ext
}
