package badger

import (
	"fmt"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/rogo/internal/interfaces"
	"github.com/ternarybob/rogo/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// DocumentStorage implements the DocumentStorage interface for Badger.
// All mutations of an existing record go through Update, which serializes
// read-modify-write cycles per document ID so a status transition racing a
// selection toggle never loses a write.
type DocumentStorage struct {
	db     *BadgerDB
	logger arbor.ILogger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewDocumentStorage creates a new DocumentStorage instance
func NewDocumentStorage(db *BadgerDB, logger arbor.ILogger) interfaces.DocumentStorage {
	return &DocumentStorage{
		db:     db,
		logger: logger,
		locks:  make(map[string]*sync.Mutex),
	}
}

// recordLock returns the mutex guarding one document's read-modify-write cycle
func (s *DocumentStorage) recordLock(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[id] = lock
	}
	return lock
}

func (s *DocumentStorage) releaseLock(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.locks, id)
}

func (s *DocumentStorage) Save(doc *models.Document) error {
	if doc.ID == "" {
		return fmt.Errorf("document ID is required")
	}

	now := time.Now()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	if err := s.db.Store().Upsert(doc.ID, doc); err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}
	return nil
}

func (s *DocumentStorage) Get(id string) (*models.Document, error) {
	var doc models.Document
	if err := s.db.Store().Get(id, &doc); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, interfaces.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return &doc, nil
}

func (s *DocumentStorage) List() ([]*models.Document, error) {
	var docs []models.Document
	if err := s.db.Store().Find(&docs, badgerhold.Where("ID").Ne("")); err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	result := make([]*models.Document, len(docs))
	for i := range docs {
		result[i] = &docs[i]
	}
	return result, nil
}

func (s *DocumentStorage) GetSelected() ([]*models.Document, error) {
	var docs []models.Document
	if err := s.db.Store().Find(&docs, badgerhold.Where("Selected").Eq(true)); err != nil {
		return nil, fmt.Errorf("failed to get selected documents: %w", err)
	}

	result := make([]*models.Document, len(docs))
	for i := range docs {
		result[i] = &docs[i]
	}
	return result, nil
}

// Update applies fn to the record under the per-ID lock and persists the result
func (s *DocumentStorage) Update(id string, fn func(*models.Document) error) (*models.Document, error) {
	lock := s.recordLock(id)
	lock.Lock()
	defer lock.Unlock()

	doc, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if err := fn(doc); err != nil {
		return nil, err
	}

	if err := s.Save(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *DocumentStorage) UpdateStatus(id string, to models.DocumentStatus, reason string) (*models.Document, error) {
	doc, err := s.Update(id, func(doc *models.Document) error {
		if doc.Status == to {
			doc.StatusReason = reason
			return nil
		}
		if !doc.Status.CanTransition(to) {
			return fmt.Errorf("invalid status transition %s -> %s for %s", doc.Status, to, id)
		}
		doc.Status = to
		doc.StatusReason = reason
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug().
		Str("doc_id", id).
		Str("status", string(to)).
		Msg("Document status updated")

	return doc, nil
}

func (s *DocumentStorage) SetSelected(id string, selected bool) (*models.Document, error) {
	return s.Update(id, func(doc *models.Document) error {
		doc.Selected = selected
		return nil
	})
}

func (s *DocumentStorage) Delete(id string) error {
	lock := s.recordLock(id)
	lock.Lock()
	defer func() {
		lock.Unlock()
		s.releaseLock(id)
	}()

	if err := s.db.Store().Delete(id, &models.Document{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil
		}
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}

func (s *DocumentStorage) Count() (int, error) {
	count, err := s.db.Store().Count(&models.Document{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return int(count), nil
}

func (s *DocumentStorage) Stats() (*models.DocumentStats, error) {
	docs, err := s.List()
	if err != nil {
		return nil, err
	}

	stats := &models.DocumentStats{
		TotalDocuments: len(docs),
		LastUpdated:    time.Now(),
	}
	for _, doc := range docs {
		stats.TotalBytes += doc.Size
		if doc.Selected {
			stats.SelectedDocuments++
		}
		switch doc.Status {
		case models.StatusCompleted:
			stats.CompletedDocuments++
		case models.StatusError:
			stats.ErrorDocuments++
		}
	}
	return stats, nil
}
