package interfaces

import (
	"errors"
	"time"

	"github.com/ternarybob/rogo/internal/models"
)

// ErrDocumentNotFound is returned when a record does not exist.
var ErrDocumentNotFound = errors.New("document not found")

// DocumentStorage is the shared record store holding all Document metadata.
// Status mutations go through Update/UpdateStatus so a transition racing a
// selection toggle on the same record never loses a write.
type DocumentStorage interface {
	Save(doc *models.Document) error
	Get(id string) (*models.Document, error)
	List() ([]*models.Document, error)
	GetSelected() ([]*models.Document, error)

	// Update applies fn to the record under the store's per-ID lock and
	// persists the result. fn returning an error aborts the update.
	Update(id string, fn func(*models.Document) error) (*models.Document, error)

	// UpdateStatus transitions the document's status, rejecting transitions
	// the lifecycle state machine does not permit.
	UpdateStatus(id string, to models.DocumentStatus, reason string) (*models.Document, error)

	// SetSelected toggles the selection flag, valid in any status.
	SetSelected(id string, selected bool) (*models.Document, error)

	// Delete removes the record. Deleting a missing record is a no-op.
	Delete(id string) error

	Count() (int, error)
	Stats() (*models.DocumentStats, error)
}

// SettingsStorage persists the single RagSettings record.
type SettingsStorage interface {
	Get() (models.RagSettings, error)
	Save(settings models.RagSettings) error
}

// ChatStorage persists chat sessions and their messages.
type ChatStorage interface {
	SaveMessage(msg *models.ChatMessage) error
	GetMessages(sessionID string) ([]*models.ChatMessage, error)
	SaveSession(session *models.ChatSession) error
	GetSession(id string) (*models.ChatSession, error)
	ListSessions() ([]*models.ChatSession, error)
	DeleteSession(id string) error
}

// IngestTask is a queued ingestion request. Tasks are durable so documents
// stuck in processing can be resumed after a restart.
type IngestTask struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	Attempts   int       `json:"attempts"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// QueueStorage is the durable ingestion work queue.
type QueueStorage interface {
	Enqueue(task *IngestTask) error

	// Dequeue removes and returns the oldest task, or nil when empty.
	Dequeue() (*IngestTask, error)

	Pending() ([]*IngestTask, error)
	Len() (int, error)
}

// StorageManager aggregates the badger-backed stores.
type StorageManager interface {
	DocumentStorage() DocumentStorage
	SettingsStorage() SettingsStorage
	ChatStorage() ChatStorage
	QueueStorage() QueueStorage
	Close() error
}
