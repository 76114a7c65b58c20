package models

import (
	"time"
)

// DocumentStatus tracks a document through its ingestion lifecycle.
type DocumentStatus string

const (
	// StatusPending indicates the document record exists but ingestion has not started
	StatusPending DocumentStatus = "pending"
	// StatusProcessing indicates ingestion is running
	StatusProcessing DocumentStatus = "processing"
	// StatusCompleted indicates the document was chunked, embedded and indexed
	StatusCompleted DocumentStatus = "completed"
	// StatusError indicates ingestion failed (unreadable file, embedding or index failure)
	StatusError DocumentStatus = "error"
)

// CanTransition reports whether a status change is permitted by the
// lifecycle state machine. Completed documents may re-enter processing
// on re-ingestion; nothing transitions back to pending.
func (s DocumentStatus) CanTransition(to DocumentStatus) bool {
	switch s {
	case StatusPending:
		return to == StatusProcessing
	case StatusProcessing:
		return to == StatusCompleted || to == StatusError
	case StatusCompleted:
		return to == StatusProcessing
	case StatusError:
		return to == StatusProcessing
	}
	return false
}

// Document represents an uploaded document record. Status is owned by the
// ingestion lifecycle; Selected is an orthogonal flag toggled by the user
// and valid in any status.
type Document struct {
	ID        string         `json:"id"` // doc_<uuid>
	Name      string         `json:"name"`
	MediaType string         `json:"type"`
	Size      int64          `json:"size"`
	FilePath  string         `json:"file_path"` // stored upload on disk
	Status    DocumentStatus `json:"status"`
	Selected  bool           `json:"selected"`

	// StatusReason records why a document entered the error status
	StatusReason string `json:"status_reason,omitempty"`

	// ChunkCount is the number of chunks indexed during the last successful ingestion
	ChunkCount int `json:"chunk_count"`

	UploadedAt time.Time `json:"uploaded_at"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// DocumentStats summarizes the record store for the status surface.
type DocumentStats struct {
	TotalDocuments     int       `json:"total_documents"`
	CompletedDocuments int       `json:"completed_documents"`
	ErrorDocuments     int       `json:"error_documents"`
	SelectedDocuments  int       `json:"selected_documents"`
	TotalBytes         int64     `json:"total_bytes"`
	LastUpdated        time.Time `json:"last_updated"`
}
