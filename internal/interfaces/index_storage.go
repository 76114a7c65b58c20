package interfaces

import (
	"errors"

	"github.com/ternarybob/rogo/internal/models"
)

// ErrIndexNotFound is returned by Load when no index exists for a document.
var ErrIndexNotFound = errors.New("index not found")

// IndexHandle is a queryable similarity index. Handles loaded from disk are
// immutable; Merge produces a new in-memory composite without touching the
// originals.
type IndexHandle interface {
	// DocumentIDs lists the documents whose chunks this handle contains.
	DocumentIDs() []string

	// Len returns the number of indexed chunks.
	Len() int

	// Dimension returns the embedding dimension of the stored vectors.
	Dimension() int

	// Search returns the top-k chunks by descending cosine similarity to
	// the query vector.
	Search(vector []float32, k int) []models.ScoredChunk
}

// IndexStorage owns one on-disk vector index per document.
type IndexStorage interface {
	// CreateOrAppend creates the document's index from the given
	// chunk/vector pairs, or appends to it if one already exists. Appends
	// are not idempotent at the batch level: re-appending a succeeded
	// batch duplicates entries.
	CreateOrAppend(documentID, documentName string, chunks []models.Chunk, vectors [][]float32) error

	// Load reads the document's index from disk. Returns ErrIndexNotFound
	// when absent.
	Load(documentID string) (IndexHandle, error)

	// Exists reports whether an index file is present for the document.
	Exists(documentID string) bool

	// Delete removes the on-disk index. Deleting a non-existent index is a no-op.
	Delete(documentID string) error

	// Merge combines handles into one composite handle. Merge order only
	// affects tie-break order among equal-similarity results.
	Merge(handles ...IndexHandle) (IndexHandle, error)

	// ListDocumentIDs returns the IDs of all documents with an index on disk.
	ListDocumentIDs() ([]string, error)
}
