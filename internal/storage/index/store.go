package index

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/rogo/internal/interfaces"
	"github.com/ternarybob/rogo/internal/models"
)

// indexFile is the on-disk representation of one document's index
type indexFile struct {
	DocumentID   string  `json:"document_id"`
	DocumentName string  `json:"document_name"`
	Dimension    int     `json:"dimension"`
	Entries      []entry `json:"entries"`
}

// Store owns one vector index file per document under a base directory:
// <dir>/<documentID>.json. Composition happens by merging loaded copies in
// memory; stored files are never mutated by a merge.
type Store struct {
	dir    string
	logger arbor.ILogger

	// Serializes create/append cycles per document file
	mu sync.Mutex
}

// Compile-time interface assertion
var _ interfaces.IndexStorage = (*Store)(nil)

// NewStore creates an index store rooted at dir
func NewStore(dir string, logger arbor.ILogger) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create index directory: %w", err)
	}
	return &Store{
		dir:    dir,
		logger: logger,
	}, nil
}

func (s *Store) path(documentID string) string {
	return filepath.Join(s.dir, documentID+".json")
}

// CreateOrAppend creates the document's index from the given chunk/vector
// pairs, or appends to an existing one. Appends are not idempotent: the
// caller must not retry a succeeded batch.
func (s *Store) CreateOrAppend(documentID, documentName string, chunks []models.Chunk, vectors [][]float32) error {
	if documentID == "" {
		return fmt.Errorf("document ID is required")
	}
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunk/vector length mismatch: %d vs %d", len(chunks), len(vectors))
	}
	if len(chunks) == 0 {
		return fmt.Errorf("no chunks to index for %s", documentID)
	}

	dim := len(vectors[0])
	for i, v := range vectors {
		if len(v) != dim {
			return fmt.Errorf("vector %d has dimension %d, expected %d", i, len(v), dim)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file := indexFile{
		DocumentID:   documentID,
		DocumentName: documentName,
		Dimension:    dim,
	}

	data, err := os.ReadFile(s.path(documentID))
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &file); err != nil {
			return fmt.Errorf("failed to decode index for %s: %w", documentID, err)
		}
		if file.Dimension != dim {
			return fmt.Errorf("embedding dimension mismatch for %s: index has %d, batch has %d", documentID, file.Dimension, dim)
		}
	case os.IsNotExist(err):
		// New index
	default:
		return fmt.Errorf("failed to read index for %s: %w", documentID, err)
	}

	for i, chunk := range chunks {
		file.Entries = append(file.Entries, entry{
			Text:         chunk.Text,
			Vector:       vectors[i],
			Page:         chunk.Page,
			Sequence:     chunk.Sequence,
			DocumentID:   documentID,
			DocumentName: documentName,
		})
	}

	return s.write(documentID, &file)
}

// write persists the index file atomically via rename
func (s *Store) write(documentID string, file *indexFile) error {
	data, err := json.Marshal(file)
	if err != nil {
		return fmt.Errorf("failed to encode index for %s: %w", documentID, err)
	}

	tmp := s.path(documentID) + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write index for %s: %w", documentID, err)
	}
	if err := os.Rename(tmp, s.path(documentID)); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to commit index for %s: %w", documentID, err)
	}

	s.logger.Debug().
		Str("doc_id", documentID).
		Int("entries", len(file.Entries)).
		Int("dimension", file.Dimension).
		Msg("Index written")

	return nil
}

// Load reads the document's index into an immutable handle
func (s *Store) Load(documentID string) (interfaces.IndexHandle, error) {
	data, err := os.ReadFile(s.path(documentID))
	if os.IsNotExist(err) {
		return nil, interfaces.ErrIndexNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read index for %s: %w", documentID, err)
	}

	var file indexFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to decode index for %s: %w", documentID, err)
	}

	return &Handle{
		dimension: file.Dimension,
		entries:   file.Entries,
	}, nil
}

// Exists reports whether an index file is present for the document
func (s *Store) Exists(documentID string) bool {
	_, err := os.Stat(s.path(documentID))
	return err == nil
}

// Delete removes the on-disk index; deleting a missing index is a no-op
func (s *Store) Delete(documentID string) error {
	err := os.Remove(s.path(documentID))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete index for %s: %w", documentID, err)
	}
	return nil
}

// Merge combines handles into one composite handle
func (s *Store) Merge(handles ...interfaces.IndexHandle) (interfaces.IndexHandle, error) {
	concrete := make([]*Handle, 0, len(handles))
	for _, h := range handles {
		if h == nil {
			continue
		}
		ch, ok := h.(*Handle)
		if !ok {
			return nil, fmt.Errorf("cannot merge foreign index handle %T", h)
		}
		concrete = append(concrete, ch)
	}
	return merge(concrete...)
}

// ListDocumentIDs returns the IDs of all documents with an index on disk
func (s *Store) ListDocumentIDs() ([]string, error) {
	files, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read index directory: %w", err)
	}

	var ids []string
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(f.Name(), ".json"))
	}
	return ids, nil
}
