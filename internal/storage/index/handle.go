package index

import (
	"fmt"
	"math"
	"sort"

	"github.com/ternarybob/rogo/internal/models"
)

// entry is one indexed chunk: the text, its embedding and origin metadata.
type entry struct {
	Text     string    `json:"text"`
	Vector   []float32 `json:"vector"`
	Page     int       `json:"page"`
	Sequence int       `json:"sequence"`

	// Denormalized for citation assembly without a record-store lookup
	DocumentID   string `json:"document_id"`
	DocumentName string `json:"document_name"`
}

// Handle is an in-memory similarity index over one or more documents'
// chunks. Handles are immutable once built; merging produces a new handle.
type Handle struct {
	dimension int
	entries   []entry
}

// DocumentIDs lists the documents whose chunks this handle contains,
// in first-seen order.
func (h *Handle) DocumentIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, e := range h.entries {
		if !seen[e.DocumentID] {
			seen[e.DocumentID] = true
			ids = append(ids, e.DocumentID)
		}
	}
	return ids
}

// Len returns the number of indexed chunks
func (h *Handle) Len() int {
	return len(h.entries)
}

// Dimension returns the embedding dimension of the stored vectors
func (h *Handle) Dimension() int {
	return h.dimension
}

// Search returns the top-k chunks by descending cosine similarity.
// Ties keep insertion order, so merge order decides tie-breaks. A query
// vector whose length differs from the index dimension matches nothing;
// comparing prefixes would turn a dimension mismatch into plausible scores.
func (h *Handle) Search(vector []float32, k int) []models.ScoredChunk {
	if k <= 0 || len(h.entries) == 0 || len(vector) != h.dimension {
		return nil
	}

	scored := make([]models.ScoredChunk, 0, len(h.entries))
	for _, e := range h.entries {
		scored = append(scored, models.ScoredChunk{
			Chunk: models.Chunk{
				Text:       e.Text,
				DocumentID: e.DocumentID,
				Page:       e.Page,
				Sequence:   e.Sequence,
			},
			DocumentName: e.DocumentName,
			Score:        cosineSimilarity(vector, e.Vector),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if k > len(scored) {
		k = len(scored)
	}
	return scored[:k]
}

// merge combines handles into a new composite without mutating the inputs
func merge(handles ...*Handle) (*Handle, error) {
	merged := &Handle{}
	for _, h := range handles {
		if h == nil || h.Len() == 0 {
			continue
		}
		if merged.dimension == 0 {
			merged.dimension = h.dimension
		} else if h.dimension != merged.dimension {
			return nil, fmt.Errorf("embedding dimension mismatch: %d vs %d", merged.dimension, h.dimension)
		}
		merged.entries = append(merged.entries, h.entries...)
	}
	return merged, nil
}

// cosineSimilarity computes the cosine of the angle between two vectors.
// Callers guarantee equal lengths; Search rejects mismatched queries.
func cosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
