package interfaces

import (
	"context"

	"github.com/ternarybob/rogo/internal/models"
)

// Retriever answers similarity queries against a composed selection of
// document indices.
type Retriever interface {
	// Retrieve returns the top-k chunks ranked by descending similarity to
	// the query text.
	Retrieve(ctx context.Context, query string, k int) ([]models.ScoredChunk, error)
}

// RetrieverComposer builds a retriever over the currently selected
// documents. The composite is recomputed on every call; it is never cached
// across requests.
type RetrieverComposer interface {
	// ComposeRetriever loads the index of each given document, skipping
	// documents without one. Returns (nil, nil) when no index loads.
	ComposeRetriever(ctx context.Context, documentIDs []string) (Retriever, error)
}
