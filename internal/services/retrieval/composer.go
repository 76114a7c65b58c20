// -----------------------------------------------------------------------
// Retrieval Service - Selection-time index composition and search
// -----------------------------------------------------------------------

package retrieval

import (
	"context"
	"errors"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/rogo/internal/interfaces"
	"github.com/ternarybob/rogo/internal/models"
)

// Composer builds a retriever over the selected documents by merging
// loaded copies of their indices. Stored indices are never mutated; the
// composite lives only as long as the request that asked for it.
type Composer struct {
	indexStorage interfaces.IndexStorage
	embedder     interfaces.EmbeddingService
	logger       arbor.ILogger
}

// Compile-time interface assertion
var _ interfaces.RetrieverComposer = (*Composer)(nil)

// NewComposer creates a retrieval composer
func NewComposer(indexStorage interfaces.IndexStorage, embedder interfaces.EmbeddingService, logger arbor.ILogger) *Composer {
	return &Composer{
		indexStorage: indexStorage,
		embedder:     embedder,
		logger:       logger,
	}
}

// ComposeRetriever loads each selected document's index and merges them
// into one searchable composite. Documents without an index are skipped;
// when nothing loads the composer returns (nil, nil) so the caller can
// take its no-context path.
func (c *Composer) ComposeRetriever(ctx context.Context, documentIDs []string) (interfaces.Retriever, error) {
	handles := make([]interfaces.IndexHandle, 0, len(documentIDs))
	for _, id := range documentIDs {
		handle, err := c.indexStorage.Load(id)
		if err != nil {
			if errors.Is(err, interfaces.ErrIndexNotFound) {
				c.logger.Debug().Str("document_id", id).Msg("Skipping selected document without index")
				continue
			}
			return nil, fmt.Errorf("failed to load index for document %s: %w", id, err)
		}
		if handle.Len() == 0 {
			continue
		}
		handles = append(handles, handle)
	}

	if len(handles) == 0 {
		return nil, nil
	}

	composite, err := c.indexStorage.Merge(handles...)
	if err != nil {
		return nil, fmt.Errorf("failed to merge %d indices: %w", len(handles), err)
	}

	c.logger.Debug().
		Int("documents", len(handles)).
		Int("chunks", composite.Len()).
		Msg("Composed retriever over selection")

	return &retriever{
		index:    composite,
		embedder: c.embedder,
		logger:   c.logger,
	}, nil
}

// retriever answers similarity queries against one composed index
type retriever struct {
	index    interfaces.IndexHandle
	embedder interfaces.EmbeddingService
	logger   arbor.ILogger
}

// Retrieve embeds the query and returns the top-k most similar chunks
func (r *retriever) Retrieve(ctx context.Context, query string, k int) ([]models.ScoredChunk, error) {
	if k <= 0 {
		return nil, nil
	}

	vector, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(vector) != r.index.Dimension() {
		return nil, fmt.Errorf("query embedding dimension %d does not match index dimension %d", len(vector), r.index.Dimension())
	}

	return r.index.Search(vector, k), nil
}
