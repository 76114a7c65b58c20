package interfaces

import (
	"context"
)

// EmbeddingService generates vector embeddings for chunks and queries.
type EmbeddingService interface {
	// Generate embedding for raw text
	Embed(ctx context.Context, text string) ([]float32, error)

	// Generate embeddings for a batch of texts, order-preserving
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Generate query embedding (may have different preparation than document embedding)
	EmbedQuery(ctx context.Context, query string) ([]float32, error)

	// Dimension returns the fixed embedding dimension
	Dimension() int

	// IsAvailable checks if the embedding capability is configured and reachable
	IsAvailable(ctx context.Context) bool
}
