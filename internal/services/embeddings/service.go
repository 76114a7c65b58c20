// -----------------------------------------------------------------------
// Embeddings Service - Batched embedding generation over the LLM service
// -----------------------------------------------------------------------

package embeddings

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/rogo/internal/interfaces"
)

// maxBatchSize bounds a single upstream embedding call
const maxBatchSize = 100

// Service adapts the LLM service's embedding capability to the pipeline:
// it batches large inputs, normalizes queries and pins the dimension
// observed on the first successful call so later mismatches surface early.
type Service struct {
	llm    interfaces.LLMService
	logger arbor.ILogger

	mu        sync.Mutex
	dimension int
}

// Compile-time interface assertion
var _ interfaces.EmbeddingService = (*Service)(nil)

// NewService creates an embedding service backed by the given LLM service
func NewService(llm interfaces.LLMService, logger arbor.ILogger) *Service {
	return &Service{
		llm:    llm,
		logger: logger,
	}
}

// Embed generates an embedding for one text
func (s *Service) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch generates embeddings for all texts, preserving order.
// Inputs larger than the upstream batch limit are split transparently.
func (s *Service) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += maxBatchSize {
		end := start + maxBatchSize
		if end > len(texts) {
			end = len(texts)
		}

		batch, err := s.llm.EmbedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("embedding batch %d-%d failed: %w", start, end, err)
		}
		vectors = append(vectors, batch...)
	}

	if err := s.checkDimension(vectors); err != nil {
		return nil, err
	}

	return vectors, nil
}

// EmbedQuery generates an embedding for a retrieval query
func (s *Service) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	return s.Embed(ctx, strings.TrimSpace(query))
}

// Dimension returns the embedding dimension seen so far, 0 before the
// first successful call
func (s *Service) Dimension() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dimension
}

// IsAvailable reports whether the embedding provider is configured
func (s *Service) IsAvailable(ctx context.Context) bool {
	return s.llm.IsConfigured()
}

func (s *Service) checkDimension(vectors [][]float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, v := range vectors {
		if s.dimension == 0 {
			s.dimension = len(v)
			continue
		}
		if len(v) != s.dimension {
			return fmt.Errorf("embedding dimension changed from %d to %d", s.dimension, len(v))
		}
	}
	return nil
}
