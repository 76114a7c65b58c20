package embeddings

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/rogo/internal/interfaces"
)

// mockLLM returns fixed-dimension vectors derived from text length
type mockLLM struct {
	configured bool
	dimension  int
	calls      int
	failAfter  int
}

func (m *mockLLM) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := m.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (m *mockLLM) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	m.calls++
	if m.failAfter > 0 && m.calls > m.failAfter {
		return nil, fmt.Errorf("provider unavailable")
	}
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		v := make([]float32, m.dimension)
		for j := range v {
			v[j] = float32(len(text)+j) / 100
		}
		vectors[i] = v
	}
	return vectors, nil
}

func (m *mockLLM) Generate(ctx context.Context, req *interfaces.GenerateRequest) (string, error) {
	return "", fmt.Errorf("not implemented")
}

func (m *mockLLM) IsConfigured() bool                    { return m.configured }
func (m *mockLLM) HealthCheck(ctx context.Context) error { return nil }
func (m *mockLLM) Close() error                          { return nil }

func TestEmbedBatch_PreservesOrderAndLength(t *testing.T) {
	svc := NewService(&mockLLM{configured: true, dimension: 4}, arbor.NewLogger())

	vectors, err := svc.EmbedBatch(context.Background(), []string{"a", "bb", "ccc"})
	require.NoError(t, err)
	require.Len(t, vectors, 3)
	for _, v := range vectors {
		assert.Len(t, v, 4)
	}
}

func TestEmbedBatch_SplitsLargeInput(t *testing.T) {
	mock := &mockLLM{configured: true, dimension: 2}
	svc := NewService(mock, arbor.NewLogger())

	texts := make([]string, 250)
	for i := range texts {
		texts[i] = fmt.Sprintf("text %d", i)
	}

	vectors, err := svc.EmbedBatch(context.Background(), texts)
	require.NoError(t, err)
	assert.Len(t, vectors, 250)
	assert.Equal(t, 3, mock.calls)
}

func TestEmbedBatch_EmptyInput(t *testing.T) {
	svc := NewService(&mockLLM{configured: true, dimension: 2}, arbor.NewLogger())

	vectors, err := svc.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, vectors)
}

func TestEmbedBatch_PropagatesProviderError(t *testing.T) {
	svc := NewService(&mockLLM{configured: true, dimension: 2, failAfter: 1}, arbor.NewLogger())

	texts := make([]string, 150)
	for i := range texts {
		texts[i] = "x"
	}

	_, err := svc.EmbedBatch(context.Background(), texts)
	assert.Error(t, err)
}

func TestDimension_PinnedAfterFirstCall(t *testing.T) {
	svc := NewService(&mockLLM{configured: true, dimension: 8}, arbor.NewLogger())

	assert.Equal(t, 0, svc.Dimension())

	_, err := svc.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, 8, svc.Dimension())
}

func TestEmbedQuery_TrimsWhitespace(t *testing.T) {
	mock := &mockLLM{configured: true, dimension: 2}
	svc := NewService(mock, arbor.NewLogger())

	padded, err := svc.EmbedQuery(context.Background(), "  hello  ")
	require.NoError(t, err)
	bare, err := svc.EmbedQuery(context.Background(), "hello")
	require.NoError(t, err)

	assert.Equal(t, bare, padded)
}

func TestIsAvailable(t *testing.T) {
	assert.True(t, NewService(&mockLLM{configured: true, dimension: 2}, arbor.NewLogger()).IsAvailable(context.Background()))
	assert.False(t, NewService(&mockLLM{configured: false, dimension: 2}, arbor.NewLogger()).IsAvailable(context.Background()))
}
