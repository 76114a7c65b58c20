package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/rogo/internal/models"
)

func segs(texts ...string) []models.Segment {
	out := make([]models.Segment, len(texts))
	for i, t := range texts {
		out[i] = models.Segment{Text: t, Page: i + 1}
	}
	return out
}

func TestChunk_ShortTextIsSingleChunk(t *testing.T) {
	c := NewChunker(arbor.NewLogger())

	chunks := c.Chunk(segs("a short paragraph"), "doc_1", 1000, 200)
	require.Len(t, chunks, 1)
	assert.Equal(t, "a short paragraph", chunks[0].Text)
	assert.Equal(t, "doc_1", chunks[0].DocumentID)
	assert.Equal(t, 1, chunks[0].Page)
	assert.Equal(t, 0, chunks[0].Sequence)
}

func TestChunk_RespectsSizeLimit(t *testing.T) {
	c := NewChunker(arbor.NewLogger())

	text := strings.Repeat("the quick brown fox jumps over the lazy dog. ", 50)
	chunks := c.Chunk(segs(text), "doc_1", 100, 20)

	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk.Text), 100)
		assert.NotEmpty(t, strings.TrimSpace(chunk.Text))
	}
}

func TestChunk_SmallerSizeProducesMoreChunks(t *testing.T) {
	c := NewChunker(arbor.NewLogger())

	text := strings.Repeat("lorem ipsum dolor sit amet consectetur. ", 100)
	large := c.Chunk(segs(text), "doc_1", 800, 100)
	small := c.Chunk(segs(text), "doc_1", 200, 50)

	assert.Greater(t, len(small), len(large))
}

func TestChunk_OverlapCarriesTailForward(t *testing.T) {
	c := NewChunker(arbor.NewLogger())

	words := make([]string, 40)
	for i := range words {
		words[i] = "word" + string(rune('a'+i%26))
	}
	text := strings.Join(words, " ")

	chunks := c.Chunk(segs(text), "doc_1", 60, 20)
	require.Greater(t, len(chunks), 1)

	for i := 1; i < len(chunks); i++ {
		firstWord := strings.SplitN(chunks[i].Text, " ", 2)[0]
		assert.Contains(t, chunks[i-1].Text, firstWord,
			"chunk %d should start inside chunk %d's tail", i, i-1)
	}
}

func TestChunk_SequenceRunsAcrossSegments(t *testing.T) {
	c := NewChunker(arbor.NewLogger())

	chunks := c.Chunk(segs("page one text", "page two text"), "doc_1", 1000, 0)
	require.Len(t, chunks, 2)
	assert.Equal(t, 0, chunks[0].Sequence)
	assert.Equal(t, 1, chunks[0].Page)
	assert.Equal(t, 1, chunks[1].Sequence)
	assert.Equal(t, 2, chunks[1].Page)
}

func TestChunk_NeverSpansSegments(t *testing.T) {
	c := NewChunker(arbor.NewLogger())

	chunks := c.Chunk(segs("alpha alpha alpha", "beta beta beta"), "doc_1", 1000, 0)
	require.Len(t, chunks, 2)
	assert.NotContains(t, chunks[0].Text, "beta")
	assert.NotContains(t, chunks[1].Text, "alpha")
}

func TestChunk_ParagraphBoundariesPreferred(t *testing.T) {
	c := NewChunker(arbor.NewLogger())

	text := strings.Repeat("x", 80) + "\n\n" + strings.Repeat("y", 80)
	chunks := c.Chunk(segs(text), "doc_1", 100, 0)

	require.Len(t, chunks, 2)
	assert.Equal(t, strings.Repeat("x", 80), chunks[0].Text)
	assert.Equal(t, strings.Repeat("y", 80), chunks[1].Text)
}

func TestChunk_UnbrokenRunSplitsByCharacter(t *testing.T) {
	c := NewChunker(arbor.NewLogger())

	chunks := c.Chunk(segs(strings.Repeat("z", 250)), "doc_1", 100, 0)
	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0].Text, 100)
	assert.Len(t, chunks[1].Text, 100)
	assert.Len(t, chunks[2].Text, 50)
}

func TestChunk_EmptySegmentsProduceNothing(t *testing.T) {
	c := NewChunker(arbor.NewLogger())

	assert.Empty(t, c.Chunk(nil, "doc_1", 1000, 200))
	assert.Empty(t, c.Chunk(segs("   \n  "), "doc_1", 1000, 200))
}

func TestChunk_DegenerateParametersRecover(t *testing.T) {
	c := NewChunker(arbor.NewLogger())

	// Oversized overlap and non-positive size fall back to sane values
	chunks := c.Chunk(segs("some reasonable text here"), "doc_1", 0, 5000)
	require.Len(t, chunks, 1)
	assert.Equal(t, "some reasonable text here", chunks[0].Text)
}
