// -----------------------------------------------------------------------
// Chunker Service - Recursive character splitting with overlap
// -----------------------------------------------------------------------

package chunker

import (
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/rogo/internal/models"
)

// separators in splitting preference order: paragraph breaks, line
// breaks, word boundaries, then single characters as a last resort.
var separators = []string{"\n\n", "\n", " ", ""}

// Chunker splits loaded segments into bounded, overlapping chunks.
// Segment boundaries are respected: a chunk never spans two segments,
// so page attribution stays exact.
type Chunker struct {
	logger arbor.ILogger
}

// NewChunker creates a chunker service
func NewChunker(logger arbor.ILogger) *Chunker {
	return &Chunker{logger: logger}
}

// Chunk splits the segments into chunks of at most chunkSize characters
// with chunkOverlap characters carried between adjacent chunks. Chunk
// sequence numbers run across the whole document.
func (c *Chunker) Chunk(segments []models.Segment, documentID string, chunkSize, chunkOverlap int) []models.Chunk {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if chunkOverlap < 0 {
		chunkOverlap = 0
	}
	if chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize / 2
	}

	var chunks []models.Chunk
	sequence := 0
	for _, segment := range segments {
		for _, text := range c.splitText(segment.Text, chunkSize, chunkOverlap) {
			text = strings.TrimSpace(text)
			if text == "" {
				continue
			}
			chunks = append(chunks, models.Chunk{
				Text:       text,
				DocumentID: documentID,
				Page:       segment.Page,
				Sequence:   sequence,
			})
			sequence++
		}
	}

	c.logger.Debug().
		Str("document_id", documentID).
		Int("segments", len(segments)).
		Int("chunks", len(chunks)).
		Msg("Chunked document")

	return chunks
}

// splitText recursively splits text on progressively finer separators
// until every piece fits in chunkSize, then merges adjacent pieces back
// together with overlap.
func (c *Chunker) splitText(text string, chunkSize, chunkOverlap int) []string {
	return c.split(text, separators, chunkSize, chunkOverlap)
}

func (c *Chunker) split(text string, seps []string, chunkSize, chunkOverlap int) []string {
	if len(text) <= chunkSize {
		if strings.TrimSpace(text) == "" {
			return nil
		}
		return []string{text}
	}

	sep := seps[len(seps)-1]
	rest := seps
	for i, s := range seps {
		if s == "" || strings.Contains(text, s) {
			sep = s
			rest = seps[i+1:]
			break
		}
	}

	var pieces []string
	if sep == "" {
		// Character-level split of an unbroken run
		runes := []rune(text)
		for start := 0; start < len(runes); start += chunkSize {
			end := start + chunkSize
			if end > len(runes) {
				end = len(runes)
			}
			pieces = append(pieces, string(runes[start:end]))
		}
		return pieces
	}

	for _, part := range strings.Split(text, sep) {
		if len(part) > chunkSize {
			pieces = append(pieces, c.split(part, rest, chunkSize, chunkOverlap)...)
		} else if strings.TrimSpace(part) != "" {
			pieces = append(pieces, part)
		}
	}

	return mergePieces(pieces, sep, chunkSize, chunkOverlap)
}

// mergePieces packs split pieces into chunks up to chunkSize, carrying
// trailing pieces of the finished chunk into the next one as overlap.
// Overlap is at most chunkOverlap characters, at piece granularity: pieces
// are never cut mid-way to hit the target exactly, and the tail is dropped
// entirely when carrying it would push the next chunk past chunkSize. The
// size ceiling always wins over the overlap target.
func mergePieces(pieces []string, sep string, chunkSize, chunkOverlap int) []string {
	var merged []string
	var window []string
	windowLen := 0

	flush := func() {
		if len(window) == 0 {
			return
		}
		merged = append(merged, strings.Join(window, sep))

		// Keep a tail of the window as the start of the next chunk
		for windowLen > chunkOverlap && len(window) > 0 {
			windowLen -= len(window[0])
			window = window[1:]
		}
	}

	for _, piece := range pieces {
		pieceLen := len(piece)
		if windowLen+pieceLen+len(sep)*len(window) > chunkSize && len(window) > 0 {
			flush()
			// Drop the overlap tail when it would push the next chunk
			// over the size limit
			if windowLen+pieceLen+len(sep)*len(window) > chunkSize {
				window = nil
				windowLen = 0
			}
		}
		window = append(window, piece)
		windowLen += pieceLen
	}
	if len(window) > 0 {
		merged = append(merged, strings.Join(window, sep))
	}

	return merged
}
