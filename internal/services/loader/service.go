// -----------------------------------------------------------------------
// Loader Service - Turns uploaded files into ordered text segments
// Dispatches on media type; unknown types decode as plain text
// -----------------------------------------------------------------------

package loader

import (
	"context"
	"os"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/rogo/internal/interfaces"
	"github.com/ternarybob/rogo/internal/models"
)

// Service implements the Loader interface. All format handlers fail
// softly: a read or parse error yields an empty segment list, which the
// ingest pipeline records as a failed load.
type Service struct {
	logger arbor.ILogger
	pdf    *pdfLoader
}

// Compile-time interface assertion
var _ interfaces.Loader = (*Service)(nil)

// NewService creates a loader service
func NewService(logger arbor.ILogger) *Service {
	return &Service{
		logger: logger,
		pdf:    newPDFLoader(logger),
	}
}

// Load reads the file at filePath and extracts its text as segments.
// Media types are matched by suffix so both bare extensions ("pdf") and
// full MIME types ("application/pdf") resolve to the same handler.
func (s *Service) Load(ctx context.Context, filePath, mediaType string) []models.Segment {
	mt := strings.ToLower(strings.TrimSpace(mediaType))

	var segments []models.Segment
	switch {
	case strings.HasSuffix(mt, "pdf"):
		segments = s.pdf.load(ctx, filePath)
	case strings.HasSuffix(mt, "docx") || strings.Contains(mt, "wordprocessingml"):
		segments = s.loadDocx(filePath)
	case strings.HasSuffix(mt, "html") || strings.HasSuffix(mt, "htm"):
		segments = s.loadHTML(filePath)
	case strings.HasSuffix(mt, "eml") || strings.Contains(mt, "rfc822"):
		segments = s.loadEmail(filePath)
	case strings.HasSuffix(mt, "md") || strings.Contains(mt, "markdown"):
		segments = s.loadPlainText(filePath)
	default:
		segments = s.loadPlainText(filePath)
	}

	s.logger.Debug().
		Str("file", filePath).
		Str("media_type", mt).
		Int("segments", len(segments)).
		Msg("Loaded document")

	return segments
}

// loadPlainText reads the whole file as one segment
func (s *Service) loadPlainText(filePath string) []models.Segment {
	content, err := os.ReadFile(filePath)
	if err != nil {
		s.logger.Warn().Err(err).Str("file", filePath).Msg("Failed to read file")
		return nil
	}

	text := strings.TrimSpace(string(content))
	if text == "" {
		return nil
	}

	return []models.Segment{{Text: text}}
}
