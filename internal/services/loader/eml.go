// -----------------------------------------------------------------------
// Email Loader - Text extraction from RFC 822 message files
// -----------------------------------------------------------------------

package loader

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/emersion/go-message/mail"
	"github.com/ternarybob/rogo/internal/models"
)

// loadEmail parses an .eml file and extracts the subject plus every
// text/plain part as one segment per part.
func (s *Service) loadEmail(filePath string) []models.Segment {
	f, err := os.Open(filePath)
	if err != nil {
		s.logger.Warn().Err(err).Str("file", filePath).Msg("Failed to open email file")
		return nil
	}
	defer f.Close()

	mr, err := mail.CreateReader(f)
	if err != nil {
		s.logger.Warn().Err(err).Str("file", filePath).Msg("Failed to parse email")
		return nil
	}

	subject, _ := mr.Header.Subject()

	var segments []models.Segment
	part := 0
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			s.logger.Warn().Err(err).Str("file", filePath).Msg("Failed to read email part")
			return nil
		}

		h, ok := p.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		contentType, _, _ := h.ContentType()
		if !strings.HasPrefix(contentType, "text/plain") {
			continue
		}

		b, err := io.ReadAll(p.Body)
		if err != nil {
			s.logger.Warn().Err(err).Str("file", filePath).Msg("Failed to read email body")
			return nil
		}

		text := strings.TrimSpace(string(b))
		if text == "" {
			continue
		}
		part++
		if part == 1 && subject != "" {
			text = fmt.Sprintf("Subject: %s\n\n%s", subject, text)
		}
		segments = append(segments, models.Segment{
			Text: text,
			Page: part,
		})
	}

	return segments
}
