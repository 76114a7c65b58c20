// -----------------------------------------------------------------------
// HTML Loader - Markdown conversion of HTML documents
// -----------------------------------------------------------------------

package loader

import (
	"os"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/rogo/internal/models"
)

// loadHTML strips script/style noise with goquery and converts the
// remaining markup to markdown so the chunker sees readable text.
func (s *Service) loadHTML(filePath string) []models.Segment {
	content, err := os.ReadFile(filePath)
	if err != nil {
		s.logger.Warn().Err(err).Str("file", filePath).Msg("Failed to read HTML file")
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(content)))
	if err != nil {
		s.logger.Warn().Err(err).Str("file", filePath).Msg("Failed to parse HTML")
		return nil
	}

	doc.Find("script, style, noscript").Remove()

	html, err := doc.Find("body").Html()
	if err != nil || strings.TrimSpace(html) == "" {
		// Fragment files may have no body element
		html = string(content)
	}

	converter := md.NewConverter("", true, nil)
	markdown, err := converter.ConvertString(html)
	if err != nil {
		s.logger.Warn().Err(err).Str("file", filePath).Msg("Failed to convert HTML to markdown")
		return nil
	}

	text := strings.TrimSpace(markdown)
	if text == "" {
		return nil
	}

	return []models.Segment{{Text: text}}
}
