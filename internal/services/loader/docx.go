// -----------------------------------------------------------------------
// DOCX Loader - Text extraction from word/document.xml
// -----------------------------------------------------------------------

package loader

import (
	"archive/zip"
	"encoding/xml"
	"io"
	"strings"

	"github.com/ternarybob/rogo/internal/models"
)

// documentXML mirrors the paragraph/run structure of word/document.xml
type documentXML struct {
	Body struct {
		Paragraphs []docxParagraph `xml:"p"`
	} `xml:"body"`
}

type docxParagraph struct {
	Runs []docxRun `xml:"r"`
}

type docxRun struct {
	Text []docxText `xml:"t"`
}

type docxText struct {
	Content string `xml:",chardata"`
}

// loadDocx opens the file as an OOXML container and extracts paragraph
// text from word/document.xml. One segment per document; DOCX has no
// fixed page boundaries to cite.
func (s *Service) loadDocx(filePath string) []models.Segment {
	reader, err := zip.OpenReader(filePath)
	if err != nil {
		s.logger.Warn().Err(err).Str("file", filePath).Msg("Failed to open docx archive")
		return nil
	}
	defer reader.Close()

	var content []byte
	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			s.logger.Warn().Err(err).Str("file", filePath).Msg("Failed to open document part")
			return nil
		}
		content, err = io.ReadAll(rc)
		rc.Close()
		if err != nil {
			s.logger.Warn().Err(err).Str("file", filePath).Msg("Failed to read document part")
			return nil
		}
		break
	}
	if content == nil {
		s.logger.Warn().Str("file", filePath).Msg("Docx archive has no word/document.xml")
		return nil
	}

	var doc documentXML
	if err := xml.Unmarshal(content, &doc); err != nil {
		s.logger.Warn().Err(err).Str("file", filePath).Msg("Failed to parse document XML")
		return nil
	}

	var builder strings.Builder
	for i, para := range doc.Body.Paragraphs {
		if i > 0 {
			builder.WriteString("\n")
		}
		for _, run := range para.Runs {
			for _, text := range run.Text {
				builder.WriteString(text.Content)
			}
		}
	}

	text := strings.TrimSpace(builder.String())
	if text == "" {
		return nil
	}

	return []models.Segment{{Text: text}}
}
