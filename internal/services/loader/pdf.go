// -----------------------------------------------------------------------
// PDF Loader - Per-page text extraction using pdfcpu
// -----------------------------------------------------------------------

package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/rogo/internal/models"
)

// pdfLoader extracts text page by page so chunk citations can carry
// page numbers. Extraction failures yield an empty segment list.
type pdfLoader struct {
	logger  arbor.ILogger
	tempDir string
}

func newPDFLoader(logger arbor.ILogger) *pdfLoader {
	tempDir := filepath.Join(os.TempDir(), "rogo-pdf")
	os.MkdirAll(tempDir, 0755)

	return &pdfLoader{
		logger:  logger,
		tempDir: tempDir,
	}
}

func (l *pdfLoader) load(ctx context.Context, filePath string) []models.Segment {
	pdfCtx, err := api.ReadContextFile(filePath)
	if err != nil {
		l.logger.Warn().Err(err).Str("file", filePath).Msg("Failed to read PDF")
		return nil
	}
	pageCount := pdfCtx.PageCount

	outDir := filepath.Join(l.tempDir, fmt.Sprintf("pages_%d", os.Getpid()))
	if err := os.MkdirAll(outDir, 0755); err != nil {
		l.logger.Warn().Err(err).Msg("Failed to create PDF scratch directory")
		return nil
	}
	defer os.RemoveAll(outDir)

	conf := model.NewDefaultConfiguration()
	if err := api.ExtractContentFile(filePath, outDir, nil, conf); err != nil {
		l.logger.Warn().Err(err).Str("file", filePath).Msg("Failed to extract PDF content")
		return nil
	}

	// pdfcpu writes one content file per page; map them back by number
	pageTexts := make(map[int]string)
	files, _ := os.ReadDir(outDir)
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		content, err := os.ReadFile(filepath.Join(outDir, file.Name()))
		if err != nil {
			continue
		}
		var pageNum int
		if _, err := fmt.Sscanf(file.Name(), "page_%d", &pageNum); err != nil {
			if _, err := fmt.Sscanf(file.Name(), "Content_page_%d", &pageNum); err != nil {
				continue
			}
		}
		pageTexts[pageNum] = string(content)
	}

	segments := make([]models.Segment, 0, pageCount)
	for pageNum := 1; pageNum <= pageCount; pageNum++ {
		text := strings.TrimSpace(pageTexts[pageNum])
		if text == "" {
			continue
		}
		segments = append(segments, models.Segment{
			Text: text,
			Page: pageNum,
		})
	}

	return segments
}
