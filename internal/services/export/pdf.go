// -----------------------------------------------------------------------
// Export Service - Render a chat answer with its citations as PDF
// -----------------------------------------------------------------------

package export

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/rogo/internal/models"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// Service renders assistant messages to PDF for download. Answer content
// is treated as markdown; citations get an appendix section.
type Service struct {
	logger arbor.ILogger
}

// NewService creates an export service
func NewService(logger arbor.ILogger) *Service {
	return &Service{logger: logger}
}

// RenderMessage produces a PDF of the answer and its sources
func (s *Service) RenderMessage(msg *models.ChatMessage, title string) ([]byte, error) {
	if msg == nil {
		return nil, fmt.Errorf("message is required")
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.SetTitle(title, true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.MultiCell(0, 7, title, "", "L", false)
	pdf.Ln(4)

	pdf.SetFont("Arial", "", 10)
	if err := renderMarkdown(pdf, msg.Content); err != nil {
		return nil, fmt.Errorf("failed to render answer: %w", err)
	}

	if len(msg.Sources) > 0 {
		renderSources(pdf, msg.Sources)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF output: %w", err)
	}

	s.logger.Debug().
		Str("message_id", msg.ID).
		Int("sources", len(msg.Sources)).
		Int("pdf_size", buf.Len()).
		Msg("Exported answer to PDF")

	return buf.Bytes(), nil
}

// renderMarkdown walks the parsed answer and emits headings, paragraphs,
// emphasis, lists and code to the PDF
func renderMarkdown(pdf *fpdf.Fpdf, markdown string) error {
	md := goldmark.New(goldmark.WithExtensions(extension.Strikethrough, extension.Linkify))
	source := []byte(markdown)
	doc := md.Parser().Parse(text.NewReader(source))

	r := &renderer{pdf: pdf, source: source}
	return ast.Walk(doc, r.walk)
}

type renderer struct {
	pdf    *fpdf.Fpdf
	source []byte
	bold   bool
	italic bool
	level  int
}

func (r *renderer) setFont() {
	style := ""
	if r.bold {
		style += "B"
	}
	if r.italic {
		style += "I"
	}
	r.pdf.SetFont("Arial", style, 10)
}

func (r *renderer) walk(n ast.Node, entering bool) (ast.WalkStatus, error) {
	switch node := n.(type) {
	case *ast.Heading:
		if entering {
			r.pdf.Ln(4)
			size := 13.0 - float64(node.Level)
			if size < 10 {
				size = 10
			}
			r.pdf.SetFont("Arial", "B", size)
		} else {
			r.pdf.Ln(6)
			r.setFont()
		}
	case *ast.Paragraph:
		if !entering {
			r.pdf.Ln(6)
		}
	case *ast.Text:
		if entering {
			r.pdf.Write(5, string(node.Text(r.source)))
			if node.SoftLineBreak() || node.HardLineBreak() {
				r.pdf.Write(5, " ")
			}
		}
	case *ast.Emphasis:
		if node.Level == 2 {
			r.bold = entering
		} else {
			r.italic = entering
		}
		r.setFont()
	case *ast.CodeSpan:
		if entering {
			r.pdf.SetFont("Courier", "", 10)
			for c := node.FirstChild(); c != nil; c = c.NextSibling() {
				if t, ok := c.(*ast.Text); ok {
					r.pdf.Write(5, string(t.Segment.Value(r.source)))
				}
			}
		} else {
			r.setFont()
		}
		return ast.WalkSkipChildren, nil
	case *ast.FencedCodeBlock:
		if entering {
			r.writeCode(node.Lines())
			return ast.WalkSkipChildren, nil
		}
	case *ast.CodeBlock:
		if entering {
			r.writeCode(node.Lines())
			return ast.WalkSkipChildren, nil
		}
	case *ast.List:
		if entering {
			r.level++
		} else {
			r.level--
			if r.level == 0 {
				r.pdf.Ln(2)
			}
		}
	case *ast.ListItem:
		if entering {
			r.pdf.Ln(5)
			r.pdf.SetX(15 + float64(r.level)*5)
			r.pdf.Write(5, "- ")
		}
	case *ast.ThematicBreak:
		if entering {
			r.pdf.Ln(3)
			r.pdf.Line(15, r.pdf.GetY(), 195, r.pdf.GetY())
			r.pdf.Ln(3)
		}
	}
	return ast.WalkContinue, nil
}

func (r *renderer) writeCode(lines *text.Segments) {
	r.pdf.Ln(2)
	r.pdf.SetFont("Courier", "", 9)
	r.pdf.SetFillColor(245, 245, 245)
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		r.pdf.MultiCell(0, 5, string(seg.Value(r.source)), "", "L", true)
	}
	r.pdf.SetFillColor(255, 255, 255)
	r.setFont()
	r.pdf.Ln(2)
}

// renderSources appends the citation appendix
func renderSources(pdf *fpdf.Fpdf, sources []models.Source) {
	pdf.Ln(6)
	pdf.SetFont("Arial", "B", 12)
	pdf.MultiCell(0, 6, "Sources", "", "L", false)
	pdf.Ln(2)

	for i, src := range sources {
		pdf.SetFont("Arial", "B", 10)
		pdf.MultiCell(0, 5, fmt.Sprintf("%d. %s (relevance %.2f)", i+1, src.DocumentName, src.RelevanceScore), "", "L", false)
		pdf.SetFont("Arial", "I", 9)
		for _, excerpt := range src.Excerpts {
			pdf.MultiCell(0, 5, `"`+excerpt+`"`, "", "L", false)
			pdf.Ln(1)
		}
		pdf.Ln(2)
	}
}
