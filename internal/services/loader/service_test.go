package loader

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_PlainText(t *testing.T) {
	svc := NewService(arbor.NewLogger())
	path := writeTempFile(t, "notes.txt", "hello world\nsecond line")

	segments := svc.Load(context.Background(), path, "txt")
	require.Len(t, segments, 1)
	assert.Equal(t, "hello world\nsecond line", segments[0].Text)
	assert.Equal(t, 0, segments[0].Page)
}

func TestLoad_MarkdownFallsBackToPlainText(t *testing.T) {
	svc := NewService(arbor.NewLogger())
	path := writeTempFile(t, "readme.md", "# Title\n\nBody text")

	segments := svc.Load(context.Background(), path, "md")
	require.Len(t, segments, 1)
	assert.Contains(t, segments[0].Text, "Body text")
}

func TestLoad_UnknownMediaTypeDecodesAsText(t *testing.T) {
	svc := NewService(arbor.NewLogger())
	path := writeTempFile(t, "data.csv", "a,b,c")

	segments := svc.Load(context.Background(), path, "csv")
	require.Len(t, segments, 1)
	assert.Equal(t, "a,b,c", segments[0].Text)
}

func TestLoad_MissingFileIsEmpty(t *testing.T) {
	svc := NewService(arbor.NewLogger())

	segments := svc.Load(context.Background(), "/nonexistent/file.txt", "txt")
	assert.Empty(t, segments)
}

func TestLoad_EmptyFileIsEmpty(t *testing.T) {
	svc := NewService(arbor.NewLogger())
	path := writeTempFile(t, "empty.txt", "   \n  ")

	segments := svc.Load(context.Background(), path, "txt")
	assert.Empty(t, segments)
}

func TestLoad_HTML(t *testing.T) {
	svc := NewService(arbor.NewLogger())
	path := writeTempFile(t, "page.html", `<html><head><script>ignore()</script></head>
<body><h1>Report</h1><p>Quarterly results were strong.</p></body></html>`)

	segments := svc.Load(context.Background(), path, "html")
	require.Len(t, segments, 1)
	assert.Contains(t, segments[0].Text, "Report")
	assert.Contains(t, segments[0].Text, "Quarterly results were strong.")
	assert.NotContains(t, segments[0].Text, "ignore()")
}

func TestLoad_CorruptHTMLStillSoftFails(t *testing.T) {
	svc := NewService(arbor.NewLogger())
	path := writeTempFile(t, "bad.html", "")

	segments := svc.Load(context.Background(), path, "html")
	assert.Empty(t, segments)
}

func TestLoad_Docx(t *testing.T) {
	svc := NewService(arbor.NewLogger())
	path := filepath.Join(t.TempDir(), "memo.docx")

	f, err := os.Create(path)
	require.NoError(t, err)
	w := zip.NewWriter(f)
	doc, err := w.Create("word/document.xml")
	require.NoError(t, err)
	_, err = doc.Write([]byte(`<?xml version="1.0"?>
<document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<body><p><r><t>First paragraph.</t></r></p><p><r><t>Second </t><t>paragraph.</t></r></p></body>
</document>`))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())

	segments := svc.Load(context.Background(), path, "docx")
	require.Len(t, segments, 1)
	assert.Equal(t, "First paragraph.\nSecond paragraph.", segments[0].Text)
}

func TestLoad_DocxWithoutDocumentPart(t *testing.T) {
	svc := NewService(arbor.NewLogger())
	path := filepath.Join(t.TempDir(), "empty.docx")

	f, err := os.Create(path)
	require.NoError(t, err)
	w := zip.NewWriter(f)
	_, err = w.Create("[Content_Types].xml")
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())

	segments := svc.Load(context.Background(), path, "docx")
	assert.Empty(t, segments)
}

func TestLoad_CorruptDocxIsEmpty(t *testing.T) {
	svc := NewService(arbor.NewLogger())
	path := writeTempFile(t, "broken.docx", "not a zip archive")

	segments := svc.Load(context.Background(), path, "docx")
	assert.Empty(t, segments)
}

func TestLoad_Email(t *testing.T) {
	svc := NewService(arbor.NewLogger())
	path := writeTempFile(t, "message.eml", "From: alice@example.com\r\n"+
		"To: bob@example.com\r\n"+
		"Subject: Budget update\r\n"+
		"Content-Type: text/plain; charset=utf-8\r\n"+
		"\r\n"+
		"The budget was approved on Monday.\r\n")

	segments := svc.Load(context.Background(), path, "eml")
	require.Len(t, segments, 1)
	assert.Contains(t, segments[0].Text, "Subject: Budget update")
	assert.Contains(t, segments[0].Text, "The budget was approved on Monday.")
	assert.Equal(t, 1, segments[0].Page)
}

func TestLoad_CorruptEmailIsEmpty(t *testing.T) {
	svc := NewService(arbor.NewLogger())
	path := writeTempFile(t, "broken.eml", "")

	segments := svc.Load(context.Background(), path, "eml")
	assert.Empty(t, segments)
}
