package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/rogo/internal/common"
	"github.com/ternarybob/rogo/internal/models"
	"github.com/ternarybob/rogo/internal/storage/badger"
	"github.com/ternarybob/rogo/internal/storage/index"

	docsvc "github.com/ternarybob/rogo/internal/services/documents"
)

type stubIngest struct {
	scheduled []string
}

func (s *stubIngest) Schedule(documentID string) (<-chan error, error) {
	s.scheduled = append(s.scheduled, documentID)
	done := make(chan error, 1)
	done <- nil
	close(done)
	return done, nil
}

func (s *stubIngest) Start(ctx context.Context) error { return nil }
func (s *stubIngest) Stop()                           {}

func newDocumentHandler(t *testing.T) (*DocumentHandler, *stubIngest) {
	t.Helper()
	logger := arbor.NewLogger()
	dir := t.TempDir()

	manager, err := badger.NewManager(logger, &common.BadgerConfig{Path: filepath.Join(dir, "db")})
	require.NoError(t, err)
	t.Cleanup(func() { manager.Close() })

	indexStore, err := index.NewStore(filepath.Join(dir, "indices"), logger)
	require.NoError(t, err)

	ingest := &stubIngest{}
	svc, err := docsvc.NewService(filepath.Join(dir, "uploads"), manager.DocumentStorage(), indexStore, ingest, logger)
	require.NoError(t, err)

	return NewDocumentHandler(svc, logger), ingest
}

func multipartUpload(t *testing.T, filename, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/documents", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestCollectionHandler_UploadAndList(t *testing.T) {
	h, ingest := newDocumentHandler(t)

	rec := httptest.NewRecorder()
	h.CollectionHandler(rec, multipartUpload(t, "notes.txt", "hello"))
	require.Equal(t, http.StatusAccepted, rec.Code)

	var doc models.Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "notes.txt", doc.Name)
	assert.Equal(t, models.StatusPending, doc.Status)
	assert.Equal(t, []string{doc.ID}, ingest.scheduled)

	rec = httptest.NewRecorder()
	h.CollectionHandler(rec, httptest.NewRequest(http.MethodGet, "/api/documents", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Documents []*models.Document `json:"documents"`
		Count     int                `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
	require.Len(t, resp.Documents, 1)
	assert.Equal(t, doc.ID, resp.Documents[0].ID)
}

func TestCollectionHandler_UploadMissingFile(t *testing.T) {
	h, _ := newDocumentHandler(t)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("name", "notes.txt"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/documents", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	h.CollectionHandler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func uploadOne(t *testing.T, h *DocumentHandler) *models.Document {
	t.Helper()
	rec := httptest.NewRecorder()
	h.CollectionHandler(rec, multipartUpload(t, "notes.txt", "hello"))
	require.Equal(t, http.StatusAccepted, rec.Code)

	var doc models.Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	return &doc
}

func TestItemHandler_GetAndDelete(t *testing.T) {
	h, _ := newDocumentHandler(t)
	doc := uploadOne(t, h)

	req := httptest.NewRequest(http.MethodGet, "/api/documents/"+doc.ID, nil)
	rec := httptest.NewRecorder()
	h.ItemHandler(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodDelete, "/api/documents/"+doc.ID, nil)
	rec = httptest.NewRecorder()
	h.ItemHandler(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/documents/"+doc.ID, nil)
	rec = httptest.NewRecorder()
	h.ItemHandler(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestItemHandler_Select(t *testing.T) {
	h, _ := newDocumentHandler(t)
	doc := uploadOne(t, h)

	body := strings.NewReader(`{"selected":true}`)
	req := httptest.NewRequest(http.MethodPut, "/api/documents/"+doc.ID+"/select", body)
	rec := httptest.NewRecorder()
	h.ItemHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var updated models.Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.True(t, updated.Selected)
}

func TestItemHandler_Reprocess(t *testing.T) {
	h, ingest := newDocumentHandler(t)
	doc := uploadOne(t, h)
	ingest.scheduled = nil

	req := httptest.NewRequest(http.MethodPost, "/api/documents/"+doc.ID+"/reprocess", nil)
	rec := httptest.NewRecorder()
	h.ItemHandler(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, []string{doc.ID}, ingest.scheduled)
}

func TestItemHandler_UnknownAction(t *testing.T) {
	h, _ := newDocumentHandler(t)
	doc := uploadOne(t, h)

	req := httptest.NewRequest(http.MethodPost, "/api/documents/"+doc.ID+"/frobnicate", nil)
	rec := httptest.NewRecorder()
	h.ItemHandler(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestItemHandler_MissingID(t *testing.T) {
	h, _ := newDocumentHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/documents/", nil)
	rec := httptest.NewRecorder()
	h.ItemHandler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
