package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/rogo/internal/interfaces"
	"github.com/ternarybob/rogo/internal/services/documents"
)

// maxUploadBytes bounds the multipart form held in memory before spilling
// to temp files.
const maxUploadBytes = 64 << 20

type DocumentHandler struct {
	documents *documents.Service
	logger    arbor.ILogger
}

func NewDocumentHandler(documents *documents.Service, logger arbor.ILogger) *DocumentHandler {
	return &DocumentHandler{
		documents: documents,
		logger:    logger,
	}
}

// CollectionHandler handles /api/documents: GET lists all documents,
// POST uploads a new one.
func (h *DocumentHandler) CollectionHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listDocuments(w, r)
	case http.MethodPost:
		h.uploadDocument(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// ItemHandler handles /api/documents/{id} and its subpaths:
//
//	GET    /api/documents/{id}            - single document
//	DELETE /api/documents/{id}            - remove document, file and index
//	PUT    /api/documents/{id}/select     - toggle chat selection
//	POST   /api/documents/{id}/reprocess  - rebuild the document's index
func (h *DocumentHandler) ItemHandler(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/documents/")
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		WriteError(w, http.StatusBadRequest, "Document ID is required")
		return
	}
	id := parts[0]

	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			h.getDocument(w, id)
		case http.MethodDelete:
			h.deleteDocument(w, id)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	switch parts[1] {
	case "select":
		if !RequireMethod(w, r, http.MethodPut) {
			return
		}
		h.selectDocument(w, r, id)
	case "reprocess":
		if !RequireMethod(w, r, http.MethodPost) {
			return
		}
		h.reprocessDocument(w, id)
	default:
		WriteError(w, http.StatusNotFound, "Unknown document action")
	}
}

func (h *DocumentHandler) listDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := h.documents.List()
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list documents")
		WriteError(w, http.StatusInternalServerError, "Failed to list documents")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"documents": docs,
		"count":     len(docs),
	})
}

func (h *DocumentHandler) uploadDocument(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Missing 'file' form field")
		return
	}
	defer file.Close()

	doc, err := h.documents.Upload(header.Filename, file)
	if err != nil {
		h.logger.Error().Err(err).Str("name", header.Filename).Msg("Document upload failed")
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	WriteJSON(w, http.StatusAccepted, doc)
}

func (h *DocumentHandler) getDocument(w http.ResponseWriter, id string) {
	doc, err := h.documents.Get(id)
	if err != nil {
		h.writeDocumentError(w, err, "Failed to get document")
		return
	}
	WriteJSON(w, http.StatusOK, doc)
}

func (h *DocumentHandler) deleteDocument(w http.ResponseWriter, id string) {
	if err := h.documents.Delete(id); err != nil {
		h.writeDocumentError(w, err, "Failed to delete document")
		return
	}
	WriteSuccess(w, "Document deleted")
}

func (h *DocumentHandler) selectDocument(w http.ResponseWriter, r *http.Request, id string) {
	var req struct {
		Selected bool `json:"selected"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	doc, err := h.documents.SetSelected(id, req.Selected)
	if err != nil {
		h.writeDocumentError(w, err, "Failed to update selection")
		return
	}
	WriteJSON(w, http.StatusOK, doc)
}

func (h *DocumentHandler) reprocessDocument(w http.ResponseWriter, id string) {
	doc, err := h.documents.Reprocess(id)
	if err != nil {
		h.writeDocumentError(w, err, "Failed to reprocess document")
		return
	}
	WriteJSON(w, http.StatusAccepted, doc)
}

func (h *DocumentHandler) writeDocumentError(w http.ResponseWriter, err error, fallback string) {
	if errors.Is(err, interfaces.ErrDocumentNotFound) {
		WriteError(w, http.StatusNotFound, "Document not found")
		return
	}
	if errors.Is(err, documents.ErrDocumentProcessing) {
		WriteError(w, http.StatusConflict, "Document is already processing")
		return
	}
	h.logger.Error().Err(err).Msg(fallback)
	WriteError(w, http.StatusInternalServerError, fallback)
}
