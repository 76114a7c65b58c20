package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/rogo/internal/common"
	"github.com/ternarybob/rogo/internal/interfaces"
)

type StatusHandler struct {
	documents interfaces.DocumentStorage
	queue     interfaces.QueueStorage
	llm       interfaces.LLMService
	logger    arbor.ILogger
}

func NewStatusHandler(documents interfaces.DocumentStorage, queue interfaces.QueueStorage, llm interfaces.LLMService, logger arbor.ILogger) *StatusHandler {
	return &StatusHandler{
		documents: documents,
		queue:     queue,
		llm:       llm,
		logger:    logger,
	}
}

// VersionHandler returns version information
func (h *StatusHandler) VersionHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.Build,
		"commit":  common.GitCommit,
	})
}

// HealthHandler returns health check status
func (h *StatusHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// GetStatusHandler returns document corpus and pipeline status
func (h *StatusHandler) GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	stats, err := h.documents.Stats()
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to get document stats")
		WriteError(w, http.StatusInternalServerError, "Failed to get status")
		return
	}

	queued, err := h.queue.Len()
	if err != nil {
		h.logger.Warn().Err(err).Msg("Failed to read ingestion queue length")
		queued = 0
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"documents":      stats,
		"queued_tasks":   queued,
		"llm_configured": h.llm.IsConfigured(),
		"version":        common.GetVersion(),
	})
}

// NotFoundHandler handles 404 errors with JSON response
func (h *StatusHandler) NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusNotFound, map[string]interface{}{
		"error":   "Not Found",
		"path":    r.URL.Path,
		"message": "The requested endpoint does not exist",
	})
}
