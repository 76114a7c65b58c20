package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/rogo/internal/models"
	"github.com/ternarybob/rogo/internal/services/settings"
)

type SettingsHandler struct {
	settings *settings.Service
	logger   arbor.ILogger
}

func NewSettingsHandler(settings *settings.Service, logger arbor.ILogger) *SettingsHandler {
	return &SettingsHandler{
		settings: settings,
		logger:   logger,
	}
}

// SettingsHandler handles /api/settings: GET returns the current retrieval
// settings, PUT validates and replaces them, DELETE restores defaults.
func (h *SettingsHandler) SettingsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.getSettings(w)
	case http.MethodPut:
		h.updateSettings(w, r)
	case http.MethodDelete:
		h.resetSettings(w)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *SettingsHandler) getSettings(w http.ResponseWriter) {
	current, err := h.settings.Get()
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to load settings")
		WriteError(w, http.StatusInternalServerError, "Failed to load settings")
		return
	}
	WriteJSON(w, http.StatusOK, current)
}

func (h *SettingsHandler) updateSettings(w http.ResponseWriter, r *http.Request) {
	var req models.RagSettings
	if !DecodeJSON(w, r, &req) {
		return
	}

	updated, err := h.settings.Update(req)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, updated)
}

func (h *SettingsHandler) resetSettings(w http.ResponseWriter) {
	restored, err := h.settings.Reset()
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to reset settings")
		WriteError(w, http.StatusInternalServerError, "Failed to reset settings")
		return
	}
	WriteJSON(w, http.StatusOK, restored)
}
