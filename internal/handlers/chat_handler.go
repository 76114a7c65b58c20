package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/rogo/internal/interfaces"
	"github.com/ternarybob/rogo/internal/models"
	"github.com/ternarybob/rogo/internal/services/export"
)

type ChatHandler struct {
	chat   interfaces.ChatService
	chats  interfaces.ChatStorage
	export *export.Service
	logger arbor.ILogger
}

func NewChatHandler(chat interfaces.ChatService, chats interfaces.ChatStorage, export *export.Service, logger arbor.ILogger) *ChatHandler {
	return &ChatHandler{
		chat:   chat,
		chats:  chats,
		export: export,
		logger: logger,
	}
}

// AskHandler handles POST /api/chat: one question-answer turn against the
// current document selection.
func (h *ChatHandler) AskHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req interfaces.AskRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	msg, err := h.chat.Ask(r.Context(), &req)
	if err != nil {
		h.logger.Error().Err(err).Msg("Chat request failed")
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, msg)
}

// HealthHandler reports whether the generation path is reachable
func (h *ChatHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	if err := h.chat.HealthCheck(r.Context()); err != nil {
		WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
			"error":  err.Error(),
		})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// SessionsHandler handles GET /api/chat/sessions
func (h *ChatHandler) SessionsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	sessions, err := h.chats.ListSessions()
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list chat sessions")
		WriteError(w, http.StatusInternalServerError, "Failed to list sessions")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"sessions": sessions,
		"count":    len(sessions),
	})
}

// SessionRoutesHandler handles /api/chat/sessions/{id} subpaths:
//
//	GET    /api/chat/sessions/{id}/messages - session transcript
//	DELETE /api/chat/sessions/{id}          - remove session and messages
func (h *ChatHandler) SessionRoutesHandler(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/chat/sessions/")
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		WriteError(w, http.StatusBadRequest, "Session ID is required")
		return
	}
	id := parts[0]

	if len(parts) == 1 {
		if !RequireMethod(w, r, http.MethodDelete) {
			return
		}
		if err := h.chats.DeleteSession(id); err != nil {
			h.logger.Error().Err(err).Str("session_id", id).Msg("Failed to delete chat session")
			WriteError(w, http.StatusInternalServerError, "Failed to delete session")
			return
		}
		WriteSuccess(w, "Session deleted")
		return
	}

	if parts[1] != "messages" {
		WriteError(w, http.StatusNotFound, "Unknown session action")
		return
	}
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	messages, err := h.chats.GetMessages(id)
	if err != nil {
		h.logger.Error().Err(err).Str("session_id", id).Msg("Failed to load session messages")
		WriteError(w, http.StatusInternalServerError, "Failed to load messages")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"session_id": id,
		"messages":   messages,
	})
}

// ExportHandler handles POST /api/chat/export: renders one assistant
// message, with its source citations, as a downloadable PDF.
func (h *ChatHandler) ExportHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		SessionID string `json:"session_id"`
		MessageID string `json:"message_id"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.SessionID == "" || req.MessageID == "" {
		WriteError(w, http.StatusBadRequest, "session_id and message_id are required")
		return
	}

	messages, err := h.chats.GetMessages(req.SessionID)
	if err != nil {
		h.logger.Error().Err(err).Str("session_id", req.SessionID).Msg("Failed to load session for export")
		WriteError(w, http.StatusInternalServerError, "Failed to load session")
		return
	}

	var msg *models.ChatMessage
	for _, m := range messages {
		if m.ID == req.MessageID {
			msg = m
			break
		}
	}
	if msg == nil {
		WriteError(w, http.StatusNotFound, "Message not found")
		return
	}

	title := "Answer"
	if session, err := h.chats.GetSession(req.SessionID); err == nil && session != nil {
		title = session.Title
	}

	data, err := h.export.RenderMessage(msg, title)
	if err != nil {
		h.logger.Error().Err(err).Str("message_id", req.MessageID).Msg("PDF export failed")
		WriteError(w, http.StatusInternalServerError, "Failed to render PDF")
		return
	}

	filename := fmt.Sprintf("answer_%s.pdf", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
