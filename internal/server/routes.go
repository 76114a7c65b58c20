package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// WebSocket route - document status push
	mux.HandleFunc("/ws", s.app.WSHandler.HandleWebSocket)

	// API routes - Documents
	mux.HandleFunc("/api/documents", s.app.DocumentHandler.CollectionHandler) // GET (list), POST (upload)
	mux.HandleFunc("/api/documents/", s.app.DocumentHandler.ItemHandler)      // GET/DELETE /{id}, PUT /{id}/select, POST /{id}/reprocess

	// API routes - Chat
	mux.HandleFunc("/api/chat", s.app.ChatHandler.AskHandler)
	mux.HandleFunc("/api/chat/health", s.app.ChatHandler.HealthHandler)
	mux.HandleFunc("/api/chat/export", s.app.ChatHandler.ExportHandler)
	mux.HandleFunc("/api/chat/sessions", s.app.ChatHandler.SessionsHandler)
	mux.HandleFunc("/api/chat/sessions/", s.app.ChatHandler.SessionRoutesHandler) // DELETE /{id}, GET /{id}/messages

	// API routes - Settings
	mux.HandleFunc("/api/settings", s.app.SettingsHandler.SettingsHandler) // GET/PUT/DELETE

	// API routes - System
	mux.HandleFunc("/api/status", s.app.StatusHandler.GetStatusHandler)
	mux.HandleFunc("/api/version", s.app.StatusHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.StatusHandler.HealthHandler)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.app.StatusHandler.NotFoundHandler)

	return mux
}
