package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/rogo/internal/interfaces"
	"github.com/ternarybob/rogo/internal/models"
	"github.com/ternarybob/rogo/internal/services/export"
)

// mockChatService implements interfaces.ChatService for testing
type mockChatService struct {
	askFunc    func(ctx context.Context, req *interfaces.AskRequest) (*models.ChatMessage, error)
	healthFunc func(ctx context.Context) error
}

func (m *mockChatService) Ask(ctx context.Context, req *interfaces.AskRequest) (*models.ChatMessage, error) {
	if m.askFunc != nil {
		return m.askFunc(ctx, req)
	}
	return nil, nil
}

func (m *mockChatService) HealthCheck(ctx context.Context) error {
	if m.healthFunc != nil {
		return m.healthFunc(ctx)
	}
	return nil
}

// mockChatStorage implements interfaces.ChatStorage backed by maps
type mockChatStorage struct {
	messages map[string][]*models.ChatMessage
	sessions map[string]*models.ChatSession
}

func newMockChatStorage() *mockChatStorage {
	return &mockChatStorage{
		messages: make(map[string][]*models.ChatMessage),
		sessions: make(map[string]*models.ChatSession),
	}
}

func (m *mockChatStorage) SaveMessage(msg *models.ChatMessage) error {
	m.messages[msg.SessionID] = append(m.messages[msg.SessionID], msg)
	return nil
}

func (m *mockChatStorage) GetMessages(sessionID string) ([]*models.ChatMessage, error) {
	return m.messages[sessionID], nil
}

func (m *mockChatStorage) SaveSession(session *models.ChatSession) error {
	m.sessions[session.ID] = session
	return nil
}

func (m *mockChatStorage) GetSession(id string) (*models.ChatSession, error) {
	return m.sessions[id], nil
}

func (m *mockChatStorage) ListSessions() ([]*models.ChatSession, error) {
	var out []*models.ChatSession
	for _, s := range m.sessions {
		out = append(out, s)
	}
	return out, nil
}

func (m *mockChatStorage) DeleteSession(id string) error {
	delete(m.sessions, id)
	delete(m.messages, id)
	return nil
}

func newChatHandler(chat *mockChatService, chats *mockChatStorage) *ChatHandler {
	logger := arbor.NewLogger()
	return NewChatHandler(chat, chats, export.NewService(logger), logger)
}

func TestAskHandler_ReturnsAssistantMessage(t *testing.T) {
	chat := &mockChatService{
		askFunc: func(ctx context.Context, req *interfaces.AskRequest) (*models.ChatMessage, error) {
			return &models.ChatMessage{
				ID:        "msg_1",
				SessionID: "sess_1",
				Role:      "assistant",
				Content:   "Revenue grew 12%.",
				Sources: []models.Source{
					{DocumentID: "doc_1", DocumentName: "report.pdf", Excerpts: []string{"12%"}, RelevanceScore: 0.92},
				},
			}, nil
		},
	}
	h := newChatHandler(chat, newMockChatStorage())

	body := strings.NewReader(`{"message":"What was revenue growth?"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/chat", body)
	rec := httptest.NewRecorder()
	h.AskHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var msg models.ChatMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &msg))
	assert.Equal(t, "assistant", msg.Role)
	assert.Equal(t, "Revenue grew 12%.", msg.Content)
	require.Len(t, msg.Sources, 1)
	assert.Equal(t, "doc_1", msg.Sources[0].DocumentID)
}

func TestAskHandler_RejectsBadJSON(t *testing.T) {
	h := newChatHandler(&mockChatService{}, newMockChatStorage())

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	h.AskHandler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAskHandler_ServiceError(t *testing.T) {
	chat := &mockChatService{
		askFunc: func(ctx context.Context, req *interfaces.AskRequest) (*models.ChatMessage, error) {
			return nil, fmt.Errorf("message is required")
		},
	}
	h := newChatHandler(chat, newMockChatStorage())

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":""}`))
	rec := httptest.NewRecorder()
	h.AskHandler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "message is required")
}

func TestAskHandler_RejectsGet(t *testing.T) {
	h := newChatHandler(&mockChatService{}, newMockChatStorage())

	req := httptest.NewRequest(http.MethodGet, "/api/chat", nil)
	rec := httptest.NewRecorder()
	h.AskHandler(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHealthHandler_ReportsUnavailable(t *testing.T) {
	chat := &mockChatService{
		healthFunc: func(ctx context.Context) error { return fmt.Errorf("no API key") },
	}
	h := newChatHandler(chat, newMockChatStorage())

	req := httptest.NewRequest(http.MethodGet, "/api/chat/health", nil)
	rec := httptest.NewRecorder()
	h.HealthHandler(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "no API key")
}

func TestSessionRoutes_MessagesAndDelete(t *testing.T) {
	chats := newMockChatStorage()
	chats.SaveSession(&models.ChatSession{ID: "sess_1", Title: "Revenue questions"})
	chats.SaveMessage(&models.ChatMessage{ID: "msg_1", SessionID: "sess_1", Role: "user", Content: "hi"})
	chats.SaveMessage(&models.ChatMessage{ID: "msg_2", SessionID: "sess_1", Role: "assistant", Content: "hello"})
	h := newChatHandler(&mockChatService{}, chats)

	req := httptest.NewRequest(http.MethodGet, "/api/chat/sessions/sess_1/messages", nil)
	rec := httptest.NewRecorder()
	h.SessionRoutesHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Messages []*models.ChatMessage `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Messages, 2)

	req = httptest.NewRequest(http.MethodDelete, "/api/chat/sessions/sess_1", nil)
	rec = httptest.NewRecorder()
	h.SessionRoutesHandler(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	remaining, _ := chats.ListSessions()
	assert.Empty(t, remaining)
}

func TestExportHandler_ProducesPDF(t *testing.T) {
	chats := newMockChatStorage()
	chats.SaveSession(&models.ChatSession{ID: "sess_1", Title: "Revenue questions"})
	chats.SaveMessage(&models.ChatMessage{
		ID:        "msg_1",
		SessionID: "sess_1",
		Role:      "assistant",
		Content:   "Revenue grew **12%** last quarter.",
		Sources: []models.Source{
			{DocumentID: "doc_1", DocumentName: "report.pdf", Excerpts: []string{"12% growth"}, RelevanceScore: 0.92},
		},
	})
	h := newChatHandler(&mockChatService{}, chats)

	body := strings.NewReader(`{"session_id":"sess_1","message_id":"msg_1"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/chat/export", body)
	rec := httptest.NewRecorder()
	h.ExportHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF"))
}

func TestExportHandler_MessageNotFound(t *testing.T) {
	chats := newMockChatStorage()
	chats.SaveSession(&models.ChatSession{ID: "sess_1", Title: "Empty"})
	h := newChatHandler(&mockChatService{}, chats)

	body := strings.NewReader(`{"session_id":"sess_1","message_id":"msg_missing"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/chat/export", body)
	rec := httptest.NewRecorder()
	h.ExportHandler(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
