package badger

import (
	"fmt"
	"sort"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/rogo/internal/interfaces"
	"github.com/ternarybob/rogo/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// ChatStorage implements the ChatStorage interface for Badger
type ChatStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewChatStorage creates a new ChatStorage instance
func NewChatStorage(db *BadgerDB, logger arbor.ILogger) interfaces.ChatStorage {
	return &ChatStorage{
		db:     db,
		logger: logger,
	}
}

func (s *ChatStorage) SaveMessage(msg *models.ChatMessage) error {
	if msg.ID == "" {
		return fmt.Errorf("message ID is required")
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	if err := s.db.Store().Upsert(msg.ID, msg); err != nil {
		return fmt.Errorf("failed to save chat message: %w", err)
	}
	return nil
}

func (s *ChatStorage) GetMessages(sessionID string) ([]*models.ChatMessage, error) {
	var msgs []models.ChatMessage
	if err := s.db.Store().Find(&msgs, badgerhold.Where("SessionID").Eq(sessionID)); err != nil {
		return nil, fmt.Errorf("failed to get chat messages: %w", err)
	}

	sort.Slice(msgs, func(i, j int) bool {
		return msgs[i].Timestamp < msgs[j].Timestamp
	})

	result := make([]*models.ChatMessage, len(msgs))
	for i := range msgs {
		result[i] = &msgs[i]
	}
	return result, nil
}

func (s *ChatStorage) SaveSession(session *models.ChatSession) error {
	if session.ID == "" {
		return fmt.Errorf("session ID is required")
	}
	now := time.Now()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now
	if err := s.db.Store().Upsert(session.ID, session); err != nil {
		return fmt.Errorf("failed to save chat session: %w", err)
	}
	return nil
}

func (s *ChatStorage) GetSession(id string) (*models.ChatSession, error) {
	var session models.ChatSession
	if err := s.db.Store().Get(id, &session); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("chat session not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get chat session: %w", err)
	}
	return &session, nil
}

func (s *ChatStorage) ListSessions() ([]*models.ChatSession, error) {
	var sessions []models.ChatSession
	if err := s.db.Store().Find(&sessions, badgerhold.Where("ID").Ne("")); err != nil {
		return nil, fmt.Errorf("failed to list chat sessions: %w", err)
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].UpdatedAt.After(sessions[j].UpdatedAt)
	})

	result := make([]*models.ChatSession, len(sessions))
	for i := range sessions {
		result[i] = &sessions[i]
	}
	return result, nil
}

func (s *ChatStorage) DeleteSession(id string) error {
	if err := s.db.Store().Delete(id, &models.ChatSession{}); err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete chat session: %w", err)
	}
	if err := s.db.Store().DeleteMatching(&models.ChatMessage{}, badgerhold.Where("SessionID").Eq(id)); err != nil {
		return fmt.Errorf("failed to delete session messages: %w", err)
	}
	return nil
}
