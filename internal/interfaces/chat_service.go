package interfaces

import (
	"context"

	"github.com/ternarybob/rogo/internal/models"
)

// AskRequest is a chat turn against the current document selection.
type AskRequest struct {
	// User's question
	Message string `json:"message"`

	// Session to append the exchange to; a new session is created when empty
	SessionID string `json:"session_id,omitempty"`
}

// ChatService answers questions from the selected documents' content with
// per-document source citations. It degrades rather than fails: generation
// errors produce a fixed apology message, and an unavailable retrieval path
// produces a rule-based fallback answer.
type ChatService interface {
	// Ask runs compose -> retrieve -> generate synchronously and returns
	// the persisted assistant message.
	Ask(ctx context.Context, req *AskRequest) (*models.ChatMessage, error)

	// HealthCheck verifies the generation capability is reachable.
	HealthCheck(ctx context.Context) error
}
