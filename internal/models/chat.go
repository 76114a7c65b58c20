package models

import "time"

// Source is a per-document citation attached to an assistant message.
// Excerpts preserve retrieval order, at most three per document.
type Source struct {
	DocumentID     string   `json:"documentId"`
	DocumentName   string   `json:"documentName"`
	Excerpts       []string `json:"excerpts"`
	RelevanceScore float64  `json:"relevanceScore"`
}

// ChatMessage is a single turn in a chat session. Sources are only present
// on assistant messages and are not persisted independently of the message.
type ChatMessage struct {
	ID        string   `json:"id"` // msg_<uuid>
	SessionID string   `json:"session_id"`
	Role      string   `json:"role"` // user, assistant
	Content   string   `json:"content"`
	Timestamp int64    `json:"timestamp"` // unix milliseconds
	Sources   []Source `json:"sources,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// ChatSession groups messages belonging to one conversation.
type ChatSession struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
