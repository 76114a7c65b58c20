package interfaces

import (
	"time"

	"github.com/ternarybob/rogo/internal/models"
)

// DocumentEvent notifies subscribers of a document status transition.
type DocumentEvent struct {
	DocumentID string                `json:"document_id"`
	Name       string                `json:"name"`
	Status     models.DocumentStatus `json:"status"`
	Reason     string                `json:"reason,omitempty"`
	Timestamp  time.Time             `json:"timestamp"`
}

// EventService fans document lifecycle events out to subscribers (the
// websocket handler). Publishing never blocks on slow subscribers.
type EventService interface {
	Publish(event DocumentEvent)

	// Subscribe returns a buffered event channel and a cancel function that
	// removes the subscription and closes the channel.
	Subscribe() (<-chan DocumentEvent, func())
}
