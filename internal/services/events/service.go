// -----------------------------------------------------------------------
// Event Service - Fan-out of document lifecycle events
// -----------------------------------------------------------------------

package events

import (
	"sync"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/rogo/internal/interfaces"
)

// subscriberBuffer bounds each subscriber's channel; events beyond the
// buffer are dropped for that subscriber rather than blocking publishers
const subscriberBuffer = 64

// Service is an in-process pub/sub hub for document status transitions.
// The ingest workers publish; the websocket handler subscribes.
type Service struct {
	mu          sync.Mutex
	subscribers map[int]chan interfaces.DocumentEvent
	nextID      int
	logger      arbor.ILogger
}

// Compile-time interface assertion
var _ interfaces.EventService = (*Service)(nil)

// NewService creates an event service
func NewService(logger arbor.ILogger) *Service {
	return &Service{
		subscribers: make(map[int]chan interfaces.DocumentEvent),
		logger:      logger,
	}
}

// Publish delivers the event to every subscriber without blocking.
// A subscriber whose buffer is full misses the event.
func (s *Service) Publish(event interfaces.DocumentEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, ch := range s.subscribers {
		select {
		case ch <- event:
		default:
			s.logger.Warn().
				Int("subscriber", id).
				Str("document_id", event.DocumentID).
				Msg("Dropping event for slow subscriber")
		}
	}
}

// Subscribe registers a new subscriber. The returned cancel function is
// idempotent and closes the channel.
func (s *Service) Subscribe() (<-chan interfaces.DocumentEvent, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan interfaces.DocumentEvent, subscriberBuffer)
	s.subscribers[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subscribers, id)
			close(ch)
		})
	}

	return ch, cancel
}
