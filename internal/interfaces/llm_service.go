package interfaces

import (
	"context"
)

// Message represents a single message in a chat conversation
type Message struct {
	// Role identifies the message sender: "user", "assistant", or "system"
	Role string

	// Content contains the text content of the message
	Content string
}

// GenerateRequest is a provider-agnostic content generation request.
// Model and Temperature come from the RagSettings in effect at call time.
type GenerateRequest struct {
	Messages    []Message
	Model       string
	Temperature float32
	MaxTokens   int
}

// LLMService defines the capability boundary to the external embedding and
// generation models. Implementations route to cloud providers based on the
// requested model name.
type LLMService interface {
	// Embed generates an embedding vector for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts, order-preserving
	// and the same length as the input.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Generate produces a completion for the given request.
	Generate(ctx context.Context, req *GenerateRequest) (string, error)

	// IsConfigured reports whether any provider credential is available.
	// When false the ingestion pipeline skips embedding and chat uses the
	// rule-based fallback responder.
	IsConfigured() bool

	// HealthCheck verifies the service can handle requests.
	HealthCheck(ctx context.Context) error

	// Close releases provider clients.
	Close() error
}
