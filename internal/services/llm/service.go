// -----------------------------------------------------------------------
// LLM Service - Provider-routing facade over OpenAI, Claude and Gemini
// -----------------------------------------------------------------------

package llm

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/rogo/internal/common"
	"github.com/ternarybob/rogo/internal/interfaces"
)

// Service routes generation requests to the provider owning the requested
// model. Embeddings always go through OpenAI, which keeps every stored
// index in one vector space regardless of the chat model in use.
type Service struct {
	config *common.Config
	logger arbor.ILogger

	openai *openAIService
	claude *claudeService
	gemini *geminiService
}

// Compile-time interface assertion
var _ interfaces.LLMService = (*Service)(nil)

// NewService constructs provider clients for every configured credential.
// Missing credentials are not an error: the service degrades to whatever
// providers are available, and IsConfigured reports the embedding path.
func NewService(ctx context.Context, cfg *common.Config, logger arbor.ILogger) (*Service, error) {
	s := &Service{
		config: cfg,
		logger: logger,
	}

	if cfg.OpenAI.APIKey != "" {
		svc, err := newOpenAIService(&cfg.OpenAI, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize OpenAI provider: %w", err)
		}
		s.openai = svc
	}
	if cfg.Claude.APIKey != "" {
		svc, err := newClaudeService(&cfg.Claude, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Claude provider: %w", err)
		}
		s.claude = svc
	}
	if cfg.Gemini.APIKey != "" {
		svc, err := newGeminiService(ctx, &cfg.Gemini, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Gemini provider: %w", err)
		}
		s.gemini = svc
	}

	logger.Info().
		Bool("openai", s.openai != nil).
		Bool("claude", s.claude != nil).
		Bool("gemini", s.gemini != nil).
		Str("default_provider", string(cfg.LLM.DefaultProvider)).
		Msg("LLM service initialized")

	return s, nil
}

// Embed generates an embedding for a single text
func (s *Service) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("expected 1 embedding, got %d", len(vectors))
	}
	return vectors[0], nil
}

// EmbedBatch generates embeddings for a batch of texts in input order
func (s *Service) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if s.openai == nil {
		return nil, fmt.Errorf("embedding requires an OpenAI API key")
	}
	return s.openai.embedBatch(ctx, texts)
}

// Generate produces a completion, routing by the requested model's name
func (s *Service) Generate(ctx context.Context, req *interfaces.GenerateRequest) (string, error) {
	provider := DetectProvider(req.Model, s.config.LLM.DefaultProvider)

	switch provider {
	case common.LLMProviderClaude:
		if s.claude == nil {
			return "", fmt.Errorf("model %q requires an Anthropic API key", req.Model)
		}
		return s.claude.generate(ctx, req)
	case common.LLMProviderGemini:
		if s.gemini == nil {
			return "", fmt.Errorf("model %q requires a Gemini API key", req.Model)
		}
		return s.gemini.generate(ctx, req)
	default:
		if s.openai == nil {
			return "", fmt.Errorf("model %q requires an OpenAI API key", req.Model)
		}
		return s.openai.generate(ctx, req)
	}
}

// IsConfigured reports whether the embedding provider is available.
// Without it documents cannot be indexed and queries cannot be embedded,
// so chat falls back to the rule-based responder.
func (s *Service) IsConfigured() bool {
	return s.openai != nil
}

// HealthCheck probes the embedding provider
func (s *Service) HealthCheck(ctx context.Context) error {
	if s.openai == nil {
		return fmt.Errorf("no embedding provider configured")
	}
	return s.openai.healthCheck(ctx)
}

// Close releases provider clients
func (s *Service) Close() error {
	s.openai = nil
	s.claude = nil
	s.gemini = nil
	return nil
}
