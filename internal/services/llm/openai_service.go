// -----------------------------------------------------------------------
// OpenAI Service - Embeddings and chat completions via the OpenAI API
// -----------------------------------------------------------------------

package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/rogo/internal/common"
	"github.com/ternarybob/rogo/internal/interfaces"
	"golang.org/x/time/rate"
)

// openAIService wraps the OpenAI client with rate limiting and timeouts.
// It is the only provider that serves embeddings; chat can route elsewhere.
type openAIService struct {
	config  *common.OpenAIConfig
	client  *openai.Client
	limiter *rate.Limiter
	timeout time.Duration
	logger  arbor.ILogger
}

func newOpenAIService(cfg *common.OpenAIConfig, logger arbor.ILogger) (*openAIService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required (set OPENAI_API_KEY or openai.api_key in config)")
	}

	timeout, err := time.ParseDuration(cfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid OpenAI timeout '%s': %w", cfg.Timeout, err)
	}

	interval, err := time.ParseDuration(cfg.RateLimit)
	if err != nil {
		return nil, fmt.Errorf("invalid OpenAI rate limit '%s': %w", cfg.RateLimit, err)
	}

	return &openAIService{
		config:  cfg,
		client:  openai.NewClient(cfg.APIKey),
		limiter: rate.NewLimiter(rate.Every(interval), 1),
		timeout: timeout,
		logger:  logger,
	}, nil
}

func (s *openAIService) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.client.CreateEmbeddings(timeoutCtx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(s.config.EmbeddingModel),
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI embedding call failed: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("OpenAI returned %d embeddings for %d inputs", len(resp.Data), len(texts))
	}

	// The API may return data out of order; Index restores input order
	vectors := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(vectors) {
			return nil, fmt.Errorf("OpenAI returned embedding with out-of-range index %d", d.Index)
		}
		vectors[d.Index] = d.Embedding
	}
	for i, v := range vectors {
		if len(v) == 0 {
			return nil, fmt.Errorf("OpenAI returned empty embedding for input %d", i)
		}
	}

	return vectors, nil
}

func (s *openAIService) generate(ctx context.Context, req *interfaces.GenerateRequest) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", err
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	model := req.Model
	if model == "" {
		model = s.config.Model
	}

	resp, err := s.client.CreateChatCompletion(timeoutCtx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("OpenAI chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("no response generated from OpenAI API")
	}

	return resp.Choices[0].Message.Content, nil
}

func (s *openAIService) healthCheck(ctx context.Context) error {
	probeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := s.embedBatch(probeCtx, []string{"ping"})
	if err != nil {
		return fmt.Errorf("OpenAI probe failed: %w", err)
	}
	return nil
}
