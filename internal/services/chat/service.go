// -----------------------------------------------------------------------
// Chat Service - Grounded question answering over the document selection
// -----------------------------------------------------------------------

package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/rogo/internal/common"
	"github.com/ternarybob/rogo/internal/interfaces"
	"github.com/ternarybob/rogo/internal/models"
)

// apologyMessage is returned when generation fails; the caller still gets
// a successful response
const apologyMessage = "I'm sorry, there was an error processing your request. Please try again."

// maxExcerptsPerDocument bounds each citation group
const maxExcerptsPerDocument = 3

// Service answers chat turns from the current document selection: compose
// the selection's indices, retrieve, generate with strict grounding, then
// group the retrieved chunks into per-document citations. Every degraded
// path still produces an assistant message.
type Service struct {
	documents interfaces.DocumentStorage
	chats     interfaces.ChatStorage
	settings  interfaces.SettingsStorage
	composer  interfaces.RetrieverComposer
	embedder  interfaces.EmbeddingService
	llm       interfaces.LLMService
	fallback  *fallbackResponder
	logger    arbor.ILogger
}

// Compile-time interface assertion
var _ interfaces.ChatService = (*Service)(nil)

// NewService creates a chat service. rulesPath optionally points to a
// YAML file overriding the fallback responder's rules.
func NewService(
	documents interfaces.DocumentStorage,
	chats interfaces.ChatStorage,
	settings interfaces.SettingsStorage,
	composer interfaces.RetrieverComposer,
	embedder interfaces.EmbeddingService,
	llm interfaces.LLMService,
	rulesPath string,
	logger arbor.ILogger,
) *Service {
	return &Service{
		documents: documents,
		chats:     chats,
		settings:  settings,
		composer:  composer,
		embedder:  embedder,
		llm:       llm,
		fallback:  newFallbackResponder(rulesPath, logger),
		logger:    logger,
	}
}

// Ask answers one chat turn and persists both sides of the exchange
func (s *Service) Ask(ctx context.Context, req *interfaces.AskRequest) (*models.ChatMessage, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, fmt.Errorf("message is required")
	}

	session, err := s.resolveSession(req.SessionID, message)
	if err != nil {
		return nil, err
	}

	userMsg := &models.ChatMessage{
		ID:        common.NewMessageID(),
		SessionID: session.ID,
		Role:      "user",
		Content:   message,
		Timestamp: time.Now().UnixMilli(),
	}
	if err := s.chats.SaveMessage(userMsg); err != nil {
		return nil, fmt.Errorf("failed to save user message: %w", err)
	}

	content, sources := s.answer(ctx, message)

	assistantMsg := &models.ChatMessage{
		ID:        common.NewMessageID(),
		SessionID: session.ID,
		Role:      "assistant",
		Content:   content,
		Timestamp: time.Now().UnixMilli(),
		Sources:   sources,
	}
	if err := s.chats.SaveMessage(assistantMsg); err != nil {
		return nil, fmt.Errorf("failed to save assistant message: %w", err)
	}

	session.UpdatedAt = time.Now()
	if err := s.chats.SaveSession(session); err != nil {
		s.logger.Warn().Err(err).Str("session_id", session.ID).Msg("Failed to touch session")
	}

	return assistantMsg, nil
}

// answer produces the assistant content and citations, degrading through
// the fallback and apology paths instead of returning errors
func (s *Service) answer(ctx context.Context, message string) (string, []models.Source) {
	selected, err := s.documents.GetSelected()
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to read selection")
		return apologyMessage, nil
	}

	if len(selected) == 0 || !s.embedder.IsAvailable(ctx) {
		return s.fallback.respond(message, selected)
	}

	ids := make([]string, len(selected))
	for i, doc := range selected {
		ids[i] = doc.ID
	}

	retriever, err := s.composer.ComposeRetriever(ctx, ids)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to compose retriever")
		return apologyMessage, nil
	}
	if retriever == nil {
		// Selection exists but nothing is indexed yet
		return s.fallback.respond(message, selected)
	}

	ragSettings, err := s.settings.Get()
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to read settings")
		return apologyMessage, nil
	}

	chunks, err := retriever.Retrieve(ctx, message, ragSettings.RetrievalK)
	if err != nil {
		s.logger.Error().Err(err).Msg("Retrieval failed")
		return apologyMessage, nil
	}
	if len(chunks) == 0 {
		return refusalMessage, nil
	}

	generated, err := s.llm.Generate(ctx, &interfaces.GenerateRequest{
		Messages:    buildPrompt(message, chunks),
		Model:       ragSettings.Model,
		Temperature: ragSettings.Temperature,
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("Generation failed, returning apology")
		return apologyMessage, nil
	}

	return generated, buildSources(chunks)
}

// HealthCheck verifies the generation capability is reachable
func (s *Service) HealthCheck(ctx context.Context) error {
	return s.llm.HealthCheck(ctx)
}

func (s *Service) resolveSession(sessionID, firstMessage string) (*models.ChatSession, error) {
	if sessionID != "" {
		session, err := s.chats.GetSession(sessionID)
		if err == nil {
			return session, nil
		}
		s.logger.Warn().Str("session_id", sessionID).Msg("Unknown session, creating a new one")
	}

	session := &models.ChatSession{
		ID:        common.NewSessionID(),
		Title:     sessionTitle(firstMessage),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := s.chats.SaveSession(session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

func sessionTitle(message string) string {
	const maxTitle = 60
	title := strings.TrimSpace(message)
	if len(title) > maxTitle {
		title = strings.TrimSpace(title[:maxTitle]) + "..."
	}
	return title
}

// buildPrompt assembles the grounded generation request: a strict system
// instruction, the retrieved context, and the question
func buildPrompt(question string, chunks []models.ScoredChunk) []interfaces.Message {
	var context strings.Builder
	for i, chunk := range chunks {
		if i > 0 {
			context.WriteString("\n\n---\n\n")
		}
		context.WriteString(fmt.Sprintf("[%s]\n%s", chunk.DocumentName, chunk.Chunk.Text))
	}

	system := "You are a document question answering assistant. Answer the user's question using only the context provided below. " +
		"Do not use outside knowledge and never fabricate information. " +
		"If the context does not contain the information needed to answer, reply exactly with: " +
		refusalMessage +
		"\n\nContext:\n" + context.String()

	return []interfaces.Message{
		{Role: "system", Content: system},
		{Role: "user", Content: question},
	}
}

// buildSources groups retrieved chunks into per-document citations,
// preserving retrieval order. Each group keeps at most three excerpts and
// the score of its best-ranked member.
func buildSources(chunks []models.ScoredChunk) []models.Source {
	var sources []models.Source
	byDocument := make(map[string]int)

	for _, chunk := range chunks {
		idx, seen := byDocument[chunk.Chunk.DocumentID]
		if !seen {
			byDocument[chunk.Chunk.DocumentID] = len(sources)
			sources = append(sources, models.Source{
				DocumentID:     chunk.Chunk.DocumentID,
				DocumentName:   chunk.DocumentName,
				Excerpts:       []string{chunk.Chunk.Text},
				RelevanceScore: chunk.Score,
			})
			continue
		}
		if len(sources[idx].Excerpts) < maxExcerptsPerDocument {
			sources[idx].Excerpts = append(sources[idx].Excerpts, chunk.Chunk.Text)
		}
	}

	return sources
}
