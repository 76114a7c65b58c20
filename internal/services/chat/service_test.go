package chat

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/rogo/internal/common"
	"github.com/ternarybob/rogo/internal/interfaces"
	"github.com/ternarybob/rogo/internal/models"
	"github.com/ternarybob/rogo/internal/services/retrieval"
	"github.com/ternarybob/rogo/internal/storage/badger"
	"github.com/ternarybob/rogo/internal/storage/index"
)

// mockLLM is a scriptable LLM for chat tests
type mockLLM struct {
	configured   bool
	generateErr  error
	response     string
	lastMessages []interfaces.Message
	lastModel    string
}

func (m *mockLLM) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := m.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (m *mockLLM) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = []float32{float32(len(t)), 1}
	}
	return out, nil
}

func (m *mockLLM) Generate(ctx context.Context, req *interfaces.GenerateRequest) (string, error) {
	m.lastMessages = req.Messages
	m.lastModel = req.Model
	if m.generateErr != nil {
		return "", m.generateErr
	}
	return m.response, nil
}

func (m *mockLLM) IsConfigured() bool                    { return m.configured }
func (m *mockLLM) HealthCheck(ctx context.Context) error { return nil }
func (m *mockLLM) Close() error                          { return nil }

// mockEmbedder returns a fixed query vector aligned with indexed content
type mockEmbedder struct {
	available bool
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0}, nil
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0}
	}
	return out, nil
}

func (m *mockEmbedder) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	return []float32{1, 0}, nil
}

func (m *mockEmbedder) Dimension() int                       { return 2 }
func (m *mockEmbedder) IsAvailable(ctx context.Context) bool { return m.available }

type fixture struct {
	service *Service
	manager interfaces.StorageManager
	index   *index.Store
	llm     *mockLLM
}

func setup(t *testing.T) *fixture {
	t.Helper()
	logger := arbor.NewLogger()
	dir := t.TempDir()

	manager, err := badger.NewManager(logger, &common.BadgerConfig{Path: filepath.Join(dir, "db")})
	require.NoError(t, err)
	t.Cleanup(func() { manager.Close() })

	indexStore, err := index.NewStore(filepath.Join(dir, "indices"), logger)
	require.NoError(t, err)

	embedder := &mockEmbedder{available: true}
	llm := &mockLLM{configured: true, response: "grounded answer"}
	composer := retrieval.NewComposer(indexStore, embedder, logger)

	svc := NewService(
		manager.DocumentStorage(),
		manager.ChatStorage(),
		manager.SettingsStorage(),
		composer,
		embedder,
		llm,
		"",
		logger)

	return &fixture{
		service: svc,
		manager: manager,
		index:   indexStore,
		llm:     llm,
	}
}

func (f *fixture) addIndexedDocument(t *testing.T, name string, texts ...string) *models.Document {
	t.Helper()
	doc := &models.Document{
		ID:       common.NewDocumentID(),
		Name:     name,
		Status:   models.StatusPending,
		Selected: true,
	}
	require.NoError(t, f.manager.DocumentStorage().Save(doc))
	_, err := f.manager.DocumentStorage().UpdateStatus(doc.ID, models.StatusProcessing, "")
	require.NoError(t, err)
	_, err = f.manager.DocumentStorage().UpdateStatus(doc.ID, models.StatusCompleted, "")
	require.NoError(t, err)

	chunks := make([]models.Chunk, len(texts))
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		chunks[i] = models.Chunk{Text: text, DocumentID: doc.ID, Sequence: i}
		vectors[i] = []float32{1, 0}
	}
	require.NoError(t, f.index.CreateOrAppend(doc.ID, doc.Name, chunks, vectors))
	return doc
}

func TestAsk_GroundedAnswerWithCitations(t *testing.T) {
	f := setup(t)
	doc := f.addIndexedDocument(t, "financials.txt", "Revenue increased by 12% in 2023")

	msg, err := f.service.Ask(context.Background(), &interfaces.AskRequest{Message: "What was the revenue change?"})
	require.NoError(t, err)

	assert.Equal(t, "assistant", msg.Role)
	assert.Equal(t, "grounded answer", msg.Content)
	require.Len(t, msg.Sources, 1)
	assert.Equal(t, doc.ID, msg.Sources[0].DocumentID)
	assert.Equal(t, "financials.txt", msg.Sources[0].DocumentName)
	require.NotEmpty(t, msg.Sources[0].Excerpts)
	assert.Contains(t, msg.Sources[0].Excerpts[0], "12%")
	assert.NotEmpty(t, msg.ID)
	assert.NotEmpty(t, msg.SessionID)
	assert.Greater(t, msg.Timestamp, int64(0))
}

func TestAsk_PromptContainsContextAndQuestion(t *testing.T) {
	f := setup(t)
	f.addIndexedDocument(t, "plan.txt", "the timeline is eight months")

	_, err := f.service.Ask(context.Background(), &interfaces.AskRequest{Message: "How long is the timeline?"})
	require.NoError(t, err)

	require.Len(t, f.llm.lastMessages, 2)
	system := f.llm.lastMessages[0]
	assert.Equal(t, "system", system.Role)
	assert.Contains(t, system.Content, "the timeline is eight months")
	assert.Contains(t, system.Content, refusalMessage)
	assert.Equal(t, "user", f.llm.lastMessages[1].Role)
	assert.Equal(t, "How long is the timeline?", f.llm.lastMessages[1].Content)
	assert.Equal(t, "gpt-3.5-turbo-0125", f.llm.lastModel)
}

func TestAsk_GenerationFailureReturnsApology(t *testing.T) {
	f := setup(t)
	f.addIndexedDocument(t, "doc.txt", "some content")
	f.llm.generateErr = fmt.Errorf("provider exploded")

	msg, err := f.service.Ask(context.Background(), &interfaces.AskRequest{Message: "anything"})
	require.NoError(t, err, "generation failure must not surface as an error")
	assert.Equal(t, apologyMessage, msg.Content)
	assert.Empty(t, msg.Sources)
}

func TestAsk_NoSelectionUsesFallback(t *testing.T) {
	f := setup(t)

	msg, err := f.service.Ask(context.Background(), &interfaces.AskRequest{Message: "what is the weather"})
	require.NoError(t, err)
	assert.Equal(t, refusalMessage, msg.Content)
	assert.Empty(t, msg.Sources)
}

func TestAsk_NoSelectionKeywordMatchGetsCannedAnswer(t *testing.T) {
	f := setup(t)

	msg, err := f.service.Ask(context.Background(), &interfaces.AskRequest{Message: "tell me about revenue"})
	require.NoError(t, err)
	assert.Contains(t, msg.Content, "12%")
	assert.Empty(t, msg.Sources, "no selected documents means no synthetic citations")
}

func TestAsk_FallbackCitesSelectedDocuments(t *testing.T) {
	f := setup(t)

	// Selected but never indexed, so retrieval cannot serve it
	doc := &models.Document{
		ID:       common.NewDocumentID(),
		Name:     "pending.txt",
		Status:   models.StatusPending,
		Selected: true,
	}
	require.NoError(t, f.manager.DocumentStorage().Save(doc))

	msg, err := f.service.Ask(context.Background(), &interfaces.AskRequest{Message: "show me the financial numbers"})
	require.NoError(t, err)
	assert.Contains(t, msg.Content, "12%")
	require.Len(t, msg.Sources, 1)
	assert.Equal(t, doc.ID, msg.Sources[0].DocumentID)
	assert.InDelta(t, 0.92, msg.Sources[0].RelevanceScore, 1e-9)
}

func TestAsk_PersistsBothTurns(t *testing.T) {
	f := setup(t)
	f.addIndexedDocument(t, "doc.txt", "content")

	msg, err := f.service.Ask(context.Background(), &interfaces.AskRequest{Message: "a question"})
	require.NoError(t, err)

	history, err := f.manager.ChatStorage().GetMessages(msg.SessionID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "user", history[0].Role)
	assert.Equal(t, "a question", history[0].Content)
	assert.Equal(t, "assistant", history[1].Role)
}

func TestAsk_ReusesSession(t *testing.T) {
	f := setup(t)
	f.addIndexedDocument(t, "doc.txt", "content")

	first, err := f.service.Ask(context.Background(), &interfaces.AskRequest{Message: "first question"})
	require.NoError(t, err)

	second, err := f.service.Ask(context.Background(), &interfaces.AskRequest{
		Message:   "second question",
		SessionID: first.SessionID,
	})
	require.NoError(t, err)
	assert.Equal(t, first.SessionID, second.SessionID)

	history, err := f.manager.ChatStorage().GetMessages(first.SessionID)
	require.NoError(t, err)
	assert.Len(t, history, 4)
}

func TestAsk_EmptyMessageRejected(t *testing.T) {
	f := setup(t)

	_, err := f.service.Ask(context.Background(), &interfaces.AskRequest{Message: "   "})
	assert.Error(t, err)
}

func TestBuildSources_GroupsByDocument(t *testing.T) {
	chunks := []models.ScoredChunk{
		{Chunk: models.Chunk{Text: "a1", DocumentID: "doc_a"}, DocumentName: "a.txt", Score: 0.9},
		{Chunk: models.Chunk{Text: "b1", DocumentID: "doc_b"}, DocumentName: "b.txt", Score: 0.8},
		{Chunk: models.Chunk{Text: "a2", DocumentID: "doc_a"}, DocumentName: "a.txt", Score: 0.7},
		{Chunk: models.Chunk{Text: "a3", DocumentID: "doc_a"}, DocumentName: "a.txt", Score: 0.6},
		{Chunk: models.Chunk{Text: "a4", DocumentID: "doc_a"}, DocumentName: "a.txt", Score: 0.5},
	}

	sources := buildSources(chunks)
	require.Len(t, sources, 2)

	assert.Equal(t, "doc_a", sources[0].DocumentID)
	assert.Equal(t, []string{"a1", "a2", "a3"}, sources[0].Excerpts, "at most three excerpts, retrieval order")
	assert.InDelta(t, 0.9, sources[0].RelevanceScore, 1e-9, "group carries its first member's score")

	assert.Equal(t, "doc_b", sources[1].DocumentID)
	assert.Equal(t, []string{"b1"}, sources[1].Excerpts)
	assert.InDelta(t, 0.8, sources[1].RelevanceScore, 1e-9)
}

func TestSessionTitle_Truncates(t *testing.T) {
	long := "this is a very long question that keeps going and going well past the title limit"
	title := sessionTitle(long)
	assert.LessOrEqual(t, len(title), 64)
	assert.Contains(t, title, "this is a very long question")

	assert.Equal(t, "short", sessionTitle("short"))
}
