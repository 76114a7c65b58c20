package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/rogo/internal/common"
	"github.com/ternarybob/rogo/internal/interfaces"
	"google.golang.org/genai"
)

func TestDetectProvider(t *testing.T) {
	tests := []struct {
		model    string
		expected common.LLMProvider
	}{
		{"gpt-3.5-turbo-0125", common.LLMProviderOpenAI},
		{"gpt-4o", common.LLMProviderOpenAI},
		{"o1-mini", common.LLMProviderOpenAI},
		{"o3-mini", common.LLMProviderOpenAI},
		{"claude-sonnet-4-20250514", common.LLMProviderClaude},
		{"claude-3-5-haiku-latest", common.LLMProviderClaude},
		{"gemini-2.0-flash", common.LLMProviderGemini},
		{"GPT-4", common.LLMProviderOpenAI},
		{"Claude-3-opus", common.LLMProviderClaude},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectProvider(tt.model, common.LLMProviderOpenAI))
		})
	}
}

func TestDetectProvider_UnknownFallsBack(t *testing.T) {
	assert.Equal(t, common.LLMProviderGemini, DetectProvider("mystery-model", common.LLMProviderGemini))
	assert.Equal(t, common.LLMProviderOpenAI, DetectProvider("", common.LLMProviderOpenAI))
}

func TestConvertMessages_SystemExtracted(t *testing.T) {
	msgs, system, err := convertMessages([]interfaces.Message{
		{Role: "system", Content: "be terse"},
		{Role: "user", Content: "hello"},
		{Role: "assistant", Content: "hi"},
	})
	require.NoError(t, err)
	assert.Equal(t, "be terse", system)
	assert.Len(t, msgs, 2)
}

func TestConvertMessages_RejectsEmpty(t *testing.T) {
	_, _, err := convertMessages(nil)
	assert.Error(t, err)

	_, _, err = convertMessages([]interfaces.Message{{Role: "system", Content: "only system"}})
	assert.Error(t, err)
}

func TestConvertMessagesToGemini(t *testing.T) {
	contents, system, err := convertMessagesToGemini([]interfaces.Message{
		{Role: "system", Content: "ground your answers"},
		{Role: "user", Content: "question"},
	})
	require.NoError(t, err)
	assert.Equal(t, "ground your answers", system)
	require.Len(t, contents, 1)
	assert.Equal(t, genai.RoleUser, contents[0].Role)
}
