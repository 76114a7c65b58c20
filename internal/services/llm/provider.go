// -----------------------------------------------------------------------
// Provider Routing - Resolve chat models to their cloud providers
// -----------------------------------------------------------------------

package llm

import (
	"strings"

	"github.com/ternarybob/rogo/internal/common"
)

// DetectProvider maps a model name to the provider that serves it.
// Unrecognized names fall back to the configured default provider.
func DetectProvider(model string, fallback common.LLMProvider) common.LLMProvider {
	m := strings.ToLower(strings.TrimSpace(model))
	switch {
	case strings.HasPrefix(m, "gpt-"), strings.HasPrefix(m, "o1"), strings.HasPrefix(m, "o3"), strings.HasPrefix(m, "o4"):
		return common.LLMProviderOpenAI
	case strings.HasPrefix(m, "claude-"):
		return common.LLMProviderClaude
	case strings.HasPrefix(m, "gemini-"):
		return common.LLMProviderGemini
	default:
		return fallback
	}
}
