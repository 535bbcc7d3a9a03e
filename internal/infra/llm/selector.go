// Package llm — heuristic provider selection.
// The selector is a deterministic router, not a classifier: fixed base scores
// encode a static quality/speed prior per provider, independent additive
// bonuses fire on message features, and ties break on the fixed priority
// order. Every decision logs its full score breakdown so routing is
// auditable after the fact.
package llm

import (
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Base scores and feature bonuses. The magnitudes are tuning values carried
// over from the service's history; their relative ordering is what matters
// and what the tests pin down.
const (
	baseScoreOpenAI  = 85
	baseScoreGemini  = 80
	baseScoreMistral = 75

	bonusLegalOpenAI     = 15 // document analysis: openai is the thorough one
	bonusLegalGemini     = 10
	bonusReasoningGemini = 15 // comparison/reasoning tasks
	bonusReasoningOpenAI = 10
	bonusShortMistral    = 15 // quick interrogative questions
	bonusShortOpenAI     = 5
	bonusCodeGemini      = 12
	bonusCodeOpenAI      = 8
	bonusHistoryOpenAI   = 10 // long conversations: context retention
	bonusHistoryGemini   = 5
	bonusNonASCIIMistral = 10 // multilingual content
	bonusNonASCIIGemini  = 8

	shortMessageTokenLimit  = 10
	longConversationMinimum = 10
)

var (
	legalTerms     = []string{"contract", "legal", "document", "analyze", "review", "clause"}
	reasoningTerms = []string{"explain", "compare", "analyze", "reasoning", "logic", "complex"}
	questionTerms  = []string{"what", "how", "when", "where", "who"}
	codeTerms      = []string{"code", "programming", "function", "algorithm", "debug"}
)

// Selector picks the best available provider for a message.
type Selector struct {
	reg *Registry
	log *zap.Logger
}

// NewSelector creates a Selector over the given registry.
func NewSelector(reg *Registry, log *zap.Logger) *Selector {
	return &Selector{reg: reg, log: log}
}

// Select returns the chosen provider name, or "" when no provider is
// available. Identical (message, keys, history length) input always yields
// the same choice.
func (s *Selector) Select(message string, perRequestKeys map[string]string, historyTurns int) string {
	available := make([]string, 0, len(providerPriority))
	for _, name := range providerPriority {
		if s.reg.IsAvailable(name, perRequestKeys) {
			available = append(available, name)
		}
	}

	if len(available) == 0 {
		return ""
	}
	if len(available) == 1 {
		return available[0]
	}

	scores := s.scoreProviders(message, historyTurns, available)

	// Strictly highest total wins; ties resolve by priority order, which is
	// already the iteration order of `available`.
	best := available[0]
	for _, name := range available[1:] {
		if scores[name] > scores[best] {
			best = name
		}
	}

	s.log.Info("auto-selected provider",
		zap.String("provider", best),
		zap.Any("scores", orderedScores(scores, available)))
	return best
}

// scoreProviders computes base + feature bonuses for each available provider.
func (s *Selector) scoreProviders(message string, historyTurns int, available []string) map[string]int {
	lower := strings.ToLower(message)
	scores := make(map[string]int, len(available))

	for _, name := range available {
		score := 0
		switch name {
		case ProviderOpenAI:
			score = baseScoreOpenAI
		case ProviderGemini:
			score = baseScoreGemini
		case ProviderMistral:
			score = baseScoreMistral
		}

		if containsAny(lower, legalTerms) {
			switch name {
			case ProviderOpenAI:
				score += bonusLegalOpenAI
			case ProviderGemini:
				score += bonusLegalGemini
			}
		}

		if containsAny(lower, reasoningTerms) {
			switch name {
			case ProviderGemini:
				score += bonusReasoningGemini
			case ProviderOpenAI:
				score += bonusReasoningOpenAI
			}
		}

		if isShortQuestion(message, lower) {
			switch name {
			case ProviderMistral:
				score += bonusShortMistral
			case ProviderOpenAI:
				score += bonusShortOpenAI
			}
		}

		if containsAny(lower, codeTerms) {
			switch name {
			case ProviderGemini:
				score += bonusCodeGemini
			case ProviderOpenAI:
				score += bonusCodeOpenAI
			}
		}

		if historyTurns > longConversationMinimum {
			switch name {
			case ProviderOpenAI:
				score += bonusHistoryOpenAI
			case ProviderGemini:
				score += bonusHistoryGemini
			}
		}

		if hasNonASCII(message) {
			switch name {
			case ProviderMistral:
				score += bonusNonASCIIMistral
			case ProviderGemini:
				score += bonusNonASCIIGemini
			}
		}

		scores[name] = score
	}
	return scores
}

// containsAny reports whether lower contains any of the given terms.
func containsAny(lower string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}

// isShortQuestion matches short interrogative messages (under the token
// limit and containing a question word).
func isShortQuestion(message, lower string) bool {
	return len(strings.Fields(message)) < shortMessageTokenLimit && containsAny(lower, questionTerms)
}

// hasNonASCII reports whether message contains any rune outside 7-bit ASCII.
func hasNonASCII(message string) bool {
	for _, r := range message {
		if r > 127 {
			return true
		}
	}
	return false
}

// scorePair is one provider/score line of the logged breakdown.
type scorePair struct {
	Provider string `json:"provider"`
	Score    int    `json:"score"`
}

// orderedScores renders the breakdown in a stable order for logging.
func orderedScores(scores map[string]int, available []string) []scorePair {
	out := make([]scorePair, 0, len(available))
	for _, name := range available {
		out = append(out, scorePair{Provider: name, Score: scores[name]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}
