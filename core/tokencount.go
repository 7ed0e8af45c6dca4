package core

import (
	"strings"
)

// EstimateTokens provides a rough token count estimation for embedding cost
// accounting. The embedding provider does not report usage per request, so a
// word/character hybrid heuristic is used instead.
func EstimateTokens(content string) int {
	if content == "" {
		return 0
	}

	words := strings.Fields(content)
	wordCount := len(words)

	charCount := len(strings.ReplaceAll(content, " ", ""))

	// ~1.3 tokens per word for English text, character-based for very short
	// texts, plus a small buffer for punctuation and formatting
	tokenEstimate := float64(wordCount) * 1.3
	if wordCount < 10 {
		tokenEstimate = float64(charCount) / 3.5
	}
	tokenEstimate *= 1.1

	return int(tokenEstimate)
}
