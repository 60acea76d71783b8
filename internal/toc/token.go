package toc

import (
	"strings"

	"github.com/dgallion1/docsect/internal/doctree"
)

// EstimateWords counts whitespace-separated words.
func EstimateWords(text string) int {
	return len(strings.Fields(text))
}

// EstimateTokens gives a rough token count at ~1.33 tokens per word.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	return max(tokensForWords(EstimateWords(text)), 1)
}

func tokensForWords(words int) int {
	return int(float64(words) * 1.33)
}

// countWords sums the words of every text node under n. Adjacent text nodes
// count separately even when the markup joins them without a space.
func countWords(n *doctree.Node) int {
	words := 0
	doctree.Walk(n, func(x *doctree.Node) bool {
		if x.IsText() {
			words += EstimateWords(x.Value)
		}
		return true
	})
	return words
}
