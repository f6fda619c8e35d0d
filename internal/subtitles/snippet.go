package subtitles

import (
	"strings"
	"unicode/utf8"
)

// SnippetLength is the dialogue excerpt size shown on review items.
const SnippetLength = 500

// MatcherBudget caps the total subtitle text handed to the episode matcher.
const MatcherBudget = 500_000

// Snippet returns the leading dialogue excerpt with whitespace collapsed,
// cut at SnippetLength characters on a rune boundary.
func Snippet(content string) string {
	collapsed := strings.Join(strings.Fields(content), " ")
	return truncate(collapsed, SnippetLength)
}

// TruncateProportionally shrinks contents so their combined length fits
// budget, trimming each document in proportion to its size. Inputs already
// within budget come back unchanged.
func TruncateProportionally(contents []string, budget int) []string {
	total := 0
	for _, c := range contents {
		total += len(c)
	}
	if total <= budget || total == 0 {
		return contents
	}
	ratio := float64(budget) / float64(total)
	out := make([]string, len(contents))
	for i, c := range contents {
		keep := int(float64(len(c)) * ratio)
		out[i] = truncate(c, keep)
	}
	return out
}

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
