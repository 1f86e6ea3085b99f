package render

import (
	"strings"
	"unicode/utf8"
)

// TruncationMarker replaces the tail of text that does not fit its budget.
const TruncationMarker = "\n... (truncated)"

// Truncate shortens text to at most budget runes. When it cuts, the result is
// exactly budget runes long and ends with TruncationMarker. A budget of zero
// or less disables truncation.
func Truncate(text string, budget int) string {
	if budget <= 0 || utf8.RuneCountInString(text) <= budget {
		return text
	}

	markerLen := utf8.RuneCountInString(TruncationMarker)
	if budget <= markerLen {
		return string([]rune(TruncationMarker)[:budget])
	}

	runes := []rune(text)
	return string(runes[:budget-markerLen]) + TruncationMarker
}

// CodeBlock wraps text in a markdown fence.
func CodeBlock(text string) string {
	var b strings.Builder
	b.Grow(len(text) + 8)
	b.WriteString("```\n")
	b.WriteString(text)
	b.WriteString("\n```")
	return b.String()
}
