package ingestion

import (
	"strings"
	"unicode/utf8"
)

// PastedTitle is used when pasted content has no heading-like first paragraph.
const PastedTitle = "Pasted Content"

// MaxTitleChars bounds the heading heuristic.
const MaxTitleChars = 150

// NormalizeNewlines converts CRLF and lone CR line endings to LF.
func NormalizeNewlines(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	return strings.ReplaceAll(content, "\r", "\n")
}

// SplitTitle treats the first paragraph as a title when it is shorter than
// MaxTitleChars characters and contains no period. The last remaining paragraph
// is never consumed.
func SplitTitle(paragraphs []string) (string, []string) {
	if len(paragraphs) < 2 {
		return PastedTitle, paragraphs
	}
	first := paragraphs[0]
	if first == "" || utf8.RuneCountInString(first) >= MaxTitleChars || strings.Contains(first, ".") {
		return PastedTitle, paragraphs
	}
	return first, paragraphs[1:]
}

// Truncate returns at most n characters of s.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
