// Package segment splits plain text into paragraphs and counts words.
package segment

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MinParagraphChars is the length a fragment must exceed to count as a paragraph.
const MinParagraphChars = 20

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// Paragraphs splits text on blank lines, or on a newline directly followed by an
// uppercase ASCII letter, collapses whitespace inside each fragment and keeps
// fragments longer than MinParagraphChars characters.
func Paragraphs(text string) []string {
	var paragraphs []string
	for _, fragment := range Split(text) {
		fragment = Collapse(fragment)
		if utf8.RuneCountInString(fragment) > MinParagraphChars {
			paragraphs = append(paragraphs, fragment)
		}
	}
	return paragraphs
}

// Split returns the raw fragments between paragraph boundaries.
// A boundary is either a newline, optional whitespace, and another newline
// (consuming the whole whitespace run up to the last newline in it), or a
// single newline whose next character is in A-Z.
func Split(text string) []string {
	var parts []string
	start := 0

	for i := 0; i < len(text); i++ {
		if text[i] != '\n' {
			continue
		}

		lastNewline := -1
		for j := i + 1; j < len(text); {
			r, size := utf8.DecodeRuneInString(text[j:])
			if !unicode.IsSpace(r) {
				break
			}
			if r == '\n' {
				lastNewline = j
			}
			j += size
		}
		if lastNewline >= 0 {
			parts = append(parts, text[start:i])
			start = lastNewline + 1
			i = lastNewline
			continue
		}

		if i+1 < len(text) && text[i+1] >= 'A' && text[i+1] <= 'Z' {
			parts = append(parts, text[start:i])
			start = i + 1
		}
	}

	return append(parts, text[start:])
}

// Collapse replaces every whitespace run with a single space and trims the ends.
func Collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// CountWords counts whitespace-separated tokens.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// EscapeHTML escapes &, <, >, " and ' for embedding text in HTML.
func EscapeHTML(text string) string {
	return htmlEscaper.Replace(text)
}

// WrapParagraphs renders paragraphs as escaped <p> elements joined by newlines.
func WrapParagraphs(paragraphs []string) string {
	var sb strings.Builder
	for i, p := range paragraphs {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString("<p>")
		sb.WriteString(EscapeHTML(p))
		sb.WriteString("</p>")
	}
	return sb.String()
}
