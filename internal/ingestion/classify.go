package ingestion

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/premium-reader/internal/types"
)

// Paste classification limits.
const (
	MinPasteChars = 50
	MaxURLChars   = 500
)

var bareURLPattern = regexp.MustCompile(`^https?://\S+$`)

// Markers of source code rather than prose.
var codePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\{[\s\S]*\}$`),
	regexp.MustCompile(`function\s*\(`),
	regexp.MustCompile(`import\s+.*from`),
	regexp.MustCompile(`class\s+\w+\s*\{`),
	regexp.MustCompile(`^<\?php`),
	regexp.MustCompile(`^#!\s*/usr/bin`),
}

// Classify rejects input that should not be parsed as an article and returns the
// trimmed content otherwise. Blank input, bare URLs and code are recognised
// before the length guard so short code still reports IS_CODE.
func Classify(content string) (string, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "", types.NewFailure(types.CodeMissingContent, "Content is required", "")
	}

	if utf8.RuneCountInString(trimmed) < MaxURLChars && bareURLPattern.MatchString(trimmed) {
		return "", &types.Failure{
			Code:        types.CodeIsURL,
			Message:     "This looks like a URL",
			Suggestion:  "Use the URL fetch mode instead, or paste the article content.",
			DetectedURL: trimmed,
		}
	}

	if LooksLikeCode(trimmed) {
		return "", types.NewFailure(types.CodeIsCode,
			"This looks like code, not an article",
			"Paste article text, not source code.")
	}

	if utf8.RuneCountInString(trimmed) < MinPasteChars {
		return "", types.NewFailure(types.CodeTooShort,
			"Content is too short",
			"Please paste at least a few sentences to analyze.")
	}

	return trimmed, nil
}

// LooksLikeCode reports whether any code marker matches.
func LooksLikeCode(s string) bool {
	for _, pattern := range codePatterns {
		if pattern.MatchString(s) {
			return true
		}
	}
	return false
}
