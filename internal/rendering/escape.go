package rendering

import "strings"

// EscapeMarkdown escapes characters that would start Markdown formatting in inline text.
// Special characters: \ ` * _ [ ] # < >
func EscapeMarkdown(text string) string {
	if text == "" {
		return ""
	}

	var result strings.Builder
	result.Grow(len(text) + len(text)/4)

	for _, r := range text {
		switch r {
		case '\\', '`', '*', '_', '[', ']', '#', '<', '>':
			result.WriteRune('\\')
		}
		result.WriteRune(r)
	}

	return result.String()
}
