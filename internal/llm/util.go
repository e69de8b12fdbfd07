// Package llm - util.go provides shared utilities for LLM response processing.
package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrNoJSONObject is returned when a response contains no {...} span at all.
var ErrNoJSONObject = errors.New("no JSON object in response")

// jsonObjectPattern matches from the first '{' to the last '}'.
var jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)

// CleanJSONBlock removes markdown code block wrappers from JSON responses.
// LLMs often wrap JSON in ```json ... ``` blocks even when instructed not to.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)

	// Handle ```json ... ``` blocks
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		return strings.TrimSpace(text)
	}

	// Handle generic ``` ... ``` blocks
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		// Skip potential language identifier on first line
		if idx := strings.Index(text, "\n"); idx >= 0 {
			firstLine := text[:idx]
			if len(firstLine) < 20 && !strings.Contains(firstLine, " ") && !strings.Contains(firstLine, "{") {
				text = text[idx+1:]
			}
		}
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		return strings.TrimSpace(text)
	}

	return text
}

// ExtractJSONObject returns the greedy {...} span of text, if any.
func ExtractJSONObject(text string) (string, bool) {
	match := jsonObjectPattern.FindString(text)
	return match, match != ""
}

// JSONText returns the JSON document carried by a model response: the whole
// text when it is valid JSON, otherwise the greedy {...} span when that is.
func JSONText(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if json.Valid([]byte(trimmed)) {
		return trimmed, nil
	}

	span, ok := ExtractJSONObject(trimmed)
	if !ok {
		return "", ErrNoJSONObject
	}
	if !json.Valid([]byte(span)) {
		return "", fmt.Errorf("extracted span is not valid JSON")
	}
	return span, nil
}

// DecodeLenient unmarshals a model response in two stages: a strict parse of the
// whole text, then a re-parse of the extracted {...} span. Callers still validate
// and normalize the decoded value.
func DecodeLenient(text string, v any) error {
	doc, err := JSONText(text)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(doc), v); err != nil {
		return fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	return nil
}
