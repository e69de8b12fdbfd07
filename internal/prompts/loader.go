// Package prompts holds the model prompts of the reading pipeline.
// They live in reader.json, embedded at compile time, and use {{.Key}} placeholders.
package prompts

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"sync"
)

//go:embed reader.json
var readerJSON []byte

// Prompt keys in reader.json.
const (
	KeyEnhanceParagraph = "enhance_paragraph"
	KeyArticleStructure = "article_structure"
)

var placeholderPattern = regexp.MustCompile(`\{\{\.(\w+)\}\}`)

var load = sync.OnceValues(func() (map[string]string, error) {
	var prompts map[string]string
	if err := json.Unmarshal(readerJSON, &prompts); err != nil {
		return nil, fmt.Errorf("failed to parse reader prompts: %w", err)
	}
	return prompts, nil
})

// Get returns the raw template for key.
func Get(key string) (string, error) {
	prompts, err := load()
	if err != nil {
		return "", err
	}
	prompt, ok := prompts[key]
	if !ok {
		return "", fmt.Errorf("prompt key %q not found", key)
	}
	return prompt, nil
}

// Keys returns the available prompt keys, sorted.
func Keys() ([]string, error) {
	prompts, err := load()
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(prompts))
	for key := range prompts {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys, nil
}

// Placeholders returns the distinct placeholder names in template, in order of appearance.
func Placeholders(template string) []string {
	var names []string
	for _, m := range placeholderPattern.FindAllStringSubmatch(template, -1) {
		if !slices.Contains(names, m[1]) {
			names = append(names, m[1])
		}
	}
	return names
}

// Format replaces placeholders of the form {{.Key}} with values from data.
// Each placeholder is substituted in a single pass, so values that themselves
// contain "{{.X}}" are left untouched.
func Format(template string, data map[string]string) string {
	if len(data) == 0 {
		return template
	}
	pairs := make([]string, 0, len(data)*2)
	for key, value := range data {
		pairs = append(pairs, "{{."+key+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// Render formats the prompt for key. Every placeholder in the template must have a value.
func Render(key string, data map[string]string) (string, error) {
	template, err := Get(key)
	if err != nil {
		return "", err
	}
	var missing []string
	for _, name := range Placeholders(template) {
		if _, ok := data[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return "", fmt.Errorf("prompt %q: missing values for %s", key, strings.Join(missing, ", "))
	}
	return Format(template, data), nil
}
