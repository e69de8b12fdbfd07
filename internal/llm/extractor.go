// Package llm - extractor.go provides generic LLM-based structured extraction prompts.
package llm

import (
	"fmt"
	"strings"
)

// ExtractionSchema defines the structure for LLM-based content extraction.
type ExtractionSchema struct {
	Name        string        // Schema name (e.g., "PastedArticle")
	Description string        // Preamble describing the extraction task
	Fields      []SchemaField // Expected output fields
	Rules       []string      // Extra instructions appended after the schema
}

// SchemaField defines a single field in the extraction output.
type SchemaField struct {
	Name        string // JSON field name
	Type        string // Type hint: "\"string\"", "[\"string\"]"
	Description string // Description for the LLM
	Required    bool   // Whether this field is required
}

// BuildExtractionPrompt constructs the LLM prompt from schema and input text.
func BuildExtractionPrompt(schema ExtractionSchema, inputText string) string {
	var sb strings.Builder

	sb.WriteString(schema.Description)
	sb.WriteString("\n\nText:\n\"\"\"\n")
	sb.WriteString(inputText)
	sb.WriteString("\n\"\"\"\n\n")

	sb.WriteString("Return ONLY valid JSON (no markdown, no code blocks):\n{\n")
	for i, field := range schema.Fields {
		typeHint := field.Type
		if typeHint == "" {
			typeHint = "\"string\""
		}
		requiredHint := ""
		if field.Required {
			requiredHint = " (required)"
		}
		sb.WriteString(fmt.Sprintf("  \"%s\": %s%s", field.Name, typeHint, requiredHint))
		if field.Description != "" {
			sb.WriteString(fmt.Sprintf(" // %s", field.Description))
		}
		if i < len(schema.Fields)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}\n")

	if len(schema.Rules) > 0 {
		sb.WriteString("\nRules:\n")
		for _, rule := range schema.Rules {
			sb.WriteString("- " + rule + "\n")
		}
	}

	return sb.String()
}

// PastedArticleSchema returns the extraction schema for restructuring pasted text.
func PastedArticleSchema() ExtractionSchema {
	return ExtractionSchema{
		Name:        "PastedArticle",
		Description: "Analyze this pasted text and extract its structure.",
		Fields: []SchemaField{
			{
				Name:        "title",
				Type:        "\"string\"",
				Description: "the main title or topic (create a concise one if not obvious, max 100 chars)",
				Required:    true,
			},
			{
				Name:        "author",
				Type:        "\"string\" | null",
				Description: "author name if mentioned, otherwise null",
			},
			{
				Name:        "paragraphs",
				Type:        "[\"string\"]",
				Description: "array of logical paragraphs - split by topic/idea, not just newlines",
				Required:    true,
			},
		},
		Rules: []string{
			"Keep all original text, don't summarize or rewrite",
			"Split long blocks into logical paragraphs (aim for 2-5 sentences each)",
			"If text has a clear heading/title at start, use it. Otherwise, generate one from the main topic.",
			"Clean up formatting issues (extra spaces, broken lines from copy-paste)",
			"Preserve the reading order",
		},
	}
}
