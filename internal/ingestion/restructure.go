package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/premium-reader/internal/llm"
	"github.com/jonathan/premium-reader/internal/schemas"
	"github.com/jonathan/premium-reader/internal/segment"
	"github.com/jonathan/premium-reader/internal/types"
)

// Restructuring limits.
const (
	RestructureMinChars = 500
	RestructureMaxChars = 15000
)

// Restructured is the model's reading of pasted text.
type Restructured struct {
	Title      string
	Author     *string
	Paragraphs []string
}

type restructureResponse struct {
	Title      string  `json:"title"`
	Author     *string `json:"author"`
	Paragraphs []any   `json:"paragraphs"`
}

// Restructure asks the model to split pasted text into a title, author and
// logical paragraphs. Only the first RestructureMaxChars characters are sent.
func Restructure(ctx context.Context, client llm.Client, content string) (*Restructured, error) {
	prompt := llm.BuildExtractionPrompt(llm.PastedArticleSchema(), Truncate(content, RestructureMaxChars))

	raw, err := client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		return nil, fmt.Errorf("restructure request failed: %w", err)
	}

	doc, err := llm.JSONText(raw)
	if err != nil {
		return nil, err
	}
	if err := schemas.ValidateJSONString(schemas.PastedArticleSchema, doc); err != nil {
		return nil, err
	}

	var resp restructureResponse
	if err := json.Unmarshal([]byte(doc), &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal restructure response: %w", err)
	}

	result := &Restructured{Title: strings.TrimSpace(resp.Title)}
	if resp.Author != nil {
		result.Author = types.StringPtr(strings.TrimSpace(*resp.Author))
	}
	for _, item := range resp.Paragraphs {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			result.Paragraphs = append(result.Paragraphs, s)
		}
	}
	if len(result.Paragraphs) == 0 {
		return nil, fmt.Errorf("restructure response has no paragraphs")
	}

	return result, nil
}

// apply replaces the heuristic title, author and paragraphs. Word count and
// read time stay with the original text.
func (r *Restructured) apply(article *types.ExtractedArticle) {
	if r.Title != "" {
		article.Title = r.Title
	}
	article.Author = r.Author
	article.Paragraphs = r.Paragraphs
	article.Content = segment.WrapParagraphs(r.Paragraphs)
}
