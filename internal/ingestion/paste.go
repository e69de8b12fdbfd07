package ingestion

import (
	"context"
	"log/slog"
	"regexp"
	"unicode/utf8"

	"github.com/jonathan/premium-reader/internal/extract"
	"github.com/jonathan/premium-reader/internal/llm"
	"github.com/jonathan/premium-reader/internal/logging"
	"github.com/jonathan/premium-reader/internal/segment"
	"github.com/jonathan/premium-reader/internal/types"
)

// MinPastedHTMLParagraphChars is the paragraph threshold for pasted HTML,
// lower than for fetched pages since fragments are often terse.
const MinPastedHTMLParagraphChars = 10

var htmlTagPattern = regexp.MustCompile(`(?i)<[a-z][\s\S]*>`)

// PasteParser turns pasted text or HTML into an article.
type PasteParser struct {
	client        llm.Client
	aiStructuring bool
	logger        *slog.Logger
}

// NewPasteParser creates a PasteParser. AI restructuring runs only when
// aiStructuring is set and client is non-nil.
func NewPasteParser(client llm.Client, aiStructuring bool, logger *slog.Logger) *PasteParser {
	return &PasteParser{
		client:        client,
		aiStructuring: aiStructuring,
		logger:        logging.OrDefault(logger),
	}
}

// Parse classifies and parses pasted content.
func (p *PasteParser) Parse(ctx context.Context, content string) (*types.ParseResult, error) {
	trimmed, err := Classify(NormalizeNewlines(content))
	if err != nil {
		return nil, err
	}

	article, err := ParseText(trimmed)
	if err != nil {
		return nil, err
	}

	if p.aiStructuring && p.client != nil && utf8.RuneCountInString(trimmed) > RestructureMinChars {
		if restructured, rerr := Restructure(ctx, p.client, trimmed); rerr != nil {
			p.logger.Warn("AI paste restructuring failed, keeping heuristic result", "err", rerr)
		} else {
			restructured.apply(article)
		}
	}

	p.logger.Info("parsed pasted content",
		"title", article.Title,
		"words", article.WordCount,
		"paragraphs", len(article.Paragraphs))

	return &types.ParseResult{Article: article}, nil
}

// ParseText deterministically parses already-classified content.
func ParseText(trimmed string) (*types.ExtractedArticle, error) {
	var (
		paragraphs []string
		text       string
	)

	if htmlTagPattern.MatchString(trimmed) {
		paragraphs, text = parseHTML(trimmed)
	} else {
		text = trimmed
		paragraphs = segment.Paragraphs(trimmed)
	}

	if len(paragraphs) == 0 {
		whole := segment.Collapse(text)
		if whole == "" {
			return nil, types.NewFailure(types.CodeParseFailed, "Could not parse the content", "")
		}
		paragraphs = []string{whole}
	}

	title, paragraphs := SplitTitle(paragraphs)
	wordCount := segment.CountWords(text)

	return &types.ExtractedArticle{
		Title:             title,
		Language:          extract.DetectLanguage(text),
		Content:           segment.WrapParagraphs(paragraphs),
		TextContent:       text,
		Paragraphs:        paragraphs,
		WordCount:         wordCount,
		EstimatedReadTime: types.EstimateReadTime(wordCount),
	}, nil
}

func parseHTML(html string) ([]string, string) {
	readable, err := extract.Parse(html, nil, extract.PasteCharThreshold)
	if err == nil {
		paragraphs, perr := extract.Paragraphs(readable.Content, MinPastedHTMLParagraphChars)
		if perr == nil {
			return paragraphs, readable.Text
		}
	}

	text, err := extract.BodyText(html)
	if err != nil {
		text = html
	}
	return segment.Paragraphs(text), text
}
