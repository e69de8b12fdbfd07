// Package structure builds a navigation outline for an article, from the
// generation service when possible and from a fixed split otherwise.
package structure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/premium-reader/internal/llm"
	"github.com/jonathan/premium-reader/internal/logging"
	"github.com/jonathan/premium-reader/internal/prompts"
	"github.com/jonathan/premium-reader/internal/schemas"
	"github.com/jonathan/premium-reader/internal/types"
)

const (
	// DefaultTitle is used when the caller supplies none.
	DefaultTitle = "Untitled Article"
	// PromptParagraphChars is how much of each paragraph the model sees.
	PromptParagraphChars = 200
)

// ErrEmptyInput is returned when no paragraphs are supplied.
var ErrEmptyInput = errors.New("paragraphs array cannot be empty")

// Generator produces ArticleStructures.
type Generator struct {
	client llm.Client
	tier   llm.ModelTier
	logger *slog.Logger
}

// New creates a Generator. A nil client always yields the fallback structure.
func New(client llm.Client, logger *slog.Logger) *Generator {
	return &Generator{
		client: client,
		tier:   llm.TierStandard,
		logger: logging.OrDefault(logger),
	}
}

// Generate returns an outline for paragraphs. Model failures of any kind
// produce the fallback; only empty input is an error.
func (g *Generator) Generate(ctx context.Context, paragraphs []string, title string) (*types.ArticleStructure, error) {
	if len(paragraphs) == 0 {
		return nil, ErrEmptyInput
	}
	if strings.TrimSpace(title) == "" {
		title = DefaultTitle
	}
	if g.client == nil {
		return Fallback(len(paragraphs), title), nil
	}

	structure, err := g.fromModel(ctx, paragraphs, title)
	if err != nil {
		g.logger.Warn("structure generation failed, using fallback", "paragraphs", len(paragraphs), "err", err)
		return Fallback(len(paragraphs), title), nil
	}
	g.logger.Info("generated structure", "paragraphs", len(paragraphs), "sections", len(structure.Sections))
	return structure, nil
}

func (g *Generator) fromModel(ctx context.Context, paragraphs []string, title string) (structure *types.ArticleStructure, err error) {
	defer func() {
		if r := recover(); r != nil {
			structure, err = nil, fmt.Errorf("structure generation panicked: %v", r)
		}
	}()

	prompt, err := prompts.Render(prompts.KeyArticleStructure, map[string]string{
		"Title":      title,
		"Paragraphs": FormatParagraphs(paragraphs),
	})
	if err != nil {
		return nil, err
	}

	text, err := g.client.GenerateContent(ctx, prompt, g.tier)
	if err != nil {
		return nil, fmt.Errorf("structure request failed: %w", err)
	}

	return Parse(llm.CleanJSONBlock(text), len(paragraphs))
}

// FormatParagraphs renders "[i] text" blocks separated by blank lines, with
// each paragraph cut to PromptParagraphChars characters plus an ellipsis.
func FormatParagraphs(paragraphs []string) string {
	blocks := make([]string, len(paragraphs))
	for i, p := range paragraphs {
		if utf8.RuneCountInString(p) > PromptParagraphChars {
			p = string([]rune(p)[:PromptParagraphChars]) + "..."
		}
		blocks[i] = fmt.Sprintf("[%d] %s", i, p)
	}
	return strings.Join(blocks, "\n\n")
}

type rawSection struct {
	ID                  any `json:"id"`
	Title               any `json:"title"`
	Summary             any `json:"summary"`
	StartParagraphIndex any `json:"startParagraphIndex"`
	EndParagraphIndex   any `json:"endParagraphIndex"`
	Level               any `json:"level"`
}

type rawStructure struct {
	Sections       []json.RawMessage `json:"sections"`
	GeneratedTitle any               `json:"generatedTitle"`
	TLDR           any               `json:"tldr"`
}

// Parse decodes a model response into a structure for count paragraphs.
// Only a missing or non-array sections field rejects the response. Items that
// are not objects are skipped, indices may be numbers or numeric strings and
// are clamped into [0, count-1], missing ids become section-<i> and any level
// other than 2 becomes 1.
func Parse(text string, count int) (*types.ArticleStructure, error) {
	doc, err := llm.JSONText(text)
	if err != nil {
		return nil, err
	}
	if err := schemas.ValidateJSONString(schemas.ArticleStructureSchema, doc); err != nil {
		return nil, err
	}

	var raw rawStructure
	if err := json.Unmarshal([]byte(doc), &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal structure: %w", err)
	}

	structure := &types.ArticleStructure{
		Sections:       make([]types.ArticleSection, 0, len(raw.Sections)),
		GeneratedTitle: nonEmpty(asString(raw.GeneratedTitle)),
		TLDR:           nonEmpty(asString(raw.TLDR)),
	}
	for _, item := range raw.Sections {
		var s rawSection
		if !isObject(item) || json.Unmarshal(item, &s) != nil {
			continue
		}
		i := len(structure.Sections)
		start := clamp(asIndex(s.StartParagraphIndex, 0), count)
		id := asString(s.ID)
		if id == "" {
			id = fmt.Sprintf("section-%d", i)
		}
		level := types.LevelMain
		if asIndex(s.Level, int(types.LevelMain)) == int(types.LevelSub) {
			level = types.LevelSub
		}
		structure.Sections = append(structure.Sections, types.ArticleSection{
			ID:                  id,
			Title:               asString(s.Title),
			Summary:             asString(s.Summary),
			StartParagraphIndex: start,
			EndParagraphIndex:   clamp(asIndex(s.EndParagraphIndex, start), count),
			Level:               level,
		})
	}
	if len(structure.Sections) == 0 {
		return nil, errors.New("structure has no sections")
	}
	return structure, nil
}

func isObject(raw json.RawMessage) bool {
	return strings.HasPrefix(strings.TrimSpace(string(raw)), "{")
}

func clamp(i, count int) int {
	return max(0, min(i, count-1))
}

// asIndex converts a JSON number or numeric string to an int, truncating
// fractions.
func asIndex(v any, def int) int {
	var n float64
	switch x := v.(type) {
	case float64:
		n = x
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return def
		}
		n = f
	default:
		return def
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return def
	}
	return int(math.Trunc(max(min(n, math.MaxInt32), math.MinInt32)))
}

func asString(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	}
	return ""
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
