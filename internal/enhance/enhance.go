// Package enhance selects one verbatim key sentence per paragraph using the
// generation service, in ordered batches.
package enhance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/premium-reader/internal/llm"
	"github.com/jonathan/premium-reader/internal/logging"
	"github.com/jonathan/premium-reader/internal/prompts"
	"github.com/jonathan/premium-reader/internal/types"
)

const (
	// BatchSize caps in-flight model calls per stream.
	BatchSize = 3
	// MinParagraphChars is the length below which the model is not consulted.
	MinParagraphChars = 50
	// BatchFailedMessage is reported in error events.
	BatchFailedMessage = "Enhancement failed"
)

// ErrEmptyInput is returned when no paragraphs are supplied.
var ErrEmptyInput = errors.New("paragraphs array cannot be empty")

// Enhancer produces InsightResults for paragraphs.
type Enhancer struct {
	client llm.Client
	tier   llm.ModelTier
	logger *slog.Logger
	prompt func(paragraph string) (string, error)
}

// New creates an Enhancer. A nil client yields null insights for every paragraph.
func New(client llm.Client, logger *slog.Logger) *Enhancer {
	return &Enhancer{
		client: client,
		tier:   llm.TierLite,
		logger: logging.OrDefault(logger),
		prompt: renderPrompt,
	}
}

func renderPrompt(paragraph string) (string, error) {
	return prompts.Render(prompts.KeyEnhanceParagraph, map[string]string{"Paragraph": paragraph})
}

type insightResponse struct {
	Insight any `json:"insight"`
}

// Paragraph enhances a single paragraph. Model failures, malformed responses
// and panics all degrade to a null insight. The only error returned is a
// missing prompt template, which affects every paragraph alike.
func (e *Enhancer) Paragraph(ctx context.Context, index int, paragraph string) (result types.InsightResult, err error) {
	if utf8.RuneCountInString(paragraph) < MinParagraphChars || e.client == nil {
		return types.NullInsight(index), nil
	}

	prompt, err := e.prompt(paragraph)
	if err != nil {
		return types.NullInsight(index), fmt.Errorf("failed to render enhancement prompt: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("enhancement panicked", "index", index, "panic", r)
			result, err = types.NullInsight(index), nil
		}
	}()

	text, err := e.client.GenerateContent(ctx, prompt, e.tier)
	if err != nil {
		e.logger.Warn("enhancement request failed", "index", index, "err", err)
		return types.NullInsight(index), nil
	}

	var resp insightResponse
	if err := llm.DecodeLenient(llm.CleanJSONBlock(text), &resp); err != nil {
		e.logger.Warn("unparseable enhancement response", "index", index, "err", err)
		return types.NullInsight(index), nil
	}

	insight, ok := resp.Insight.(string)
	if !ok || strings.TrimSpace(insight) == "" {
		return types.NullInsight(index), nil
	}
	return Align(index, paragraph, insight), nil
}

// Batch enhances paragraphs concurrently and returns results sorted by index.
// offset is the index of paragraphs[0] within the article.
func (e *Enhancer) Batch(ctx context.Context, offset int, paragraphs []string) ([]types.InsightResult, error) {
	results := make([]types.InsightResult, len(paragraphs))
	g, gCtx := errgroup.WithContext(ctx)

	for i, paragraph := range paragraphs {
		g.Go(func() error {
			result, err := e.Paragraph(gCtx, offset+i, paragraph)
			results[i] = result
			return err
		})
	}

	err := g.Wait()
	sort.Slice(results, func(a, b int) bool { return results[a].Index < results[b].Index })
	return results, err
}

// Stream enhances paragraphs in batches of BatchSize and emits results in
// index order. A failed batch emits null insights for its paragraphs followed
// by an error event, and processing continues. EventDone is always the final
// event unless ctx is cancelled, in which case the channel is closed early.
func (e *Enhancer) Stream(ctx context.Context, paragraphs []string) (<-chan Event, error) {
	if len(paragraphs) == 0 {
		return nil, ErrEmptyInput
	}

	events := make(chan Event, BatchSize)
	go func() {
		defer close(events)

		send := func(ev Event) bool {
			select {
			case events <- ev:
				return true
			case <-ctx.Done():
				return false
			}
		}

		for start := 0; start < len(paragraphs); start += BatchSize {
			if ctx.Err() != nil {
				return
			}
			end := min(start+BatchSize, len(paragraphs))

			results, err := e.Batch(ctx, start, paragraphs[start:end])
			if ctx.Err() != nil {
				return
			}
			for _, result := range results {
				if !send(Event{Kind: EventInsight, Insight: result}) {
					return
				}
			}
			if err != nil {
				e.logger.Error("enhancement batch failed", "start", start, "size", end-start, "err", err)
				if !send(Event{Kind: EventError, Err: BatchFailedMessage}) {
					return
				}
			}
		}

		e.logger.Info("enhancement stream complete", "paragraphs", len(paragraphs))
		send(Event{Kind: EventDone})
	}()

	return events, nil
}

// Insights filters a stream down to its insight results, for consumers that
// only merge per-paragraph outcomes. The returned channel closes when events
// closes or ctx is cancelled.
func Insights(ctx context.Context, events <-chan Event) <-chan types.InsightResult {
	out := make(chan types.InsightResult)
	go func() {
		defer close(out)
		for ev := range events {
			if ev.Kind != EventInsight {
				continue
			}
			select {
			case out <- ev.Insight:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
