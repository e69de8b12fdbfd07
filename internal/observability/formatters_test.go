package observability

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/premium-reader/internal/reader"
	"github.com/jonathan/premium-reader/internal/types"
)

func TestPrintArticle(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	paragraphs := make([]string, 7)
	for i := range paragraphs {
		paragraphs[i] = fmt.Sprintf("Paragraph %d body", i)
	}
	article := &types.ExtractedArticle{
		Title:             "Go Concurrency",
		Author:            types.StringPtr("Ada"),
		WordCount:         420,
		EstimatedReadTime: 3,
		Paragraphs:        paragraphs,
	}

	p.PrintArticle(article)
	output := buf.String()

	assert.Contains(t, output, "ARTICLE")
	assert.Contains(t, output, "Go Concurrency")
	assert.Contains(t, output, "Ada")
	assert.Contains(t, output, "420 (3 min read)")
	assert.Contains(t, output, "Paragraph 4 body")
	assert.NotContains(t, output, "Paragraph 5 body")
	assert.Contains(t, output, "... and 2 more paragraphs")
	assert.NotContains(t, output, "Site:")
}

func TestPrintArticle_NoCap(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)
	p.MaxItems = -1

	p.PrintArticle(&types.ExtractedArticle{Paragraphs: []string{"a", "b", "c", "d", "e", "f"}})

	assert.Contains(t, buf.String(), "¶5 f")
	assert.NotContains(t, buf.String(), "more paragraphs")
}

func TestPrintArticle_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintArticle(nil)
	assert.Empty(t, buf.String())
}

func TestPrintStructure(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintStructure(&types.ArticleStructure{
		TLDR: types.StringPtr("Channels beat locks."),
		Sections: []types.ArticleSection{
			{ID: "s1", Title: "Intro", Summary: "Why it matters", StartParagraphIndex: 0, EndParagraphIndex: 2, Level: types.LevelMain},
			{ID: "s2", Title: "Detail", StartParagraphIndex: 1, EndParagraphIndex: 2, Level: types.LevelSub},
		},
	})
	output := buf.String()

	assert.Contains(t, output, "OUTLINE")
	assert.Contains(t, output, "TL;DR: Channels beat locks.")
	assert.Contains(t, output, "• Intro [¶0-2]")
	assert.Contains(t, output, "  • Detail [¶1-2]")
	assert.Contains(t, output, "Why it matters")
}

func TestPrintInsights(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	session := reader.NewSession([]string{"<p><strong>Key point</strong> here.</p>", "short"})
	p.PrintInsights(session)
	output := buf.String()

	assert.Contains(t, output, "INSIGHTS")
	assert.Contains(t, output, "of 2 paragraphs")
	assert.Contains(t, output, "¶0 ★ Key point")
	assert.NotContains(t, output, "¶1")
}

func TestPrintInsights_None(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintInsights(reader.NewSession([]string{"tiny"}))
	assert.Contains(t, buf.String(), "No insights")
}

func TestPrintFailure(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	failure := types.NewFailure(types.CodeIsURL, "This looks like a URL", "Use fetch instead")
	failure.DetectedURL = "https://example.com"
	p.PrintFailure(failure)
	output := buf.String()

	assert.Contains(t, output, "IS_URL")
	assert.Contains(t, output, "Use fetch instead")
	assert.Contains(t, output, "Detected URL: https://example.com")
}

func TestPrintBox_TruncatesLongLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.printBox("TITLE", strings.Repeat("é", 100))

	for _, line := range strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n") {
		assert.Equal(t, boxWidth, len([]rune(line)), line)
	}
	assert.Contains(t, buf.String(), "...")
}
