// Package observability provides formatted output utilities for the reader CLI.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/premium-reader/internal/reader"
	"github.com/jonathan/premium-reader/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for the reader CLI
type Printer struct {
	out io.Writer
	// MaxItems caps list output; zero means maxItemsToShow, negative means no cap.
	MaxItems int
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

func (p *Printer) limit(n int) int {
	switch {
	case p.MaxItems < 0:
		return n
	case p.MaxItems == 0:
		return min(n, maxItemsToShow)
	default:
		return min(n, p.MaxItems)
	}
}

// truncate shortens s to at most width runes, ending in "...".
func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-3]) + "..."
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(title))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", pad(truncate(line, boxWidth-4)))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// pad right-fills s with spaces to the box's inner width, counting runes.
func pad(s string) string {
	n := len([]rune(s))
	if n >= boxWidth-4 {
		return s
	}
	return s + strings.Repeat(" ", boxWidth-4-n)
}

// PrintArticle outputs the article's metadata and a preview of its paragraphs.
func (p *Printer) PrintArticle(article *types.ExtractedArticle) {
	if article == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Title:    %s\n", article.Title)
	if article.Author != nil {
		fmt.Fprintf(&sb, "Author:   %s\n", *article.Author)
	}
	if article.SiteName != nil {
		fmt.Fprintf(&sb, "Site:     %s\n", *article.SiteName)
	}
	if article.PublishedDate != nil {
		fmt.Fprintf(&sb, "Date:     %s\n", *article.PublishedDate)
	}
	fmt.Fprintf(&sb, "Words:    %d (%d min read)\n", article.WordCount, article.EstimatedReadTime)
	fmt.Fprintf(&sb, "Paragraphs: %d", len(article.Paragraphs))

	if len(article.Paragraphs) > 0 {
		sb.WriteString("\n\n")
		count := p.limit(len(article.Paragraphs))
		for i := 0; i < count; i++ {
			fmt.Fprintf(&sb, "¶%d %s\n", i, article.Paragraphs[i])
		}
		if len(article.Paragraphs) > count {
			fmt.Fprintf(&sb, "... and %d more paragraphs\n", len(article.Paragraphs)-count)
		}
	}

	p.printBox("ARTICLE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintStructure outputs the article outline, subsections indented.
func (p *Printer) PrintStructure(structure *types.ArticleStructure) {
	if structure == nil {
		return
	}

	var sb strings.Builder
	if structure.GeneratedTitle != nil {
		fmt.Fprintf(&sb, "Title: %s\n", *structure.GeneratedTitle)
	}
	if structure.TLDR != nil {
		fmt.Fprintf(&sb, "TL;DR: %s\n", *structure.TLDR)
	}
	if sb.Len() > 0 {
		sb.WriteString("\n")
	}

	for _, section := range structure.Sections {
		indent := ""
		if section.Level == types.LevelSub {
			indent = "  "
		}
		fmt.Fprintf(&sb, "%s• %s [¶%d-%d]\n", indent, section.Title,
			section.StartParagraphIndex, section.EndParagraphIndex)
		if section.Summary != "" {
			fmt.Fprintf(&sb, "%s  %s\n", indent, section.Summary)
		}
	}

	p.printBox("OUTLINE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintInsights outputs the highlighted phrase of each paragraph in the session.
func (p *Printer) PrintInsights(session *reader.Session) {
	if session == nil {
		return
	}

	paragraphs := session.Paragraphs()
	var sb strings.Builder
	fmt.Fprintf(&sb, "Enhanced %.0f%% of %d paragraphs\n\n", session.Progress(), len(paragraphs))

	shown, count := 0, p.limit(len(paragraphs))
	for _, ps := range paragraphs {
		if ps.InsightText == nil {
			continue
		}
		if shown == count {
			break
		}
		fmt.Fprintf(&sb, "¶%d ★ %s\n", ps.Index, *ps.InsightText)
		shown++
	}
	if shown == 0 {
		sb.WriteString("No insights")
	}

	p.printBox("INSIGHTS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintFailure outputs a fetch or parse failure with its suggestion.
func (p *Printer) PrintFailure(failure *types.Failure) {
	if failure == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "⚠ %s\n", failure.Code)
	sb.WriteString(failure.Message)
	if failure.Suggestion != "" {
		fmt.Fprintf(&sb, "\n\n%s", failure.Suggestion)
	}
	if failure.DetectedURL != "" {
		fmt.Fprintf(&sb, "\nDetected URL: %s", failure.DetectedURL)
	}

	p.printBox("FAILED", sb.String())
}
