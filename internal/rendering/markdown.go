package rendering

import (
	"fmt"
	"slices"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/jonathan/premium-reader/internal/types"
)

// Markdown renders a saved article: a title heading, a byline, the source link,
// the body converted from HTML, and a highlights section when insights exist.
// EnhancedContent is preferred over Content when set.
func Markdown(article *types.SavedArticle) (string, error) {
	if article == nil {
		return "", &RenderError{Message: "article is nil"}
	}

	source := article.Content
	if article.EnhancedContent != "" {
		source = article.EnhancedContent
	}
	body, err := htmltomarkdown.ConvertString(source)
	if err != nil {
		return "", &RenderError{Message: "converting HTML to markdown", Cause: err}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", EscapeMarkdown(article.Title))

	if byline := bylineOf(article); byline != "" {
		fmt.Fprintf(&b, "*%s*\n\n", byline)
	}
	if article.URL != "" {
		fmt.Fprintf(&b, "Source: <%s>\n\n", article.URL)
	}

	b.WriteString(strings.TrimSpace(body))
	b.WriteString("\n")

	if len(article.Insights) > 0 {
		insights := slices.Clone(article.Insights)
		slices.SortStableFunc(insights, func(a, b types.Insight) int {
			return a.ParagraphIndex - b.ParagraphIndex
		})

		b.WriteString("\n## Highlights\n\n")
		for _, insight := range insights {
			text := strings.TrimSpace(insight.Text)
			if text == "" {
				continue
			}
			fmt.Fprintf(&b, "- %s\n", EscapeMarkdown(text))
		}
	}

	return b.String(), nil
}

func bylineOf(article *types.SavedArticle) string {
	var parts []string
	if article.Author != "" {
		parts = append(parts, "By "+EscapeMarkdown(article.Author))
	}
	if article.SiteName != "" {
		parts = append(parts, EscapeMarkdown(article.SiteName))
	}
	if article.PublishedAt != "" {
		parts = append(parts, EscapeMarkdown(article.PublishedAt))
	}
	return strings.Join(parts, " · ")
}
