package extract

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/premium-reader/internal/segment"
	"github.com/jonathan/premium-reader/internal/types"
)

// Thresholds for accepting a fetched page as an article.
const (
	MinContentChars      = 200
	MinPaywallParagraphs = 3
	DefaultTitle         = "Untitled Article"
)

// Result is a successfully extracted article plus page-level metadata.
type Result struct {
	Article      *types.ExtractedArticle
	CanonicalURL *string
}

// Article extracts a readable article from a fetched document.
// pageURL is the final URL the document was served from.
func Article(html string, pageURL *url.URL) (*Result, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &types.Failure{Code: types.CodeNotArticle, Message: "Could not parse the page", Cause: err}
	}

	paywalled := IsPaywalled(doc, html)

	readable, err := Parse(html, pageURL, FetchCharThreshold)
	if err != nil || utf8.RuneCountInString(readable.Content) < MinContentChars {
		return nil, notArticle(err)
	}

	paragraphs, err := Paragraphs(readable.Content, segment.MinParagraphChars)
	if err != nil {
		return nil, notArticle(err)
	}
	if len(paragraphs) == 0 {
		paragraphs = segment.Paragraphs(readable.Text)
	}
	if len(paragraphs) == 0 {
		return nil, notArticle(nil)
	}

	if paywalled && len(paragraphs) < MinPaywallParagraphs {
		return nil, types.NewFailure(types.CodePaywall,
			"This article appears to be behind a paywall",
			"Only partial content is available. Try pasting the full article text.")
	}

	title := readable.Title
	if title == "" {
		title = DefaultTitle
	}

	published := PublishedDate(doc)
	if published == "" && readable.PublishedTime != nil && !readable.PublishedTime.IsZero() {
		published = FormatISO(*readable.PublishedTime)
	}

	hostname := ""
	if pageURL != nil {
		hostname = pageURL.Hostname()
	}

	wordCount := segment.CountWords(readable.Text)
	article := &types.ExtractedArticle{
		Title:             title,
		Author:            types.StringPtr(CleanAuthor(readable.Byline)),
		SiteName:          types.StringPtr(SiteName(readable.SiteName, hostname)),
		PublishedDate:     types.StringPtr(published),
		Language:          DetectLanguage(readable.Text),
		Content:           readable.Content,
		TextContent:       readable.Text,
		Paragraphs:        paragraphs,
		WordCount:         wordCount,
		EstimatedReadTime: types.EstimateReadTime(wordCount),
	}

	return &Result{
		Article:      article,
		CanonicalURL: types.StringPtr(CanonicalURL(doc)),
	}, nil
}

func notArticle(cause error) *types.Failure {
	return &types.Failure{
		Code:       types.CodeNotArticle,
		Message:    "Could not extract article content from this page",
		Suggestion: "This might not be an article page. Try pasting the content directly.",
		Cause:      cause,
	}
}
