// Package types provides type definitions for structured data used throughout the premium-reader system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// WordsPerMinute is the reading speed used for read-time estimates.
const WordsPerMinute = 200

// InputMethod records how an article entered the system.
type InputMethod string

const (
	// InputMethodURL marks articles fetched from a URL
	InputMethodURL InputMethod = "url"
	// InputMethodPaste marks articles parsed from pasted content
	InputMethodPaste InputMethod = "paste"
)

// ExtractedArticle is a cleaned, paragraph-structured article.
// Paragraphs are whitespace-collapsed plain text, in reading order.
type ExtractedArticle struct {
	Title             string   `json:"title"`
	Author            *string  `json:"author"`
	SiteName          *string  `json:"siteName"`
	PublishedDate     *string  `json:"publishedDate"` // ISO-8601
	Language          string   `json:"language,omitempty"`
	Content           string   `json:"content"`     // sanitized HTML
	TextContent       string   `json:"textContent"` // plain text
	Paragraphs        []string `json:"paragraphs"`
	WordCount         int      `json:"wordCount"`
	EstimatedReadTime int      `json:"estimatedReadTime"` // minutes
}

// ArticleMetadata is the article shape returned over the HTTP surface.
type ArticleMetadata struct {
	Title             string   `json:"title"`
	Author            *string  `json:"author"`
	SiteName          *string  `json:"siteName"`
	PublishedDate     *string  `json:"publishedDate"`
	Language          string   `json:"language,omitempty"`
	Content           string   `json:"content"`
	Paragraphs        []string `json:"paragraphs"`
	WordCount         int      `json:"wordCount"`
	EstimatedReadTime int      `json:"estimatedReadTime"`
}

// Metadata returns the response view of the article.
func (a *ExtractedArticle) Metadata() ArticleMetadata {
	return ArticleMetadata{
		Title:             a.Title,
		Author:            a.Author,
		SiteName:          a.SiteName,
		PublishedDate:     a.PublishedDate,
		Language:          a.Language,
		Content:           a.Content,
		Paragraphs:        a.Paragraphs,
		WordCount:         a.WordCount,
		EstimatedReadTime: a.EstimatedReadTime,
	}
}

// FetchResult is the success branch of a URL fetch.
type FetchResult struct {
	Article      *ExtractedArticle
	URL          string  // final URL after redirects
	CanonicalURL *string // from link[rel=canonical]
}

// ParseResult is the success branch of a paste parse.
type ParseResult struct {
	Article *ExtractedArticle
}

// EstimateReadTime returns max(1, ceil(words/200)) minutes.
func EstimateReadTime(wordCount int) int {
	minutes := (wordCount + WordsPerMinute - 1) / WordsPerMinute
	return max(1, minutes)
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
