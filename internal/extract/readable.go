// Package extract turns raw HTML documents into paragraph-structured articles.
package extract

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"

	"github.com/jonathan/premium-reader/internal/segment"
)

// Character thresholds for readability candidate text.
const (
	FetchCharThreshold = 100
	PasteCharThreshold = 50
)

// ErrNoContent is returned when readability finds no article body.
var ErrNoContent = errors.New("no readable content")

// Readable is the output of the readability pass over a document.
type Readable struct {
	Title         string
	Byline        string
	SiteName      string
	Content       string // cleaned HTML fragment
	Text          string // plain text of Content
	PublishedTime *time.Time
}

// Parse runs readability over html with the given candidate threshold.
// pageURL may be nil for pasted fragments.
func Parse(html string, pageURL *url.URL, charThreshold int) (*Readable, error) {
	if pageURL == nil {
		pageURL = &url.URL{Scheme: "https", Host: "localhost"}
	}

	parser := readability.NewParser()
	parser.CharThresholds = charThreshold

	article, err := parser.Parse(strings.NewReader(html), pageURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoContent, err)
	}
	if strings.TrimSpace(article.Content) == "" {
		return nil, ErrNoContent
	}

	text, err := FragmentText(article.Content)
	if err != nil {
		return nil, err
	}

	return &Readable{
		Title:         strings.TrimSpace(article.Title),
		Byline:        strings.TrimSpace(article.Byline),
		SiteName:      strings.TrimSpace(article.SiteName),
		Content:       article.Content,
		Text:          text,
		PublishedTime: article.PublishedTime,
	}, nil
}

// FragmentText returns the trimmed text content of an HTML fragment.
func FragmentText(fragment string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}
	return strings.TrimSpace(doc.Text()), nil
}

// Paragraphs collects the text of every <p> in fragment whose trimmed text is
// longer than minChars characters. Inner whitespace is collapsed.
func Paragraphs(fragment string, minChars int) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var paragraphs []string
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		text := segment.Collapse(s.Text())
		if len([]rune(text)) > minChars {
			paragraphs = append(paragraphs, text)
		}
	})
	return paragraphs, nil
}

// BodyText returns the text of the document body with script and style elements removed.
// Line breaks are preserved so the text can still be segmented.
func BodyText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}
	doc.Find("script, style, noscript").Remove()

	body := doc.Find("body")
	if body.Length() == 0 {
		body = doc.Selection
	}
	return strings.TrimSpace(body.Text()), nil
}
