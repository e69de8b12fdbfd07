package extract

import (
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
)

// ISOTimeLayout matches millisecond-precision UTC ISO-8601 timestamps.
const ISOTimeLayout = "2006-01-02T15:04:05.000Z07:00"

// MaxAuthorChars bounds the cleaned byline.
const MaxAuthorChars = 100

var paywallIndicators = []string{
	"paywall",
	"subscribe-wall",
	"subscriber-only",
	"premium-content",
	"registration-wall",
}

// Checked in order; the first parseable value wins.
var publishedDateSelectors = []string{
	`meta[property="article:published_time"]`,
	`meta[name="publication_date"]`,
	`meta[name="date"]`,
	`meta[property="og:published_time"]`,
	`time[datetime]`,
	`time[pubdate]`,
}

var bylinePrefix = regexp.MustCompile(`(?i)^(?:(?:written\s+)?by\b|author:)\s*`)

// IsPaywalled reports whether the body class or id, or a class attribute anywhere
// in the raw HTML, carries a paywall indicator.
func IsPaywalled(doc *goquery.Document, rawHTML string) bool {
	body := doc.Find("body").First()
	bodyClass := strings.ToLower(body.AttrOr("class", ""))
	bodyID := strings.ToLower(body.AttrOr("id", ""))
	lowered := strings.ToLower(rawHTML)

	for _, indicator := range paywallIndicators {
		if strings.Contains(bodyClass, indicator) ||
			strings.Contains(bodyID, indicator) ||
			strings.Contains(lowered, `class="`+indicator+`"`) {
			return true
		}
	}
	return false
}

// CanonicalURL returns the href of link[rel=canonical], or "".
func CanonicalURL(doc *goquery.Document) string {
	href, _ := doc.Find(`link[rel="canonical"]`).First().Attr("href")
	return strings.TrimSpace(href)
}

// PublishedDate returns the first parseable publication date, formatted as ISO-8601 UTC.
func PublishedDate(doc *goquery.Document) string {
	for _, selector := range publishedDateSelectors {
		el := doc.Find(selector).First()
		if el.Length() == 0 {
			continue
		}
		value := el.AttrOr("content", "")
		if value == "" {
			value = el.AttrOr("datetime", "")
		}
		if t, ok := parseDate(value); ok {
			return FormatISO(t)
		}
	}
	return ""
}

// FormatISO renders t in UTC with millisecond precision.
func FormatISO(t time.Time) string {
	return t.UTC().Format(ISOTimeLayout)
}

func parseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	t, err := dateparse.ParseIn(value, time.UTC)
	if err != nil || t.IsZero() {
		return time.Time{}, false
	}
	return t, true
}

// CleanAuthor strips a leading "by", "written by" or "author:" and truncates
// the byline to MaxAuthorChars characters.
func CleanAuthor(byline string) string {
	author := strings.TrimSpace(bylinePrefix.ReplaceAllString(strings.TrimSpace(byline), ""))
	runes := []rune(author)
	if len(runes) > MaxAuthorChars {
		author = string(runes[:MaxAuthorChars])
	}
	return author
}

// SiteName prefers the document's declared site name, then the hostname
// without a leading "www.".
func SiteName(declared, hostname string) string {
	if declared = strings.TrimSpace(declared); declared != "" {
		return declared
	}
	return strings.TrimPrefix(strings.ToLower(hostname), "www.")
}
