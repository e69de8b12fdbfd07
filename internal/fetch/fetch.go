// Package fetch retrieves article pages over HTTP and, optionally, a headless browser.
// Failures are reported as *types.Failure with a retrieval error code.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/jonathan/premium-reader/internal/types"
)

// DefaultTimeout bounds a single page fetch, including redirects and body read.
const DefaultTimeout = 15 * time.Second

// DefaultUserAgent identifies as a desktop browser; many publishers reject bot agents.
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// MaxBodyBytes caps how much of a response body is read.
const MaxBodyBytes = 10 << 20

const pasteSuggestion = "Try copying the article text and using paste mode instead"

var schemePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://`)

// Result holds the raw document from a successful fetch.
type Result struct {
	RequestedURL string
	URL          string // final URL after redirects
	HTML         string
	ContentType  string
	StatusCode   int
}

// Options configures the fetch behavior.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	Headers   map[string]string
	Client    *http.Client
}

// DefaultOptions returns the options used for article fetching.
func DefaultOptions() *Options {
	return &Options{
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
		Headers: map[string]string{
			"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
			"Accept-Language": "en-US,en;q=0.9",
			"Cache-Control":   "no-cache",
		},
	}
}

// NormalizeURL trims the input, prepends https:// when no scheme is present and
// accepts only absolute http(s) URLs.
func NormalizeURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, types.NewFailure(types.CodeInvalidURL, "URL is required", "")
	}

	if !schemePattern.MatchString(trimmed) {
		trimmed = "https://" + trimmed
	}

	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Host == "" {
		return nil, &types.Failure{
			Code:       types.CodeInvalidURL,
			Message:    "Invalid URL format",
			Suggestion: "Make sure you're pasting a complete URL starting with http:// or https://",
			Cause:      err,
		}
	}

	switch strings.ToLower(parsed.Scheme) {
	case "http", "https":
	default:
		return nil, types.NewFailure(types.CodeInvalidURL, "Invalid URL protocol. Use http or https.", "")
	}

	return parsed, nil
}

// URL retrieves the HTML document at rawURL.
// The timeout is applied to the request context so cancellation reaches the transport.
func URL(ctx context.Context, rawURL string, opts *Options) (*Result, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	client := opts.Client
	if client == nil {
		client = http.DefaultClient
	}

	parsed, err := NormalizeURL(rawURL)
	if err != nil {
		return nil, err
	}
	target := parsed.String()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &types.Failure{Code: types.CodeInvalidURL, Message: "Invalid URL format", Cause: err}
	}
	req.Header.Set("User-Agent", userAgent)
	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, transportFailure(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if failure := statusFailure(resp.StatusCode); failure != nil {
		return nil, failure
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodyBytes))
	if err != nil {
		return nil, transportFailure(err)
	}

	finalURL := target
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return &Result{
		RequestedURL: target,
		URL:          finalURL,
		HTML:         string(body),
		ContentType:  resp.Header.Get("Content-Type"),
		StatusCode:   resp.StatusCode,
	}, nil
}

func statusFailure(status int) *types.Failure {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return types.NewFailure(types.CodeBlocked, "This site is blocking access", pasteSuggestion)
	case status == http.StatusNotFound:
		return types.NewFailure(types.CodeFetchFailed, "Article not found", "")
	default:
		return types.NewFailure(types.CodeFetchFailed, fmt.Sprintf("Failed to fetch: HTTP %d", status), "")
	}
}

func transportFailure(err error) *types.Failure {
	if IsTimeout(err) {
		return &types.Failure{
			Code:       types.CodeTimeout,
			Message:    "Request timed out",
			Suggestion: "The site is taking too long. Try pasting the content instead.",
			Cause:      err,
		}
	}
	return &types.Failure{
		Code:       types.CodeFetchFailed,
		Message:    "Failed to fetch the URL",
		Suggestion: "Check if the URL is correct and accessible",
		Cause:      err,
	}
}

// IsTimeout reports whether err came from a deadline rather than a refused or broken connection.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
