// Package ingestion turns user input, either a URL or pasted content, into an
// ExtractedArticle ready for reading.
package ingestion

import (
	"context"
	"errors"
	"log/slog"
	"net/url"

	"github.com/jonathan/premium-reader/internal/extract"
	"github.com/jonathan/premium-reader/internal/fetch"
	"github.com/jonathan/premium-reader/internal/logging"
	"github.com/jonathan/premium-reader/internal/types"
)

// URLIngester fetches and extracts articles.
type URLIngester struct {
	options  *fetch.Options
	renderer fetch.Renderer
	logger   *slog.Logger
}

// NewURLIngester creates a URLIngester. When renderer is non-nil, pages that
// yield no article over plain HTTP are retried through it.
func NewURLIngester(options *fetch.Options, renderer fetch.Renderer, logger *slog.Logger) *URLIngester {
	if options == nil {
		options = fetch.DefaultOptions()
	}
	return &URLIngester{
		options:  options,
		renderer: renderer,
		logger:   logging.OrDefault(logger),
	}
}

// Ingest fetches rawURL and extracts its article.
func (u *URLIngester) Ingest(ctx context.Context, rawURL string) (*types.FetchResult, error) {
	u.logger.Info("fetching article", "url", rawURL)

	page, err := fetch.URL(ctx, rawURL, u.options)
	if err != nil {
		u.logFailure(rawURL, err)
		return nil, err
	}
	u.logger.Debug("fetched page", "url", page.URL, "bytes", len(page.HTML))

	extracted, err := extract.Article(page.HTML, parseOrNil(page.URL))
	if err != nil && u.renderer != nil && hasCode(err, types.CodeNotArticle) {
		u.logger.Info("no article over HTTP, retrying with headless browser", "url", page.URL)
		if rendered, rerr := u.renderer.Render(ctx, page.URL); rerr != nil {
			u.logger.Warn("browser rendering failed", "url", page.URL, "err", rerr)
		} else if retried, xerr := extract.Article(rendered.HTML, parseOrNil(rendered.URL)); xerr == nil {
			extracted, err = retried, nil
			page = rendered
		}
	}
	if err != nil {
		u.logFailure(page.URL, err)
		return nil, err
	}

	u.logger.Info("extracted article",
		"url", page.URL,
		"title", extracted.Article.Title,
		"words", extracted.Article.WordCount,
		"paragraphs", len(extracted.Article.Paragraphs))

	return &types.FetchResult{
		Article:      extracted.Article,
		URL:          page.URL,
		CanonicalURL: extracted.CanonicalURL,
	}, nil
}

func (u *URLIngester) logFailure(rawURL string, err error) {
	var failure *types.Failure
	if errors.As(err, &failure) {
		u.logger.Warn("article fetch failed", "url", rawURL, "code", failure.Code, "err", failure.Message)
		return
	}
	u.logger.Warn("article fetch failed", "url", rawURL, "err", err)
}

func hasCode(err error, code types.ErrorCode) bool {
	var failure *types.Failure
	return errors.As(err, &failure) && failure.Code == code
}

func parseOrNil(raw string) *url.URL {
	u, err := url.Parse(raw)
	if err != nil {
		return nil
	}
	return u
}
