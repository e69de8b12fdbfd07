// Package fetch - browser.go provides headless browser rendering for script-heavy pages.
package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/jonathan/premium-reader/internal/logging"
)

// BrowserTimeout bounds a headless render, including the settle delays.
const BrowserTimeout = 30 * time.Second

// Renderer renders a page and returns its final HTML.
type Renderer interface {
	Render(ctx context.Context, url string) (*Result, error)
}

// Browser renders pages with a local headless Chrome via chromedp.
type Browser struct {
	Timeout time.Duration
	Logger  *slog.Logger
}

// NewBrowser creates a Browser with the default timeout.
func NewBrowser(logger *slog.Logger) *Browser {
	return &Browser{Timeout: BrowserTimeout, Logger: logging.OrDefault(logger)}
}

// Render implements Renderer.
func (b *Browser) Render(ctx context.Context, url string) (*Result, error) {
	timeout := b.Timeout
	if timeout <= 0 {
		timeout = BrowserTimeout
	}
	html, finalURL, err := WithBrowser(ctx, url, timeout, logging.OrDefault(b.Logger))
	if err != nil {
		return nil, err
	}
	return &Result{RequestedURL: url, URL: finalURL, HTML: html, ContentType: "text/html", StatusCode: 200}, nil
}

// WithBrowser renders a page in a headless browser and returns the rendered HTML
// and the location the browser ended on.
// Requires Chrome/Chromium to be installed on the system.
func WithBrowser(ctx context.Context, url string, timeout time.Duration, logger *slog.Logger) (string, string, error) {
	logger.Debug("starting headless browser", "url", url)

	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.UserAgent(DefaultUserAgent),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, timeout)
	defer cancel()

	var html, location string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		// let client-side rendering settle
		chromedp.Sleep(2*time.Second),
		chromedp.Location(&location),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", "", transportFailure(fmt.Errorf("browser rendering failed: %w", err))
	}

	if location == "" {
		location = url
	}
	logger.Debug("browser rendered page", "url", location, "bytes", len(html))
	return html, location, nil
}
