package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jonathan/premium-reader/internal/config"
	"github.com/jonathan/premium-reader/internal/enhance"
	"github.com/jonathan/premium-reader/internal/fetch"
	"github.com/jonathan/premium-reader/internal/ingestion"
	"github.com/jonathan/premium-reader/internal/llm"
	"github.com/jonathan/premium-reader/internal/logging"
	"github.com/jonathan/premium-reader/internal/structure"
)

// app holds the collaborators shared by every command.
type app struct {
	cfg        *config.Config
	logger     *slog.Logger
	client     llm.Client // nil when no API key is configured
	fetcher    *ingestion.URLIngester
	parser     *ingestion.PasteParser
	enhancer   *enhance.Enhancer
	structurer *structure.Generator
}

// newApp loads configuration and builds the reading pipeline.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger := logging.New(cfg.LogLevel)

	var client llm.Client
	if cfg.LLMConfigured() {
		client, err = llm.NewClient(ctx, cfg.LLMConfig(), cfg.APIKey())
		if err != nil {
			return nil, fmt.Errorf("failed to create LLM client: %w", err)
		}
	} else {
		logger.Warn("no API key configured, insights and outlines fall back to heuristics",
			"provider", cfg.Provider())
	}

	timeout, err := cfg.FetchTimeoutDuration()
	if err != nil {
		return nil, err
	}
	opts := fetch.DefaultOptions()
	opts.Timeout = timeout

	var renderer fetch.Renderer
	if cfg.UseBrowser {
		renderer = fetch.NewBrowser(logger)
	}

	return &app{
		cfg:        cfg,
		logger:     logger,
		client:     client,
		fetcher:    ingestion.NewURLIngester(opts, renderer, logger),
		parser:     ingestion.NewPasteParser(client, cfg.PasteAIStructuring, logger),
		enhancer:   enhance.New(client, logger),
		structurer: structure.New(client, logger),
	}, nil
}

// Close releases the model client.
func (a *app) Close() {
	if a.client != nil {
		if err := a.client.Close(); err != nil {
			a.logger.Warn("closing LLM client failed", "err", err)
		}
	}
}
