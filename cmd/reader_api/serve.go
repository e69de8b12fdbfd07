package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/premium-reader/internal/server"
	"github.com/jonathan/premium-reader/internal/server/ratelimit"
	"github.com/jonathan/premium-reader/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server exposing fetch, parse, enhancement, outline and saved-article endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config and PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if servePort != 0 {
		a.cfg.Port = servePort
		if err := a.cfg.Validate(); err != nil {
			return err
		}
	}

	st, err := openStore(ctx, a.cfg.DatabaseURL)
	if err != nil {
		return err
	}
	a.logger.Info("store ready", "backend", st.Backend())

	srv := server.New(server.Config{
		Addr:           a.cfg.Addr(),
		AllowedOrigins: a.cfg.AllowedOrigins,
		RateLimit:      ratelimit.LoadConfig(),
	}, server.Deps{
		Fetcher:       a.fetcher,
		Parser:        a.parser,
		Enhancer:      a.enhancer,
		Structurer:    a.structurer,
		Store:         st,
		LLMConfigured: a.client != nil,
		Logger:        a.logger,
	})

	return srv.Start(ctx)
}

// openStore connects to Postgres when a URL is set and keeps articles in memory otherwise.
func openStore(ctx context.Context, databaseURL string) (store.Store, error) {
	if databaseURL == "" {
		return store.NewMemory(), nil
	}

	pg, err := store.Connect(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pg.Migrate(ctx); err != nil {
		pg.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return pg, nil
}
