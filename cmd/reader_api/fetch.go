package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jonathan/premium-reader/internal/observability"
	"github.com/jonathan/premium-reader/internal/types"
)

var fetchJSON bool

var fetchCmd = &cobra.Command{
	Use:   "fetch <url>",
	Short: "Fetch a web page and extract its article",
	Args:  cobra.ExactArgs(1),
	RunE:  runFetch,
}

func init() {
	fetchCmd.Flags().BoolVar(&fetchJSON, "json", false, "Print the article as JSON")
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.fetcher.Ingest(ctx, args[0])
	if err != nil {
		return reportFailure(cmd.OutOrStdout(), err)
	}
	return printArticle(cmd.OutOrStdout(), result.Article, fetchJSON)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// printArticle writes the article as indented JSON or as a summary box.
func printArticle(out io.Writer, article *types.ExtractedArticle, asJSON bool) error {
	if !asJSON {
		observability.NewPrinter(out).PrintArticle(article)
		return nil
	}
	jsonBytes, err := json.MarshalIndent(article.Metadata(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(out, string(jsonBytes))
	return err
}

// reportFailure prints a fetch or parse failure before returning it.
func reportFailure(out io.Writer, err error) error {
	var failure *types.Failure
	if errors.As(err, &failure) {
		observability.NewPrinter(out).PrintFailure(failure)
	}
	return err
}
