package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/premium-reader/internal/enhance"
	"github.com/jonathan/premium-reader/internal/observability"
	"github.com/jonathan/premium-reader/internal/reader"
	"github.com/jonathan/premium-reader/internal/types"
)

var (
	readInputFile string
	readJSON      bool
	readAll       bool
)

var readCmd = &cobra.Command{
	Use:   "read [url]",
	Short: "Fetch or parse an article, then highlight and outline it",
	Long: "Read an article from a URL, or from pasted content via --in or stdin, " +
		"stream insights for every paragraph and generate its outline concurrently.",
	Args: cobra.MaximumNArgs(1),
	RunE: runRead,
}

func init() {
	readCmd.Flags().StringVarP(&readInputFile, "in", "i", "", "Path to pasted content; used when no URL is given (default: stdin)")
	readCmd.Flags().BoolVar(&readJSON, "json", false, "Print the article, insights and outline as JSON")
	readCmd.Flags().BoolVar(&readAll, "all", false, "Do not cap the number of listed paragraphs and insights")
	rootCmd.AddCommand(readCmd)
}

// readOutput is the JSON shape of the read command.
type readOutput struct {
	Article   types.ArticleMetadata   `json:"article"`
	Insights  []types.InsightResult   `json:"insights"`
	Structure *types.ArticleStructure `json:"structure"`
}

func runRead(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	var article *types.ExtractedArticle
	if len(args) == 1 {
		result, err := a.fetcher.Ingest(ctx, args[0])
		if err != nil {
			return reportFailure(cmd.OutOrStdout(), err)
		}
		article = result.Article
	} else {
		content, err := readInput(cmd.InOrStdin(), readInputFile)
		if err != nil {
			return err
		}
		result, err := a.parser.Parse(ctx, content)
		if err != nil {
			return reportFailure(cmd.OutOrStdout(), err)
		}
		article = result.Article
	}

	session, err := a.enrich(ctx, article)
	if err != nil {
		return err
	}
	return printRead(cmd.OutOrStdout(), article, session, readJSON, readAll)
}

// enrich streams insights and generates the outline concurrently, merging both
// into a reader session.
func (a *app) enrich(ctx context.Context, article *types.ExtractedArticle) (*reader.Session, error) {
	session := reader.NewTextSession(article.Paragraphs)
	structures := make(chan *types.ArticleStructure, 1)

	g, gctx := errgroup.WithContext(ctx)
	events, err := a.enhancer.Stream(gctx, article.Paragraphs)
	if err != nil {
		return nil, fmt.Errorf("failed to start enhancement: %w", err)
	}

	g.Go(func() error {
		defer close(structures)
		structure, err := a.structurer.Generate(gctx, article.Paragraphs, article.Title)
		if err != nil {
			return fmt.Errorf("failed to generate outline: %w", err)
		}
		structures <- structure
		return nil
	})
	g.Go(func() error {
		return session.Consume(gctx, enhance.Insights(gctx, events), structures)
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return session, nil
}

func printRead(out io.Writer, article *types.ExtractedArticle, session *reader.Session, asJSON, all bool) error {
	if asJSON {
		paragraphs := session.Paragraphs()
		insights := make([]types.InsightResult, len(paragraphs))
		for i, ps := range paragraphs {
			insights[i] = types.InsightResult{
				Index:      ps.Index,
				Insight:    ps.InsightText,
				StartIndex: ps.StartIndex,
				EndIndex:   ps.EndIndex,
			}
		}
		jsonBytes, err := json.MarshalIndent(readOutput{
			Article:   article.Metadata(),
			Insights:  insights,
			Structure: session.Structure(),
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		_, err = fmt.Fprintln(out, string(jsonBytes))
		return err
	}

	p := observability.NewPrinter(out)
	if all {
		p.MaxItems = -1
	}
	p.PrintArticle(article)
	p.PrintStructure(session.Structure())
	p.PrintInsights(session)
	return nil
}
