package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var (
	parseInputFile string
	parseJSON      bool
)

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Parse pasted text or HTML into an article",
	Long:  "Parse text or HTML read from --in, or from stdin when --in is not set, into a clean article.",
	Args:  cobra.NoArgs,
	RunE:  runParse,
}

func init() {
	parseCmd.Flags().StringVarP(&parseInputFile, "in", "i", "", "Path to a text or HTML file (default: stdin)")
	parseCmd.Flags().BoolVar(&parseJSON, "json", false, "Print the article as JSON")
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, _ []string) error {
	content, err := readInput(cmd.InOrStdin(), parseInputFile)
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.parser.Parse(ctx, content)
	if err != nil {
		return reportFailure(cmd.OutOrStdout(), err)
	}
	return printArticle(cmd.OutOrStdout(), result.Article, parseJSON)
}

// readInput reads path, or stdin when path is empty.
func readInput(stdin io.Reader, path string) (string, error) {
	if path == "" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read input file: %w", err)
	}
	return string(data), nil
}
