// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-finder/internal/session"
	"github.com/pdiddy/paper-finder/internal/source"
	"github.com/pdiddy/paper-finder/pkg/types"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [query]",
	Short: "Analyze research gaps in a set of papers",
	Long: `Analyze sends a set of papers to the AI model and asks for themes,
research gaps, and opportunities for novel contributions.

With a query argument the catalogs are searched fresh (up to --limit
papers); without one the most recent search session is analyzed.
Requires an openai-api-key secret; without one the analysis is
unavailable.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var papers []types.Paper
	var interest string

	if len(args) > 0 {
		interest = args[0]
		limit, _ := cmd.Flags().GetInt("limit")
		if limit <= 0 {
			limit = cfg.Search.MaxResults
		}

		gathered, err := gatherPapers(ctx, cfg, interest, limit)
		if err != nil {
			return err
		}
		papers = gathered
	} else {
		sess := session.Load(cfg.Session.Dir)
		if sess.Empty() {
			return fmt.Errorf("no search session found: run a search first or pass a query")
		}
		interest = sess.Query
		for _, r := range sess.Results {
			papers = append(papers, r.Paper)
		}
	}

	analysis := aiClient(cfg.AI).AnalyzeGaps(ctx, papers, interest)
	fmt.Println(analysis)
	return nil
}

// gatherPapers runs a plain catalog search for analysis input. Filtering
// and ranking are skipped; the model sees the deduplicated arrivals.
func gatherPapers(ctx context.Context, cfg types.PipelineConfig, query string, limit int) ([]types.Paper, error) {
	backends, err := source.Build(cfg.Search.Sources, cfg.Search, httpClient(cfg.Search.HTTPConfig))
	if err != nil {
		return nil, err
	}

	fetchCfg := cfg.Search
	fetchCfg.MaxResults = limit

	out, err := source.SearchAll(ctx, source.Query{Text: query}, backends, fetchCfg, os.Stderr)
	if err != nil {
		return nil, err
	}

	papers := out.Papers
	if len(papers) > limit {
		papers = papers[:limit]
	}
	return papers, nil
}

func init() {
	analyzeCmd.Flags().Int("limit", 0, "maximum number of papers to analyze (0 = config default)")
	rootCmd.AddCommand(analyzeCmd)
}
