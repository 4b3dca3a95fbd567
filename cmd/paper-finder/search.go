// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-finder/internal/filter"
	"github.com/pdiddy/paper-finder/internal/render"
	"github.com/pdiddy/paper-finder/internal/session"
	"github.com/pdiddy/paper-finder/internal/source"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search academic catalogs for papers",
	Long: `Search queries the configured catalogs (Semantic Scholar, arXiv, OpenAlex)
for papers matching the query, deduplicates the combined results, applies
the requested filters, and ranks by relevance.

With an OpenAI API key configured, --ai-rank scores papers by embedding
similarity and --ai-refine expands the query before searching. Without a
key both degrade gracefully to keyword ranking and the original query.

Results are saved to the session file so that push, similar, and analyze
can act on them.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	queryText := strings.Join(args, " ")
	cfg := pipelineConfig()

	limit, _ := cmd.Flags().GetInt("limit")
	if limit <= 0 {
		limit = cfg.Search.MaxResults
	}
	yearStart, _ := cmd.Flags().GetInt("year-start")
	yearEnd, _ := cmd.Flags().GetInt("year-end")
	minCitations, _ := cmd.Flags().GetInt("min-citations")
	maxCitations, _ := cmd.Flags().GetInt("max-citations")
	fields, _ := cmd.Flags().GetStringSlice("fields")
	sources, _ := cmd.Flags().GetStringSlice("sources")
	aiRank, _ := cmd.Flags().GetBool("ai-rank")
	if !cmd.Flags().Changed("ai-rank") {
		aiRank = cfg.Search.AIRank
	}
	if noAIRank, _ := cmd.Flags().GetBool("no-ai-rank"); noAIRank {
		aiRank = false
	}
	aiRefine, _ := cmd.Flags().GetBool("ai-refine")
	pdfOnly, _ := cmd.Flags().GetBool("pdf-only")
	author, _ := cmd.Flags().GetString("author")
	venue, _ := cmd.Flags().GetString("venue")
	semanticThreshold, _ := cmd.Flags().GetFloat64("semantic-threshold")
	outputPath, _ := cmd.Flags().GetString("output")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	verbose, _ := cmd.Flags().GetBool("verbose")

	if len(sources) == 0 {
		sources = cfg.Search.Sources
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	client := httpClient(cfg.Search.HTTPConfig)
	backends, err := source.Build(sources, cfg.Search, client)
	if err != nil {
		return err
	}

	aic := aiClient(cfg.AI)

	refined := ""
	if aiRefine {
		if r := aic.RefineQuery(ctx, queryText); r != queryText {
			refined = r
			fmt.Fprintf(os.Stderr, "Refined query: %s\n", refined)
		}
	}
	searchText := queryText
	if refined != "" {
		searchText = refined
	}

	// Fetch extra headroom so filtering still leaves enough candidates.
	fetchCfg := cfg.Search
	fetchCfg.MaxResults = 2 * limit

	query := source.Query{
		Text:         searchText,
		YearStart:    yearStart,
		YearEnd:      yearEnd,
		MinCitations: minCitations,
		Fields:       fields,
	}

	out, err := source.SearchAll(ctx, query, backends, fetchCfg, os.Stderr)
	if err != nil {
		return err
	}

	// An explicit semantic threshold implies semantic scoring even
	// without --ai-rank.
	ranker := newRanker(aic, aiRank || cmd.Flags().Changed("semantic-threshold"))

	filtered := filter.Apply(ctx, out.Papers, filter.Options{
		YearStart:         yearStart,
		YearEnd:           yearEnd,
		MinCitations:      minCitations,
		MaxCitations:      maxCitations,
		Fields:            fields,
		PDFOnly:           pdfOnly,
		AuthorContains:    author,
		VenueContains:     venue,
		SemanticQuery:     semanticQueryFor(cmd, queryText),
		SemanticThreshold: semanticThreshold,
	}, ranker)

	results := ranker.Rank(ctx, queryText, filtered, limit)

	rendered := render.Output{
		Query:        queryText,
		RefinedQuery: refined,
		Results:      results,
		DupsRemoved:  out.DupsRemoved,
		SourceErrors: out.SourceErrors,
	}

	switch {
	case outputPath != "":
		if err := render.WriteFile(rendered, outputPath); err != nil {
			return err
		}
		fmt.Printf("Wrote %d results to %s\n", len(results), outputPath)
	case jsonOutput:
		if err := render.JSON(rendered, os.Stdout); err != nil {
			return err
		}
	case verbose:
		for i, r := range results {
			render.Detail(r, i+1, os.Stdout)
			fmt.Println()
		}
	default:
		render.Table(rendered, os.Stdout)
	}

	saveSession(ctx, cfg.Session.Dir, &session.Session{
		Query:        queryText,
		RefinedQuery: refined,
		Timestamp:    time.Now(),
		Results:      results,
	})

	return nil
}

// semanticQueryFor returns the query for the semantic filter predicate,
// active only when a threshold was explicitly requested.
func semanticQueryFor(cmd *cobra.Command, query string) string {
	if cmd.Flags().Changed("semantic-threshold") {
		return query
	}
	return ""
}

// saveSession persists the session and records it in the history
// database. Persistence failures warn but never fail the search.
func saveSession(ctx context.Context, dir string, s *session.Session) {
	if err := session.Save(dir, s); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not save session: %v\n", err)
	}

	history, err := session.OpenHistory(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not open history: %v\n", err)
		return
	}
	defer history.Close()

	if _, err := history.Add(ctx, s); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not record history: %v\n", err)
	}
}

func init() {
	searchCmd.Flags().Int("limit", 0, "maximum number of results (0 = config default)")
	searchCmd.Flags().Int("year-start", 0, "earliest publication year (inclusive)")
	searchCmd.Flags().Int("year-end", 0, "latest publication year (inclusive)")
	searchCmd.Flags().Int("min-citations", 0, "minimum citation count")
	searchCmd.Flags().Int("max-citations", 0, "maximum citation count")
	searchCmd.Flags().StringSlice("fields", nil, "fields of study (comma-separated)")
	searchCmd.Flags().StringSlice("sources", nil, "sources to query: semantic_scholar, arxiv, openalex")
	searchCmd.Flags().Bool("ai-rank", false, "rank results by embedding similarity")
	searchCmd.Flags().Bool("no-ai-rank", false, "force keyword ranking even when enabled in config")
	searchCmd.Flags().Bool("ai-refine", false, "expand the query with the AI model before searching")
	searchCmd.Flags().Bool("pdf-only", false, "keep only papers with an open-access PDF")
	searchCmd.Flags().String("author", "", "keep papers with an author name containing this text")
	searchCmd.Flags().String("venue", "", "keep papers whose venue contains this text")
	searchCmd.Flags().Float64("semantic-threshold", 0.3, "minimum semantic similarity (requires AI key)")
	searchCmd.Flags().String("output", "", "write results to a file (.json, .yaml, .yml)")
	searchCmd.Flags().Bool("json", false, "output results as JSON")
	searchCmd.Flags().Bool("verbose", false, "print full metadata for each result")

	rootCmd.AddCommand(searchCmd)
}
