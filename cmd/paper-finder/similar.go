// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-finder/internal/render"
	"github.com/pdiddy/paper-finder/internal/session"
	"github.com/pdiddy/paper-finder/internal/source"
)

var similarCmd = &cobra.Command{
	Use:   "similar [index]",
	Short: "Find papers similar to one from the last search",
	Long: `Similar takes the 1-based index of a paper from the most recent search,
searches the catalogs using its title, and ranks the candidates by
similarity to that paper. With an OpenAI API key the similarity is
embedding-based; without one the reference title is used as a keyword
query.`,
	Args: cobra.ExactArgs(1),
	RunE: runSimilar,
}

func runSimilar(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig()

	index, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid index %q: expected a number", args[0])
	}

	limit, _ := cmd.Flags().GetInt("limit")
	if limit <= 0 {
		limit = 10
	}
	jsonOutput, _ := cmd.Flags().GetBool("json")

	sess := session.Load(cfg.Session.Dir)
	if sess.Empty() {
		return fmt.Errorf("no search session found: run a search first")
	}
	if index < 1 || index > len(sess.Results) {
		return fmt.Errorf("index %d out of range: session has %d results", index, len(sess.Results))
	}
	ref := sess.Results[index-1].Paper

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	client := httpClient(cfg.Search.HTTPConfig)
	backends, err := source.Build(cfg.Search.Sources, cfg.Search, client)
	if err != nil {
		return err
	}

	fetchCfg := cfg.Search
	fetchCfg.MaxResults = 2 * limit

	out, err := source.SearchAll(ctx, source.Query{Text: ref.Title}, backends, fetchCfg, os.Stderr)
	if err != nil {
		return err
	}

	ranker := newRanker(aiClient(cfg.AI), true)
	results := ranker.SimilarTo(ctx, ref, out.Papers, limit)

	rendered := render.Output{
		Query:       "similar to: " + ref.Title,
		Results:     results,
		DupsRemoved: out.DupsRemoved,
	}

	if jsonOutput {
		return render.JSON(rendered, os.Stdout)
	}

	fmt.Printf("Papers similar to: %s\n\n", ref.Title)
	render.Table(rendered, os.Stdout)

	saveSession(ctx, cfg.Session.Dir, &session.Session{
		Query:     rendered.Query,
		Timestamp: time.Now(),
		Results:   results,
	})

	return nil
}

func init() {
	similarCmd.Flags().Int("limit", 10, "maximum number of similar papers")
	similarCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(similarCmd)
}
