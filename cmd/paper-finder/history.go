// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-finder/internal/session"
)

var historyCmd = &cobra.Command{
	Use:   "history [match]",
	Short: "List past searches",
	Long: `History lists past searches recorded in the local history database,
newest first. With an argument it restricts the list to searches whose
query matches the full-text expression.`,
	RunE: runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig()

	limit, _ := cmd.Flags().GetInt("limit")
	showTitles, _ := cmd.Flags().GetBool("titles")

	history, err := session.OpenHistory(cfg.Session.Dir)
	if err != nil {
		return err
	}
	defer history.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var records []session.Record
	if len(args) > 0 {
		records, err = history.Search(ctx, strings.Join(args, " "), limit)
	} else {
		records, err = history.Recent(ctx, limit)
	}
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Println("No searches recorded.")
		return nil
	}

	for _, r := range records {
		fmt.Printf("%s  %q  (%d results)\n",
			r.Timestamp.Local().Format("2006-01-02 15:04"), r.Query, r.ResultCount)
		if r.Refined != "" {
			fmt.Printf("    refined: %s\n", r.Refined)
		}
		if showTitles {
			for i, t := range r.Titles {
				fmt.Printf("    %d. %s\n", i+1, t)
			}
		}
	}
	return nil
}

func init() {
	historyCmd.Flags().Int("limit", 10, "maximum number of searches to list")
	historyCmd.Flags().Bool("titles", false, "list result titles for each search")

	rootCmd.AddCommand(historyCmd)
}
