// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-finder/internal/session"
	"github.com/pdiddy/paper-finder/internal/zotero"
	"github.com/pdiddy/paper-finder/pkg/types"
)

var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Push papers from the last search into Zotero",
	Long: `Push sends selected papers from the most recent search session to the
configured Zotero library. Select papers with --indices using 1-based
positions from the search output ("1,3-5") or "all".

By default every selected paper is pushed as-is. With --no-duplicates
the library is searched first and papers whose title already exists are
skipped. Requires zotero-api-key and zotero-user-id secrets.`,
	RunE: runPush,
}

func runPush(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig()

	indices, _ := cmd.Flags().GetString("indices")
	collection, _ := cmd.Flags().GetString("collection")
	noDuplicates, _ := cmd.Flags().GetBool("no-duplicates")
	attachPDF, _ := cmd.Flags().GetBool("attach-pdf")

	sess := session.Load(cfg.Session.Dir)
	if sess.Empty() {
		return fmt.Errorf("no search session found: run a search first")
	}

	selected := session.ParseSelection(indices, len(sess.Results))
	if len(selected) == 0 {
		return fmt.Errorf("selection %q matches no results (session has %d)", indices, len(sess.Results))
	}

	papers := make([]types.Paper, 0, len(selected))
	for _, i := range selected {
		papers = append(papers, sess.Results[i-1].Paper)
	}

	client := zotero.NewClient(cfg.Zotero, httpClient(cfg.Zotero.HTTPConfig))
	if !client.Available() {
		return fmt.Errorf("Zotero not configured: set zotero-api-key and zotero-user-id secrets")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	result, err := client.AddPapers(ctx, papers, zotero.PushOptions{
		CollectionName: collection,
		AttachPDFs:     attachPDF,
		SkipExisting:   noDuplicates,
	})
	if err != nil {
		return err
	}

	if result.Skipped > 0 {
		fmt.Fprintf(os.Stderr, "Skipping %d paper(s) already in the library\n", result.Skipped)
	}
	if result.Added == 0 && result.Failed == 0 && result.Skipped > 0 {
		fmt.Println("All selected papers are already in the library.")
		return nil
	}

	fmt.Printf("Added %d paper(s) to Zotero", result.Added)
	if collection != "" {
		fmt.Printf(" (collection %q)", collection)
	}
	fmt.Println()

	if result.Failed > 0 {
		for _, title := range result.FailedTitles {
			fmt.Fprintf(os.Stderr, "failed: %s\n", title)
		}
		return fmt.Errorf("%d paper(s) failed to push", result.Failed)
	}
	return nil
}

func init() {
	pushCmd.Flags().String("indices", "all", `papers to push: "all", "3", or "1,3-5"`)
	pushCmd.Flags().String("collection", "", "create a collection and add the papers to it")
	pushCmd.Flags().Bool("no-duplicates", false, "skip papers whose title already exists in the library")
	pushCmd.Flags().Bool("attach-pdf", true, "attach a linked-URL PDF to each item")

	rootCmd.AddCommand(pushCmd)
}
