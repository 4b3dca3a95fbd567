// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-finder/internal/zotero"
)

var collectionsCmd = &cobra.Command{
	Use:   "collections",
	Short: "List collections in the Zotero library",
	RunE:  runCollections,
}

func runCollections(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig()

	client := zotero.NewClient(cfg.Zotero, httpClient(cfg.Zotero.HTTPConfig))
	if !client.Available() {
		return fmt.Errorf("Zotero not configured: set zotero-api-key and zotero-user-id secrets")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	collections, err := client.Collections(ctx)
	if err != nil {
		return err
	}

	if len(collections) == 0 {
		fmt.Println("No collections found.")
		return nil
	}

	for _, c := range collections {
		if c.Parent != "" {
			fmt.Printf("  %s  %s (parent %s)\n", c.Key, c.Name, c.Parent)
		} else {
			fmt.Printf("  %s  %s\n", c.Key, c.Name)
		}
	}
	fmt.Printf("\n%d collection(s)\n", len(collections))
	return nil
}

func init() {
	rootCmd.AddCommand(collectionsCmd)
}
