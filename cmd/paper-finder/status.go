// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-finder/internal/session"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configured capabilities and the current session",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig()

	sources := cfg.Search.Sources
	if len(sources) == 0 {
		sources = []string{"semantic_scholar", "arxiv", "openalex"}
	}
	fmt.Printf("Sources:          %s\n", strings.Join(sources, ", "))
	fmt.Printf("Semantic Scholar: %s\n", keyStatus(cfg.Search.SemanticScholarAPIKey != "", "API key set", "unauthenticated (rate limited)"))
	fmt.Printf("OpenAlex:         %s\n", keyStatus(cfg.Search.OpenAlexEmail != "", "polite pool (email set)", "anonymous pool"))
	fmt.Printf("AI ranking:       %s\n", keyStatus(cfg.AI.Configured(), "configured", "not configured (keyword fallback)"))
	fmt.Printf("Zotero:           %s\n", keyStatus(cfg.Zotero.Configured(), "configured", "not configured"))

	sess := session.Load(cfg.Session.Dir)
	if sess.Empty() {
		fmt.Println("Session:          none")
	} else {
		fmt.Printf("Session:          %q, %d results (%s)\n",
			sess.Query, len(sess.Results), sess.Timestamp.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

func keyStatus(ok bool, yes, no string) string {
	if ok {
		return yes
	}
	return no
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
