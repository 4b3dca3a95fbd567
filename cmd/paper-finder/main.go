// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the paper-finder CLI.
//
// paper-finder searches academic catalogs, filters and ranks the
// results, and pushes selected papers into a Zotero library. Each
// pipeline stage is a subcommand: search, push, similar, analyze,
// collections, history, and status.
package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-finder/internal/ai"
	"github.com/pdiddy/paper-finder/internal/rank"
	"github.com/pdiddy/paper-finder/internal/secrets"
	"github.com/pdiddy/paper-finder/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns fallback if non-empty, otherwise the secret
// value for key.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the paper-finder CLI.
var rootCmd = &cobra.Command{
	Use:   "paper-finder",
	Short: "Search academic catalogs and manage results in Zotero",
	Long: `paper-finder queries academic catalogs (Semantic Scholar, arXiv, OpenAlex)
for papers matching a research interest, deduplicates and filters the
combined results, ranks them by relevance, and pushes selected papers
into a Zotero library.

Searches are saved to a local session so follow-up commands (push,
similar, analyze) operate on the most recent results without
re-querying the catalogs.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./paper-finder.yaml or ~/.config/paper-finder/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("paper-finder")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "paper-finder"))
		}
	}

	viper.SetEnvPrefix("PAPER_FINDER")
	viper.AutomaticEnv()

	viper.SetDefault("search.max_results", 20)
	viper.SetDefault("search.timeout", "30s")
	viper.SetDefault("search.inter_source_delay", "500ms")
	viper.SetDefault("session.dir", ".")
	viper.SetDefault("zotero.library_type", "user")

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// pipelineConfig assembles the full configuration from the config file,
// environment, and loaded secrets. Flags layer on top in each command.
func pipelineConfig() types.PipelineConfig {
	cfg := types.PipelineConfig{
		Search: types.SearchConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("search.timeout"),
				UserAgent: "paper-finder/" + version,
			},
			MaxResults:            viper.GetInt("search.max_results"),
			Sources:               viper.GetStringSlice("search.sources"),
			SemanticScholarAPIKey: secretDefault("semantic-scholar-api-key", viper.GetString("search.semantic_scholar_api_key")),
			OpenAlexEmail:         secretDefault("openalex-email", viper.GetString("search.openalex_email")),
			InterSourceDelay:      viper.GetDuration("search.inter_source_delay"),
			AIRank:                viper.GetBool("search.ai_rank"),
		},
		AI: types.AIConfig{
			APIKey:          secretDefault("openai-api-key", viper.GetString("ai.api_key")),
			BaseURL:         viper.GetString("ai.base_url"),
			EmbeddingModel:  viper.GetString("ai.embedding_model"),
			CompletionModel: viper.GetString("ai.completion_model"),
		},
		Zotero: types.ZoteroConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("search.timeout"),
				UserAgent: "paper-finder/" + version,
			},
			APIKey:      secretDefault("zotero-api-key", viper.GetString("zotero.api_key")),
			LibraryID:   secretDefault("zotero-user-id", viper.GetString("zotero.library_id")),
			LibraryType: viper.GetString("zotero.library_type"),
		},
		Session: types.SessionConfig{
			Dir: viper.GetString("session.dir"),
		},
	}
	if cfg.Session.Dir == "" {
		cfg.Session.Dir = "."
	}
	return cfg
}

// httpClient returns an HTTP client bounded by the configured timeout.
func httpClient(cfg types.HTTPConfig) *http.Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// aiClient constructs the optional AI client. Construction failures
// degrade to nil with a warning; an unconfigured key is silent.
func aiClient(cfg types.AIConfig) *ai.Client {
	client, err := ai.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: AI client unavailable: %v\n", err)
		return nil
	}
	return client
}

// newRanker builds a Ranker whose strategy is fixed here: semantic when
// an AI client exists and semantic ranking was requested, keyword
// otherwise. The nil check keeps a typed nil out of the interface.
func newRanker(client *ai.Client, semantic bool) *rank.Ranker {
	if semantic && client != nil {
		return rank.New(client)
	}
	return rank.New(nil)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
