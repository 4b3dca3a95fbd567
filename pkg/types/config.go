package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make
// network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout. Every external call is bounded
	// by it so one slow provider cannot stall the whole pipeline.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "paper-finder/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SearchConfig holds settings for the search stage.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxResults is the per-source result cap (default 20). Each adapter
	// additionally clamps it to the provider's own page-size maximum.
	MaxResults int `json:"max_results" yaml:"max_results"`

	// Sources selects the adapters to query, in invocation order.
	// Empty means all configured sources.
	Sources []string `json:"sources,omitempty" yaml:"sources,omitempty"`

	// SemanticScholarAPIKey is an optional API key for higher rate limits.
	SemanticScholarAPIKey string `json:"semantic_scholar_api_key,omitempty" yaml:"semantic_scholar_api_key,omitempty"`

	// OpenAlexEmail is sent as the mailto parameter for polite pool access.
	OpenAlexEmail string `json:"openalex_email,omitempty" yaml:"openalex_email,omitempty"`

	// InterSourceDelay is the fixed delay between consecutive source
	// calls (default 500ms). A constant, not adaptive backoff.
	InterSourceDelay time.Duration `json:"inter_source_delay" yaml:"inter_source_delay"`

	// AIRank enables embedding-based ranking by default. The search
	// command's --ai-rank and --no-ai-rank flags override it.
	AIRank bool `json:"ai_rank" yaml:"ai_rank"`
}

// AIConfig holds settings for the optional embedding and text-generation
// capability. An empty APIKey leaves the capability unconfigured and the
// pipeline falls back to keyword ranking.
type AIConfig struct {
	// APIKey authenticates against the OpenAI-compatible API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// BaseURL overrides the API endpoint for OpenAI-compatible services.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// EmbeddingModel is the embedding model identifier
	// (default "text-embedding-3-small").
	EmbeddingModel string `json:"embedding_model" yaml:"embedding_model"`

	// CompletionModel is the text-generation model identifier
	// (default "gpt-4o-mini").
	CompletionModel string `json:"completion_model" yaml:"completion_model"`
}

// Configured reports whether the AI capability can be constructed.
func (c AIConfig) Configured() bool { return c.APIKey != "" }

// ZoteroConfig holds settings for the reference-manager integration.
type ZoteroConfig struct {
	HTTPConfig `yaml:",inline"`

	// APIKey authenticates against the Zotero Web API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// LibraryID is the numeric user or group library identifier.
	LibraryID string `json:"library_id,omitempty" yaml:"library_id,omitempty"`

	// LibraryType is "user" or "group" (default "user").
	LibraryType string `json:"library_type" yaml:"library_type"`
}

// Configured reports whether the Zotero client can be constructed.
func (c ZoteroConfig) Configured() bool { return c.APIKey != "" && c.LibraryID != "" }

// SessionConfig holds settings for session persistence and search history.
type SessionConfig struct {
	// Dir is the directory holding the session file and history database
	// (default ".").
	Dir string `json:"dir" yaml:"dir"`
}

// PipelineConfig groups all component configurations. It is assembled once
// at the CLI edge and passed into each component's constructor.
type PipelineConfig struct {
	Search  SearchConfig  `json:"search" yaml:"search"`
	AI      AIConfig      `json:"ai" yaml:"ai"`
	Zotero  ZoteroConfig  `json:"zotero" yaml:"zotero"`
	Session SessionConfig `json:"session" yaml:"session"`
}
