// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ai wraps the optional OpenAI-compatible embedding and
// text-generation capability. The client is constructed once at pipeline
// assembly when an API key is configured; a nil *Client means the
// capability is absent and every operation degrades as documented
// instead of failing.
package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"

	"github.com/pdiddy/paper-finder/pkg/types"
)

const (
	defaultEmbeddingModel  = "text-embedding-3-small"
	defaultCompletionModel = "gpt-4o-mini"
)

// Client provides embeddings and completions. A nil Client is valid and
// means unconfigured.
type Client struct {
	llm      *openai.LLM
	embedder embeddings.Embedder
}

// New builds a Client from the configuration. It returns (nil, nil) when
// no API key is configured so callers can select fallback strategies at
// assembly time.
func New(cfg types.AIConfig) (*Client, error) {
	if !cfg.Configured() {
		return nil, nil
	}

	embeddingModel := cfg.EmbeddingModel
	if embeddingModel == "" {
		embeddingModel = defaultEmbeddingModel
	}
	completionModel := cfg.CompletionModel
	if completionModel == "" {
		completionModel = defaultCompletionModel
	}

	opts := []openai.Option{
		openai.WithToken(cfg.APIKey),
		openai.WithModel(completionModel),
		openai.WithEmbeddingModel(embeddingModel),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}

	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating AI client: %w", err)
	}

	embedder, err := embeddings.NewEmbedder(llm, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}

	return &Client{llm: llm, embedder: embedder}, nil
}

// EmbedText maps text to a fixed-length vector.
func (c *Client) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vecs, err := c.embedder.EmbedDocuments(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("embedding text: %w", err)
	}
	if len(vecs) == 0 {
		return nil, fmt.Errorf("embedder returned no vectors")
	}
	return vecs[0], nil
}

// Complete sends a system and user prompt to the completion model and
// returns the generated text.
func (c *Client) Complete(ctx context.Context, system, user string, maxTokens int, temperature float64) (string, error) {
	resp, err := c.llm.GenerateContent(ctx,
		[]llms.MessageContent{
			llms.TextParts(schema.ChatMessageTypeSystem, system),
			llms.TextParts(schema.ChatMessageTypeHuman, user),
		},
		llms.WithMaxTokens(maxTokens),
		llms.WithTemperature(temperature),
	)
	if err != nil {
		return "", fmt.Errorf("completion request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("completion returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Content), nil
}

const refineSystemPrompt = `You are a research assistant helping to find academic papers.
Given a user's research interest, generate an optimized search query that will find relevant papers.

Include:
- Key technical terms and their synonyms
- Related concepts
- Common abbreviations in the field

Output ONLY the search query, no explanations. Keep it under 100 words.`

// RefineQuery expands a user query into a richer search query. Any
// failure, including an unconfigured client, returns the original query
// unchanged.
func (c *Client) RefineQuery(ctx context.Context, query string) string {
	if c == nil {
		return query
	}

	refined, err := c.Complete(ctx, refineSystemPrompt, "Research interest: "+query, 150, 0.3)
	if err != nil || refined == "" {
		return query
	}
	return refined
}

const gapSystemPrompt = `You are a research analyst. Given a list of academic papers and a research interest,
identify potential research gaps, emerging trends, and opportunities for novel contributions.
Be specific and actionable in your analysis.`

// AnalysisUnavailable is returned by AnalyzeGaps when the capability is
// absent or the call fails.
const AnalysisUnavailable = "AI analysis not available."

// gapAnalysisPapers bounds how many papers feed the analysis prompt.
const gapAnalysisPapers = 10

// AnalyzeGaps summarizes the top papers and asks the completion model
// for a research-gap analysis.
func (c *Client) AnalyzeGaps(ctx context.Context, papers []types.Paper, interest string) string {
	if c == nil || len(papers) == 0 {
		return AnalysisUnavailable
	}

	var sb strings.Builder
	for i, p := range papers {
		if i >= gapAnalysisPapers {
			break
		}
		abstract := p.Abstract
		if len(abstract) > 200 {
			abstract = abstract[:200] + "..."
		}
		fmt.Fprintf(&sb, "- %s (%d): %s\n", p.Title, p.Year, abstract)
	}

	user := fmt.Sprintf(`Research Interest: %s

Found Papers:
%s
Please analyze:
1. Key themes and trends
2. Potential research gaps
3. Opportunities for novel contributions`, interest, sb.String())

	analysis, err := c.Complete(ctx, gapSystemPrompt, user, 500, 0.5)
	if err != nil || analysis == "" {
		return AnalysisUnavailable
	}
	return analysis
}
