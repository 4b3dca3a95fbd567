// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pdiddy/paper-finder/pkg/types"
)

// newTestAIClient builds a configured client pointed at an httptest
// server standing in for the OpenAI-compatible API.
func newTestAIClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	client, err := New(types.AIConfig{APIKey: "test-key", BaseURL: ts.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if client == nil {
		t.Fatal("client = nil with an API key configured")
	}
	return client
}

func completionResponse(content string) string {
	return fmt.Sprintf(`{
		"id": "chatcmpl-1",
		"object": "chat.completion",
		"model": "gpt-4o-mini",
		"choices": [{"index": 0, "message": {"role": "assistant", "content": %q}, "finish_reason": "stop"}],
		"usage": {"prompt_tokens": 10, "completion_tokens": 10, "total_tokens": 20}
	}`, content)
}

func TestNewUnconfiguredReturnsNil(t *testing.T) {
	client, err := New(types.AIConfig{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if client != nil {
		t.Errorf("client = %v, want nil without an API key", client)
	}
}

func TestRefineQueryWithoutClientReturnsOriginal(t *testing.T) {
	var client *Client
	got := client.RefineQuery(context.Background(), "quantum computing")
	if got != "quantum computing" {
		t.Errorf("RefineQuery = %q, want original query", got)
	}
}

func TestAnalyzeGapsWithoutClient(t *testing.T) {
	var client *Client
	papers := []types.Paper{{Title: "Paper", Abstract: "Abstract"}}

	got := client.AnalyzeGaps(context.Background(), papers, "interest")
	if got != AnalysisUnavailable {
		t.Errorf("AnalyzeGaps = %q, want %q", got, AnalysisUnavailable)
	}
}

func TestRefineQueryReturnsModelQuery(t *testing.T) {
	var reqBody struct {
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	client := newTestAIClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("path = %q, want a chat completion request", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		fmt.Fprint(w, completionResponse("federated learning FL distributed training privacy"))
	})

	got := client.RefineQuery(context.Background(), "federated learning")
	if got != "federated learning FL distributed training privacy" {
		t.Errorf("RefineQuery = %q, want the model output", got)
	}

	if len(reqBody.Messages) != 2 {
		t.Fatalf("messages = %d, want system + user", len(reqBody.Messages))
	}
	if !strings.Contains(reqBody.Messages[1].Content, "Research interest: federated learning") {
		t.Errorf("user message = %q, want the original query embedded", reqBody.Messages[1].Content)
	}
}

func TestRefineQueryServerErrorReturnsOriginal(t *testing.T) {
	client := newTestAIClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	got := client.RefineQuery(context.Background(), "quantum computing")
	if got != "quantum computing" {
		t.Errorf("RefineQuery = %q, want original query on API failure", got)
	}
}

func TestCompleteTrimsWhitespace(t *testing.T) {
	client := newTestAIClient(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, completionResponse("  padded answer \n"))
	})

	got, err := client.Complete(context.Background(), "system", "user", 100, 0.5)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != "padded answer" {
		t.Errorf("Complete = %q, want trimmed text", got)
	}
}

func TestEmbedTextParsesVector(t *testing.T) {
	client := newTestAIClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/embeddings") {
			t.Errorf("path = %q, want an embeddings request", r.URL.Path)
		}
		fmt.Fprint(w, `{
			"object": "list",
			"model": "text-embedding-3-small",
			"data": [{"object": "embedding", "index": 0, "embedding": [0.1, 0.2, 0.3]}],
			"usage": {"prompt_tokens": 5, "total_tokens": 5}
		}`)
	})

	vec, err := client.EmbedText(context.Background(), "a paper abstract")
	if err != nil {
		t.Fatalf("EmbedText: %v", err)
	}
	if len(vec) != 3 || vec[0] != 0.1 {
		t.Errorf("vec = %v, want the server's three components", vec)
	}
}

func TestAnalyzeGapsReturnsModelAnalysis(t *testing.T) {
	client := newTestAIClient(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, completionResponse("Theme: graph learning. Gap: scalability."))
	})

	papers := []types.Paper{{Title: "GNNs at Scale", Year: 2023, Abstract: "We study scale."}}
	got := client.AnalyzeGaps(context.Background(), papers, "graph learning")
	if got != "Theme: graph learning. Gap: scalability." {
		t.Errorf("AnalyzeGaps = %q, want the model output", got)
	}
}

func TestAnalyzeGapsServerErrorUnavailable(t *testing.T) {
	client := newTestAIClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	papers := []types.Paper{{Title: "Paper", Abstract: "Abstract"}}
	got := client.AnalyzeGaps(context.Background(), papers, "interest")
	if got != AnalysisUnavailable {
		t.Errorf("AnalyzeGaps = %q, want %q on API failure", got, AnalysisUnavailable)
	}
}

func TestAnalyzeGapsWithoutPapers(t *testing.T) {
	// Even a configured client has nothing to analyze with no papers.
	got := (&Client{}).AnalyzeGaps(context.Background(), nil, "interest")
	if got != AnalysisUnavailable {
		t.Errorf("AnalyzeGaps = %q, want %q", got, AnalysisUnavailable)
	}
}
