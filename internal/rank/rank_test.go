// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rank

import (
	"context"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/pdiddy/paper-finder/pkg/types"
)

// stubEmbedder returns canned vectors keyed by substrings of the input
// text and counts calls for cache assertions.
type stubEmbedder struct {
	vectors map[string][]float32
	failOn  string
	calls   int
}

func (e *stubEmbedder) EmbedText(_ context.Context, text string) ([]float32, error) {
	e.calls++
	if e.failOn != "" && strings.Contains(text, e.failOn) {
		return nil, fmt.Errorf("embedding service unavailable")
	}
	for key, vec := range e.vectors {
		if strings.Contains(text, key) {
			return vec, nil
		}
	}
	return []float32{0, 0, 1}, nil
}

// --- Semantic ranking ---

func TestRankSemanticOrdering(t *testing.T) {
	emb := &stubEmbedder{vectors: map[string][]float32{
		"quantum computing": {1, 0, 0}, // the query
		"close":             {0.9, 0.1, 0},
		"medium":            {0.5, 0.5, 0},
		"far":               {0, 1, 0},
	}}

	papers := []types.Paper{
		{Title: "far", Abstract: "unrelated work"},
		{Title: "close", Abstract: "very relevant"},
		{Title: "medium", Abstract: "somewhat relevant"},
	}

	r := New(emb)
	scored := r.Rank(context.Background(), "quantum computing", papers, 0)

	wantOrder := []string{"close", "medium", "far"}
	for i, want := range wantOrder {
		if scored[i].Title != want {
			t.Errorf("scored[%d].Title = %q, want %q", i, scored[i].Title, want)
		}
	}
	for i := 1; i < len(scored); i++ {
		if scored[i].Score > scored[i-1].Score {
			t.Errorf("scores not non-increasing at %d: %f > %f", i, scored[i].Score, scored[i-1].Score)
		}
	}
}

func TestRankAbstractlessPaperFloors(t *testing.T) {
	emb := &stubEmbedder{vectors: map[string][]float32{
		"query": {1, 0, 0},
		"rich":  {1, 0, 0},
	}}

	papers := []types.Paper{
		{Title: "no abstract at all"},
		{Title: "rich", Abstract: "full abstract"},
	}

	r := New(emb)
	scored := r.Rank(context.Background(), "query", papers, 0)

	if scored[0].Title != "rich" {
		t.Fatalf("scored[0].Title = %q, want the paper with an abstract", scored[0].Title)
	}
	// Abstract-less papers stay in the output at the 0.0 floor.
	if scored[1].Score != 0.0 {
		t.Errorf("abstract-less score = %f, want 0.0", scored[1].Score)
	}
}

func TestRankQueryEmbedFailureFallsBackToKeywords(t *testing.T) {
	emb := &stubEmbedder{failOn: "unembeddable"}

	papers := []types.Paper{
		{Title: "covid vaccine efficacy", Citations: 10},
		{Title: "unrelated astronomy", Citations: 99},
	}

	r := New(emb)
	scored := r.Rank(context.Background(), "unembeddable covid vaccine", papers, 0)

	// Keyword fallback: the title matching query words wins despite
	// fewer citations.
	if scored[0].Title != "covid vaccine efficacy" {
		t.Errorf("scored[0].Title = %q, want keyword match first", scored[0].Title)
	}
	if scored[0].Score <= scored[1].Score {
		t.Errorf("scores = %f, %f, want keyword match scored higher", scored[0].Score, scored[1].Score)
	}
}

func TestRankPaperEmbedFailureScoresZero(t *testing.T) {
	emb := &stubEmbedder{
		vectors: map[string][]float32{"query": {1, 0, 0}, "good": {1, 0, 0}},
		failOn:  "poison",
	}

	papers := []types.Paper{
		{Title: "poison", Abstract: "embedding of this one fails"},
		{Title: "good", Abstract: "fine"},
	}

	r := New(emb)
	scored := r.Rank(context.Background(), "query", papers, 0)

	if scored[0].Title != "good" {
		t.Fatalf("scored[0].Title = %q, want the embeddable paper", scored[0].Title)
	}
	if scored[1].Score != 0.0 {
		t.Errorf("failed-embedding score = %f, want 0.0", scored[1].Score)
	}
}

func TestRankCachesEmbeddingsPerIdentity(t *testing.T) {
	emb := &stubEmbedder{vectors: map[string][]float32{"q": {1, 0, 0}}}
	papers := []types.Paper{
		{Title: "a", DOI: "10.1/a", Abstract: "x"},
		{Title: "b", DOI: "10.1/b", Abstract: "y"},
	}

	r := New(emb)
	r.Rank(context.Background(), "q", papers, 0)
	first := emb.calls

	r.Rank(context.Background(), "q", papers, 0)
	// Second pass re-embeds only the query; paper vectors come from the
	// cache.
	if emb.calls != first+1 {
		t.Errorf("calls after second pass = %d, want %d", emb.calls, first+1)
	}
}

func TestRankTopKTruncation(t *testing.T) {
	r := New(nil)
	papers := []types.Paper{
		{Title: "a"}, {Title: "b"}, {Title: "c"}, {Title: "d"},
	}
	scored := r.Rank(context.Background(), "q", papers, 2)
	if len(scored) != 2 {
		t.Errorf("len(scored) = %d, want 2", len(scored))
	}
}

// --- Keyword ranking ---

func TestKeywordRankFullAndPartialOverlap(t *testing.T) {
	r := New(nil)
	papers := []types.Paper{
		{Title: "COVID-19 vaccine efficacy study", Citations: 5},
		{Title: "vaccine distribution logistics", Citations: 5},
		{Title: "deep learning for chess", Citations: 5},
	}

	scored := r.Rank(context.Background(), "covid vaccine", papers, 0)

	if math.Abs(scored[0].Score-1.0) > 0.001 {
		t.Errorf("full-overlap score = %f, want 1.0", scored[0].Score)
	}
	if scored[0].Title != "COVID-19 vaccine efficacy study" {
		t.Errorf("scored[0].Title = %q", scored[0].Title)
	}
	if math.Abs(scored[1].Score-0.5) > 0.001 {
		t.Errorf("half-overlap score = %f, want 0.5", scored[1].Score)
	}
	if scored[2].Score != 0.0 {
		t.Errorf("no-overlap score = %f, want 0.0", scored[2].Score)
	}
}

func TestKeywordRankTieBreakByCitations(t *testing.T) {
	r := New(nil)
	papers := []types.Paper{
		{Title: "vaccine study A", Citations: 10},
		{Title: "vaccine study B", Citations: 500},
	}

	scored := r.Rank(context.Background(), "vaccine", papers, 0)

	if scored[0].Citations != 500 {
		t.Errorf("tie broken wrong: scored[0].Citations = %d, want 500", scored[0].Citations)
	}
}

func TestKeywordRankDistinctWords(t *testing.T) {
	r := New(nil)
	papers := []types.Paper{{Title: "vaccine research"}}

	// Repeated query words collapse to one distinct word.
	scored := r.Rank(context.Background(), "vaccine vaccine vaccine", papers, 0)
	if math.Abs(scored[0].Score-1.0) > 0.001 {
		t.Errorf("score = %f, want 1.0 for the single distinct word", scored[0].Score)
	}
}

func TestKeywordRankEmptyQuery(t *testing.T) {
	r := New(nil)
	papers := []types.Paper{
		{Title: "low", Citations: 1},
		{Title: "high", Citations: 100},
	}

	scored := r.Rank(context.Background(), "", papers, 0)

	for _, s := range scored {
		if s.Score != 0.0 {
			t.Errorf("score for %q = %f, want 0.0 on empty query", s.Title, s.Score)
		}
	}
	// All scores tie at zero, so citations order the output.
	if scored[0].Title != "high" {
		t.Errorf("scored[0].Title = %q, want citation order", scored[0].Title)
	}
}

// --- SimilarTo ---

func TestSimilarToReferenceScoresZero(t *testing.T) {
	emb := &stubEmbedder{vectors: map[string][]float32{
		"reference": {1, 0, 0},
		"neighbor":  {0.9, 0.1, 0},
	}}

	ref := types.Paper{Title: "reference", Abstract: "the reference paper"}
	candidates := []types.Paper{
		{Title: "reference", Abstract: "the reference paper"},
		{Title: "neighbor", Abstract: "a close neighbor"},
	}

	r := New(emb)
	scored := r.SimilarTo(context.Background(), ref, candidates, 0)

	if scored[0].Title != "neighbor" {
		t.Fatalf("scored[0].Title = %q, want the neighbor first", scored[0].Title)
	}
	// The reference stays in the output, forced to zero.
	if scored[1].Title != "reference" || scored[1].Score != 0 {
		t.Errorf("reference = %q score %f, want kept at 0", scored[1].Title, scored[1].Score)
	}
}

func TestSimilarToWithoutEmbedderUsesTitleKeywords(t *testing.T) {
	r := New(nil)
	ref := types.Paper{Title: "graph neural networks"}
	candidates := []types.Paper{
		{Title: "convolutional networks for images"},
		{Title: "graph neural networks survey"},
	}

	scored := r.SimilarTo(context.Background(), ref, candidates, 0)
	if scored[0].Title != "graph neural networks survey" {
		t.Errorf("scored[0].Title = %q, want the title-overlap match", scored[0].Title)
	}
}

func TestSimilarToReferenceEmbedFailure(t *testing.T) {
	emb := &stubEmbedder{failOn: "reference"}
	ref := types.Paper{Title: "reference", Abstract: "cannot embed"}
	candidates := []types.Paper{
		{Title: "a"}, {Title: "b"}, {Title: "c"},
	}

	r := New(emb)
	scored := r.SimilarTo(context.Background(), ref, candidates, 2)

	// Degrades to the first topK candidates, unranked.
	if len(scored) != 2 || scored[0].Title != "a" || scored[1].Title != "b" {
		t.Errorf("scored = %v, want first 2 candidates in input order", scored)
	}
}

// --- Cosine similarity ---

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1.0},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0.0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1.0},
		{"mismatched lengths", []float32{1, 0}, []float32{1, 0, 0}, 0.0},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0.0},
		{"empty", nil, nil, 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("CosineSimilarity() = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestSemanticReportsCapability(t *testing.T) {
	if New(nil).Semantic() {
		t.Error("Semantic() = true without an embedder")
	}
	if !New(&stubEmbedder{}).Semantic() {
		t.Error("Semantic() = false with an embedder")
	}
}
