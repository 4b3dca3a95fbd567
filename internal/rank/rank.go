// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rank orders candidate papers by relevance to a query. Two
// strategies exist: semantic ranking over embedding cosine similarity,
// and a keyword-overlap fallback used when no embedding capability is
// configured or an embedding call fails. The strategy is fixed when the
// Ranker is constructed; papers are never mutated — scores travel in
// Scored annotations alongside the immutable Paper.
package rank

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/pdiddy/paper-finder/pkg/types"
)

// Embedder maps text to a fixed-length vector. A nil Embedder means the
// semantic tier is unavailable.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// Scored pairs a paper with its relevance score for one ranking
// invocation. Scores are meaningful only within that invocation.
type Scored struct {
	types.Paper
	Score float64 `json:"relevance_score" yaml:"relevance_score"`
}

// maxEmbedInput bounds the text sent to the embedding capability.
// Oversized text is truncated, not rejected.
const maxEmbedInput = 8000

// Ranker scores and orders papers. Construct one per pipeline run; the
// embedding cache inside it lives for that run only.
type Ranker struct {
	embedder Embedder
	cache    map[string][]float32
}

// New returns a Ranker. With a non-nil embedder it ranks semantically;
// otherwise it ranks by keyword overlap.
func New(embedder Embedder) *Ranker {
	return &Ranker{
		embedder: embedder,
		cache:    make(map[string][]float32),
	}
}

// Semantic reports whether the embedding-based tier is available.
func (r *Ranker) Semantic() bool { return r.embedder != nil }

// Rank scores every paper against the query and returns them in
// non-increasing score order, truncated to topK when topK > 0. With an
// embedder the score is the cosine similarity between query and paper
// embeddings; papers without an abstract score 0.0 and stay in the
// output. If the query embedding cannot be computed the whole call
// degrades to keyword ranking.
func (r *Ranker) Rank(ctx context.Context, query string, papers []types.Paper, topK int) []Scored {
	if r.embedder == nil {
		return r.rankByKeywords(query, papers, topK)
	}

	queryVec, err := r.embedder.EmbedText(ctx, truncate(query, maxEmbedInput))
	if err != nil || len(queryVec) == 0 {
		return r.rankByKeywords(query, papers, topK)
	}

	scored := make([]Scored, 0, len(papers))
	for _, p := range papers {
		scored = append(scored, Scored{Paper: p, Score: r.semanticScore(ctx, queryVec, p)})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	return truncateTo(scored, topK)
}

// SimilarTo scores candidates against a reference paper and returns the
// topK most similar. The reference itself (matched by exact title) is
// forced to score 0 rather than removed. Without an embedder the
// reference title is used as a keyword query; if the reference embedding
// fails the first topK candidates are returned unranked.
func (r *Ranker) SimilarTo(ctx context.Context, ref types.Paper, candidates []types.Paper, topK int) []Scored {
	if r.embedder == nil {
		return r.rankByKeywords(ref.Title, candidates, topK)
	}

	refVec, err := r.embedVector(ctx, ref)
	if err != nil || len(refVec) == 0 {
		scored := make([]Scored, 0, len(candidates))
		for _, p := range candidates {
			scored = append(scored, Scored{Paper: p})
		}
		return truncateTo(scored, topK)
	}

	scored := make([]Scored, 0, len(candidates))
	for _, p := range candidates {
		if p.Title == ref.Title {
			scored = append(scored, Scored{Paper: p, Score: 0})
			continue
		}
		scored = append(scored, Scored{Paper: p, Score: r.semanticScore(ctx, refVec, p)})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	return truncateTo(scored, topK)
}

// semanticScore computes cosine similarity between the query vector and
// the paper's embedding. Papers without an abstract are floor-ranked at
// 0.0; a failed embedding call also scores 0.0 rather than erroring.
func (r *Ranker) semanticScore(ctx context.Context, queryVec []float32, p types.Paper) float64 {
	if p.Abstract == "" {
		return 0.0
	}
	vec, err := r.embedVector(ctx, p)
	if err != nil || len(vec) == 0 {
		return 0.0
	}
	return CosineSimilarity(queryVec, vec)
}

// embedVector returns the paper's embedding, computing it at most once
// per run.
func (r *Ranker) embedVector(ctx context.Context, p types.Paper) ([]float32, error) {
	key := identityKey(p)
	if vec, ok := r.cache[key]; ok {
		return vec, nil
	}

	text := truncate(p.Title+"\n\n"+p.Abstract, maxEmbedInput)
	vec, err := r.embedder.EmbedText(ctx, text)
	if err != nil {
		return nil, err
	}
	r.cache[key] = vec
	return vec, nil
}

// rankByKeywords is the degraded tier: score = fraction of distinct
// query words appearing as substrings of the lowercased title+abstract.
// Citation count breaks the frequent ties; semantic scores are
// fine-grained enough not to need one.
func (r *Ranker) rankByKeywords(query string, papers []types.Paper, topK int) []Scored {
	words := queryWords(query)

	scored := make([]Scored, 0, len(papers))
	for _, p := range papers {
		scored = append(scored, Scored{Paper: p, Score: keywordScore(words, p)})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Citations > scored[j].Citations
	})

	return truncateTo(scored, topK)
}

// queryWords tokenizes a query into its set of distinct lowercase words.
func queryWords(query string) []string {
	seen := make(map[string]bool)
	var words []string
	for _, w := range strings.Fields(strings.ToLower(query)) {
		if !seen[w] {
			seen[w] = true
			words = append(words, w)
		}
	}
	return words
}

// keywordScore returns the fraction of query words found in the paper's
// lowercased title and abstract, in [0,1]. An empty word set scores 0.
func keywordScore(words []string, p types.Paper) float64 {
	if len(words) == 0 {
		return 0
	}
	text := strings.ToLower(p.Title + " " + p.Abstract)
	hits := 0
	for _, w := range words {
		if strings.Contains(text, w) {
			hits++
		}
	}
	return float64(hits) / float64(len(words))
}

// CosineSimilarity returns dot(a,b) / (‖a‖·‖b‖). Mismatched or
// zero-magnitude vectors score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// identityKey returns the dedup-identity key for the embedding cache:
// DOI, else archive ID, else the normalized title.
func identityKey(p types.Paper) string {
	if p.DOI != "" {
		return "doi:" + p.DOI
	}
	if p.ArchiveID != "" {
		return "id:" + p.ArchiveID
	}
	return "title:" + strings.ToLower(strings.TrimSpace(p.Title))
}

// truncate bounds s to max bytes.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

// truncateTo truncates a scored slice to topK when topK > 0.
func truncateTo(scored []Scored, topK int) []Scored {
	if topK > 0 && len(scored) > topK {
		return scored[:topK]
	}
	return scored
}
