// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package filter narrows a paper set with an ordered chain of optional
// predicates. Active predicates intersect (logical AND); the semantic
// predicate runs last because it is the most expensive and benefits from
// the structural narrowing before it.
package filter

import (
	"context"
	"strings"

	"github.com/pdiddy/paper-finder/internal/rank"
	"github.com/pdiddy/paper-finder/pkg/types"
)

// Ranker is the slice of the relevance ranker the semantic predicate
// needs.
type Ranker interface {
	Semantic() bool
	Rank(ctx context.Context, query string, papers []types.Paper, topK int) []rank.Scored
}

// Options holds the optional predicates. Zero values deactivate a
// predicate entirely.
type Options struct {
	// YearStart and YearEnd bound the publication year (inclusive).
	// Papers without a year fail an active year predicate.
	YearStart int
	YearEnd   int

	// MinCitations and MaxCitations bound the citation count (inclusive).
	MinCitations int
	MaxCitations int

	// Fields keeps papers whose field list contains at least one of the
	// given fields of study, compared case-insensitively and exactly.
	Fields []string

	// PDFOnly keeps papers with a known open-access PDF.
	PDFOnly bool

	// AuthorContains keeps papers where any author name contains the
	// substring, case-insensitively.
	AuthorContains string

	// VenueContains keeps papers whose venue contains the substring,
	// case-insensitively.
	VenueContains string

	// SemanticQuery and SemanticThreshold keep papers scoring at least
	// the threshold against the query. Requires a semantically capable
	// ranker; skipped entirely when the capability is absent so that a
	// missing capability never empties the result set.
	SemanticQuery     string
	SemanticThreshold float64
}

// Apply runs the active predicates over papers in fixed order and
// returns the survivors.
func Apply(ctx context.Context, papers []types.Paper, opts Options, ranker Ranker) []types.Paper {
	filtered := papers

	if opts.YearStart > 0 || opts.YearEnd > 0 {
		filtered = keep(filtered, func(p types.Paper) bool {
			if p.Year == 0 {
				return false
			}
			if opts.YearStart > 0 && p.Year < opts.YearStart {
				return false
			}
			if opts.YearEnd > 0 && p.Year > opts.YearEnd {
				return false
			}
			return true
		})
	}

	if opts.MinCitations > 0 {
		filtered = keep(filtered, func(p types.Paper) bool {
			return p.Citations >= opts.MinCitations
		})
	}

	if opts.MaxCitations > 0 {
		filtered = keep(filtered, func(p types.Paper) bool {
			return p.Citations <= opts.MaxCitations
		})
	}

	if len(opts.Fields) > 0 {
		filtered = keep(filtered, func(p types.Paper) bool {
			return matchesField(p.Fields, opts.Fields)
		})
	}

	if opts.PDFOnly {
		filtered = keep(filtered, types.Paper.HasPDF)
	}

	if opts.AuthorContains != "" {
		needle := strings.ToLower(opts.AuthorContains)
		filtered = keep(filtered, func(p types.Paper) bool {
			for _, a := range p.Authors {
				if strings.Contains(strings.ToLower(a), needle) {
					return true
				}
			}
			return false
		})
	}

	if opts.VenueContains != "" {
		needle := strings.ToLower(opts.VenueContains)
		filtered = keep(filtered, func(p types.Paper) bool {
			return p.Venue != "" && strings.Contains(strings.ToLower(p.Venue), needle)
		})
	}

	if opts.SemanticQuery != "" && ranker != nil && ranker.Semantic() {
		scored := ranker.Rank(ctx, opts.SemanticQuery, filtered, 0)
		var surviving []types.Paper
		for _, s := range scored {
			if s.Score >= opts.SemanticThreshold {
				surviving = append(surviving, s.Paper)
			}
		}
		filtered = surviving
	}

	return filtered
}

// keep returns the papers satisfying pred, preserving order.
func keep(papers []types.Paper, pred func(types.Paper) bool) []types.Paper {
	var out []types.Paper
	for _, p := range papers {
		if pred(p) {
			out = append(out, p)
		}
	}
	return out
}

// matchesField reports whether any of the paper's fields equals any of
// the wanted fields, ignoring case. Exact matching on purpose: substring
// containment lets a short field name match nearly everything.
func matchesField(have, want []string) bool {
	for _, h := range have {
		for _, w := range want {
			if strings.EqualFold(strings.TrimSpace(h), strings.TrimSpace(w)) {
				return true
			}
		}
	}
	return false
}
