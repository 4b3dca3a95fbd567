// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package source queries academic catalogs and merges their results into
// one deduplicated sequence of unified Paper records. Each catalog is a
// Backend; the aggregator depends only on the interface, so new providers
// plug in without touching the rest of the pipeline.
package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/paper-finder/pkg/types"
)

// Backend searches a single academic catalog.
type Backend interface {
	Name() string
	Search(ctx context.Context, query Query, cfg types.SearchConfig) ([]types.Paper, error)
}

// Query holds the search text and the constraints adapters understand.
// Constraints a provider cannot express server-side are ignored by that
// adapter; the filter engine enforces them afterwards.
type Query struct {
	Text string

	// YearStart and YearEnd bound the publication year, zero = unbounded.
	YearStart int
	YearEnd   int

	// MinCitations drops low-citation results at providers that report
	// citation counts.
	MinCitations int

	// Fields constrains fields of study (Semantic Scholar) or archive
	// categories (arXiv).
	Fields []string
}

// IsEmpty reports whether the query contains no searchable text.
func (q Query) IsEmpty() bool { return strings.TrimSpace(q.Text) == "" }

// Output holds the merged results and aggregation statistics.
type Output struct {
	Papers       []types.Paper
	DupsRemoved  int
	SourceErrors []string
}

// SearchAll invokes the backends sequentially in the given order, with a
// fixed delay between calls to respect provider rate limits, then
// deduplicates the concatenated results. A failing source contributes
// nothing; its error is written to w as a warning and the search
// continues. Merging happens only after every backend call has returned,
// so arrival order is exactly backend invocation order.
func SearchAll(ctx context.Context, query Query, backends []Backend, cfg types.SearchConfig, w io.Writer) (Output, error) {
	if query.IsEmpty() {
		return Output{}, fmt.Errorf("query is empty: provide search terms")
	}
	if len(backends) == 0 {
		return Output{}, fmt.Errorf("no search sources configured")
	}

	var all []types.Paper
	var sourceErrors []string

	for i, b := range backends {
		if i > 0 && cfg.InterSourceDelay > 0 {
			select {
			case <-ctx.Done():
				return Output{}, ctx.Err()
			case <-time.After(cfg.InterSourceDelay):
			}
		}

		papers, err := b.Search(ctx, query, cfg)
		if err != nil {
			msg := fmt.Sprintf("%s: %v", b.Name(), err)
			sourceErrors = append(sourceErrors, msg)
			fmt.Fprintf(w, "warning: source %s failed: %v\n", b.Name(), err)
			continue
		}
		all = append(all, papers...)
	}

	deduped, removed := Deduplicate(all)

	return Output{
		Papers:       deduped,
		DupsRemoved:  removed,
		SourceErrors: sourceErrors,
	}, nil
}

// Deduplicate removes papers already seen under an identifier or a
// normalized title, in arrival order. The first-seen record wins; later
// duplicates are dropped even when they carry richer metadata. DOIs and
// archive IDs share one identifier set — a string collision between the
// two namespaces is treated as negligible.
func Deduplicate(papers []types.Paper) ([]types.Paper, int) {
	seenIDs := make(map[string]bool)
	seenTitles := make(map[string]bool)

	var unique []types.Paper
	removed := 0

	for _, p := range papers {
		if p.DOI != "" {
			if seenIDs[p.DOI] {
				removed++
				continue
			}
			seenIDs[p.DOI] = true
		}

		if p.ArchiveID != "" {
			if seenIDs[p.ArchiveID] {
				removed++
				continue
			}
			seenIDs[p.ArchiveID] = true
		}

		title := NormalizeTitle(p.Title)
		if seenTitles[title] {
			removed++
			continue
		}
		seenTitles[title] = true

		unique = append(unique, p)
	}

	return unique, removed
}

// NormalizeTitle lowercases and trims a title for identity comparison.
func NormalizeTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

// Registry maps source names to backend constructors so the CLI can build
// the requested subset in a stable order.
var registryOrder = []string{"semantic_scholar", "arxiv", "openalex"}

// Build returns the backends for the requested source names, in registry
// order. Unknown names produce an error listing the valid sources. An
// empty selection yields every registered backend.
func Build(names []string, cfg types.SearchConfig, client *http.Client) ([]Backend, error) {
	constructors := map[string]func() Backend{
		"semantic_scholar": func() Backend {
			return &SemanticScholarBackend{Client: client, APIKey: cfg.SemanticScholarAPIKey}
		},
		"arxiv": func() Backend {
			return &ArxivBackend{Client: client}
		},
		"openalex": func() Backend {
			return &OpenAlexBackend{Client: client, Email: cfg.OpenAlexEmail}
		},
	}

	selected := names
	if len(selected) == 0 {
		selected = registryOrder
	}

	want := make(map[string]bool, len(selected))
	for _, name := range selected {
		if _, ok := constructors[name]; !ok {
			return nil, fmt.Errorf("unknown source %q: valid sources are %s", name, strings.Join(registryOrder, ", "))
		}
		want[name] = true
	}

	var backends []Backend
	for _, name := range registryOrder {
		if want[name] {
			backends = append(backends, constructors[name]())
		}
	}
	return backends, nil
}
