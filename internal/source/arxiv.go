// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/paper-finder/pkg/types"
)

// arxivAPIBase is the arXiv search endpoint. Declared as a var so tests
// can substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

const arxivMaxPage = 100

// ArxivBackend queries the arXiv Atom API. It is the preprint source:
// results carry archive IDs and categories but no citation counts.
type ArxivBackend struct {
	Client *http.Client
}

// Name returns the backend identifier.
func (b *ArxivBackend) Name() string { return "arxiv" }

// Search queries the arXiv API and maps the Atom feed into Paper records.
// Entries without an extractable arXiv ID or a title are dropped.
func (b *ArxivBackend) Search(ctx context.Context, query Query, cfg types.SearchConfig) ([]types.Paper, error) {
	q := buildArxivQuery(query)
	if q == "" {
		return nil, fmt.Errorf("empty arXiv query")
	}

	limit := cfg.MaxResults
	if limit <= 0 {
		limit = 20
	}
	if limit > arxivMaxPage {
		limit = arxivMaxPage
	}

	reqURL := fmt.Sprintf("%s?search_query=%s&start=0&max_results=%d&sortBy=relevance&sortOrder=descending",
		arxivAPIBase, url.QueryEscape(q), limit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := b.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("arXiv API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arXiv API returned HTTP %d", resp.StatusCode)
	}

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("parsing arXiv response: %w", err)
	}

	var papers []types.Paper
	for _, entry := range feed.Entries {
		arxivID := extractArxivID(entry.ID)
		if arxivID == "" {
			continue
		}
		title := strings.Join(strings.Fields(entry.Title), " ")
		if title == "" {
			continue
		}

		p := types.Paper{
			Title:     title,
			ArchiveID: arxivID,
			DOI:       entry.DOI,
			Abstract:  strings.TrimSpace(entry.Summary),
			Venue:     "arXiv",
			URL:       entry.ID,
			PDFURL:    arxivPDFURL(entry),
			Source:    "arxiv",
		}

		for _, a := range entry.Authors {
			if name := strings.TrimSpace(a.Name); name != "" {
				p.Authors = append(p.Authors, name)
			}
		}
		for _, c := range entry.Categories {
			if c.Term != "" {
				p.Fields = append(p.Fields, c.Term)
			}
		}
		if t, parseErr := time.Parse(time.RFC3339, entry.Published); parseErr == nil {
			p.Year = t.Year()
		}

		papers = append(papers, p)
	}
	return papers, nil
}

// buildArxivQuery constructs the search_query parameter. Category
// constraints become cat: terms ANDed with the free-text search.
func buildArxivQuery(q Query) string {
	if q.IsEmpty() {
		return ""
	}

	terms := strings.Fields(q.Text)
	base := "all:" + strings.Join(terms, "+")

	if len(q.Fields) == 0 {
		return base
	}

	cats := make([]string, len(q.Fields))
	for i, f := range q.Fields {
		cats[i] = "cat:" + f
	}
	return fmt.Sprintf("(%s)+AND+(%s)", base, strings.Join(cats, "+OR+"))
}

// arxivPDFURL returns the PDF link from the entry, or derives one from
// the archive ID when the feed omits it.
func arxivPDFURL(entry arxivEntry) string {
	for _, l := range entry.Links {
		if l.Title == "pdf" || strings.Contains(l.Href, "/pdf/") {
			return l.Href
		}
	}
	if id := extractArxivID(entry.ID); id != "" {
		return "https://arxiv.org/pdf/" + id
	}
	return ""
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID         string          `xml:"id"`
	Title      string          `xml:"title"`
	Summary    string          `xml:"summary"`
	Published  string          `xml:"published"`
	DOI        string          `xml:"doi"`
	Authors    []arxivAuthor   `xml:"author"`
	Categories []arxivCategory `xml:"category"`
	Links      []arxivLink     `xml:"link"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

type arxivCategory struct {
	Term string `xml:"term,attr"`
}

type arxivLink struct {
	Href  string `xml:"href,attr"`
	Title string `xml:"title,attr"`
}

// extractArxivID pulls the arXiv ID from the entry's <id> URL
// (e.g. "http://arxiv.org/abs/2301.07041v1" → "2301.07041").
func extractArxivID(idURL string) string {
	const prefix = "/abs/"
	idx := strings.Index(idURL, prefix)
	if idx < 0 {
		return ""
	}
	id := idURL[idx+len(prefix):]

	// Strip version suffix (e.g. "v1", "v2").
	if vIdx := strings.LastIndex(id, "v"); vIdx > 0 {
		if _, err := strconv.Atoi(id[vIdx+1:]); err == nil {
			id = id[:vIdx]
		}
	}
	return id
}
