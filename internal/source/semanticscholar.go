// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/paper-finder/internal/httputil"
	"github.com/pdiddy/paper-finder/pkg/types"
)

// semanticAPIBase is the Semantic Scholar paper search endpoint. Declared
// as a var so tests can substitute an httptest server.
var semanticAPIBase = "https://api.semanticscholar.org/graph/v1/paper/search"

const (
	semanticFields  = "title,authors,abstract,year,citationCount,venue,externalIds,openAccessPdf,fieldsOfStudy,url"
	semanticMaxPage = 100
)

// SemanticScholarBackend queries the Semantic Scholar graph API. It is the
// citation-graph source: the only adapter that reports citation counts and
// curated fields of study.
type SemanticScholarBackend struct {
	Client *http.Client
	APIKey string
}

// Name returns the backend identifier.
func (b *SemanticScholarBackend) Name() string { return "semantic_scholar" }

// Search queries the Semantic Scholar API and maps the response into
// Paper records. Year range and fields of study are pushed down to the
// provider; the minimum-citation constraint is applied client-side since
// the API cannot express it.
func (b *SemanticScholarBackend) Search(ctx context.Context, query Query, cfg types.SearchConfig) ([]types.Paper, error) {
	if query.IsEmpty() {
		return nil, fmt.Errorf("empty Semantic Scholar query")
	}

	limit := cfg.MaxResults
	if limit <= 0 {
		limit = 20
	}
	if limit > semanticMaxPage {
		limit = semanticMaxPage
	}

	params := url.Values{
		"query":  {query.Text},
		"limit":  {fmt.Sprintf("%d", limit)},
		"fields": {semanticFields},
	}

	if yr := yearRange(query.YearStart, query.YearEnd); yr != "" {
		params.Set("year", yr)
	}
	if len(query.Fields) > 0 {
		params.Set("fieldsOfStudy", strings.Join(query.Fields, ","))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, semanticAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)
	if b.APIKey != "" {
		req.Header.Set("x-api-key", b.APIKey)
	}

	resp, err := httputil.DoWithRetry(ctx, b.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("Semantic Scholar API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Semantic Scholar API returned HTTP %d", resp.StatusCode)
	}

	var sr semanticResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("parsing Semantic Scholar response: %w", err)
	}

	var papers []types.Paper
	for _, item := range sr.Data {
		if strings.TrimSpace(item.Title) == "" {
			continue
		}
		if item.CitationCount < query.MinCitations {
			continue
		}

		p := types.Paper{
			Title:     strings.TrimSpace(item.Title),
			DOI:       item.ExternalIDs.DOI,
			ArchiveID: item.ExternalIDs.ArXiv,
			Abstract:  item.Abstract,
			Year:      item.Year,
			Venue:     item.Venue,
			Citations: item.CitationCount,
			URL:       item.URL,
			Source:    "semantic_scholar",
		}

		for _, a := range item.Authors {
			if a.Name != "" {
				p.Authors = append(p.Authors, a.Name)
			}
		}
		for _, f := range item.FieldsOfStudy {
			if f.Category != "" {
				p.Fields = append(p.Fields, f.Category)
			}
		}
		if item.OpenAccessPDF != nil {
			p.PDFURL = item.OpenAccessPDF.URL
		}

		papers = append(papers, p)
	}
	return papers, nil
}

// yearRange returns a Semantic Scholar year filter string (e.g. "2020-2023").
func yearRange(start, end int) string {
	switch {
	case start > 0 && end > 0:
		return fmt.Sprintf("%d-%d", start, end)
	case start > 0:
		return fmt.Sprintf("%d-", start)
	case end > 0:
		return fmt.Sprintf("-%d", end)
	default:
		return ""
	}
}

// Semantic Scholar API JSON structures.
type semanticResponse struct {
	Total  int             `json:"total"`
	Offset int             `json:"offset"`
	Data   []semanticPaper `json:"data"`
}

type semanticPaper struct {
	PaperID       string              `json:"paperId"`
	Title         string              `json:"title"`
	Abstract      string              `json:"abstract"`
	Year          int                 `json:"year"`
	CitationCount int                 `json:"citationCount"`
	Venue         string              `json:"venue"`
	URL           string              `json:"url"`
	Authors       []semanticAuthor    `json:"authors"`
	FieldsOfStudy []semanticField     `json:"fieldsOfStudy"`
	ExternalIDs   semanticExternalIDs `json:"externalIds"`
	OpenAccessPDF *semanticPDF        `json:"openAccessPdf"`
}

type semanticAuthor struct {
	AuthorID string `json:"authorId"`
	Name     string `json:"name"`
}

type semanticField struct {
	Category string `json:"category"`
}

type semanticExternalIDs struct {
	DOI   string `json:"DOI"`
	ArXiv string `json:"ArXiv"`
}

type semanticPDF struct {
	URL string `json:"url"`
}
