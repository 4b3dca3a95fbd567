// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/pdiddy/paper-finder/pkg/types"
)

// openAlexSearchBase is the OpenAlex Works search endpoint. Declared as a
// var so tests can substitute an httptest server.
var openAlexSearchBase = "https://api.openalex.org/works"

const openAlexMaxPage = 200

// OpenAlexBackend queries the OpenAlex works API.
type OpenAlexBackend struct {
	Client *http.Client
	// Email is sent as mailto parameter for polite pool access.
	Email string
}

// Name returns the backend identifier.
func (b *OpenAlexBackend) Name() string { return "openalex" }

// Search queries the OpenAlex API and maps works into Paper records.
// Abstracts arrive as an inverted index and are reconstructed to plain
// text before mapping.
func (b *OpenAlexBackend) Search(ctx context.Context, query Query, cfg types.SearchConfig) ([]types.Paper, error) {
	if query.IsEmpty() {
		return nil, fmt.Errorf("empty OpenAlex query")
	}

	limit := cfg.MaxResults
	if limit <= 0 {
		limit = 20
	}
	if limit > openAlexMaxPage {
		limit = openAlexMaxPage
	}

	params := url.Values{
		"search":   {query.Text},
		"per_page": {fmt.Sprintf("%d", limit)},
		"page":     {"1"},
	}

	var filters []string
	if query.YearStart > 0 {
		filters = append(filters, fmt.Sprintf("from_publication_date:%d-01-01", query.YearStart))
	}
	if query.YearEnd > 0 {
		filters = append(filters, fmt.Sprintf("to_publication_date:%d-12-31", query.YearEnd))
	}
	if query.MinCitations > 0 {
		filters = append(filters, fmt.Sprintf("cited_by_count:>%d", query.MinCitations-1))
	}
	if len(filters) > 0 {
		params.Set("filter", strings.Join(filters, ","))
	}

	if b.Email != "" {
		params.Set("mailto", b.Email)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, openAlexSearchBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := b.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("OpenAlex API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("OpenAlex API returned HTTP %d", resp.StatusCode)
	}

	var oar openAlexResponse
	if err := json.NewDecoder(resp.Body).Decode(&oar); err != nil {
		return nil, fmt.Errorf("parsing OpenAlex response: %w", err)
	}

	var papers []types.Paper
	for _, work := range oar.Results {
		title := strings.TrimSpace(work.Title)
		if title == "" {
			continue
		}

		p := types.Paper{
			Title:     title,
			DOI:       strings.TrimPrefix(work.DOI, "https://doi.org/"),
			Abstract:  reconstructAbstract(work.AbstractInvertedIndex),
			Year:      work.PublicationYear,
			Citations: work.CitedByCount,
			URL:       work.ID,
			PDFURL:    work.OpenAccess.OAURL,
			Source:    "openalex",
		}

		for _, authorship := range work.Authorships {
			if authorship.Author.DisplayName != "" {
				p.Authors = append(p.Authors, authorship.Author.DisplayName)
			}
		}
		if work.PrimaryLocation.Source.DisplayName != "" {
			p.Venue = work.PrimaryLocation.Source.DisplayName
		}
		for _, c := range work.Concepts {
			if c.DisplayName != "" {
				p.Fields = append(p.Fields, c.DisplayName)
			}
		}

		papers = append(papers, p)
	}
	return papers, nil
}

// reconstructAbstract converts OpenAlex's abstract_inverted_index back to
// plain text. The inverted index maps each word to the positions where it
// appears.
func reconstructAbstract(invertedIndex map[string][]int) string {
	if len(invertedIndex) == 0 {
		return ""
	}

	type posWord struct {
		pos  int
		word string
	}
	var pairs []posWord
	for word, positions := range invertedIndex {
		for _, pos := range positions {
			pairs = append(pairs, posWord{pos: pos, word: word})
		}
	}

	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].pos < pairs[j].pos
	})

	words := make([]string, len(pairs))
	for i, p := range pairs {
		words[i] = p.word
	}
	return strings.Join(words, " ")
}

// OpenAlex API JSON structures.
type openAlexResponse struct {
	Meta    openAlexMeta   `json:"meta"`
	Results []openAlexWork `json:"results"`
}

type openAlexMeta struct {
	Count   int `json:"count"`
	PerPage int `json:"per_page"`
	Page    int `json:"page"`
}

type openAlexWork struct {
	ID                    string               `json:"id"`
	Title                 string               `json:"title"`
	DOI                   string               `json:"doi"`
	PublicationYear       int                  `json:"publication_year"`
	CitedByCount          int                  `json:"cited_by_count"`
	Authorships           []openAlexAuthorship `json:"authorships"`
	AbstractInvertedIndex map[string][]int     `json:"abstract_inverted_index"`
	OpenAccess            openAlexOpenAccess   `json:"open_access"`
	PrimaryLocation       openAlexLocation     `json:"primary_location"`
	Concepts              []openAlexConcept    `json:"concepts"`
}

type openAlexAuthorship struct {
	Author openAlexAuthor `json:"author"`
}

type openAlexAuthor struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type openAlexOpenAccess struct {
	IsOA     bool   `json:"is_oa"`
	OAStatus string `json:"oa_status"`
	OAURL    string `json:"oa_url"`
}

type openAlexLocation struct {
	Source openAlexSource `json:"source"`
}

type openAlexSource struct {
	DisplayName string `json:"display_name"`
}

type openAlexConcept struct {
	DisplayName string `json:"display_name"`
}
