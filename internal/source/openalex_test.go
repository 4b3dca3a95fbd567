// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestOpenAlexSearchRequestParams(t *testing.T) {
	var capturedReq *http.Request
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedReq = r
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"meta":{"count":0},"results":[]}`)
	}))
	defer ts.Close()

	old := openAlexSearchBase
	openAlexSearchBase = ts.URL
	defer func() { openAlexSearchBase = old }()

	b := &OpenAlexBackend{Client: ts.Client(), Email: "researcher@example.org"}
	_, err := b.Search(context.Background(), Query{
		Text:         "graph neural networks",
		YearStart:    2020,
		YearEnd:      2024,
		MinCitations: 10,
	}, testCfg())
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	q := capturedReq.URL.Query()
	if got := q.Get("search"); got != "graph neural networks" {
		t.Errorf("search param = %q", got)
	}
	if got := q.Get("mailto"); got != "researcher@example.org" {
		t.Errorf("mailto param = %q", got)
	}

	filter := q.Get("filter")
	for _, want := range []string{
		"from_publication_date:2020-01-01",
		"to_publication_date:2024-12-31",
		"cited_by_count:>9",
	} {
		if !strings.Contains(filter, want) {
			t.Errorf("filter param %q missing %q", filter, want)
		}
	}
}

func TestOpenAlexSearchResponseMapping(t *testing.T) {
	resp := `{"meta":{"count":1},"results":[{
		"id":"https://openalex.org/W123",
		"title":"A Survey of Graph Neural Networks",
		"doi":"https://doi.org/10.1109/gnn.2021",
		"publication_year":2021,
		"cited_by_count":4200,
		"authorships":[{"author":{"id":"A1","display_name":"Zonghan Wu"}}],
		"abstract_inverted_index":{"networks":[2],"Graph":[0],"neural":[1]},
		"open_access":{"is_oa":true,"oa_status":"gold","oa_url":"https://example.org/gnn.pdf"},
		"primary_location":{"source":{"display_name":"IEEE TNNLS"}},
		"concepts":[{"display_name":"Computer Science"},{"display_name":"Graph theory"}]}]}`

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, resp)
	}))
	defer ts.Close()

	old := openAlexSearchBase
	openAlexSearchBase = ts.URL
	defer func() { openAlexSearchBase = old }()

	b := &OpenAlexBackend{Client: ts.Client()}
	papers, err := b.Search(context.Background(), Query{Text: "gnn"}, testCfg())
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(papers) != 1 {
		t.Fatalf("len(papers) = %d, want 1", len(papers))
	}

	p := papers[0]
	// DOI URL prefix is stripped.
	if p.DOI != "10.1109/gnn.2021" {
		t.Errorf("DOI = %q, want bare DOI", p.DOI)
	}
	// Abstract reconstructed from the inverted index in position order.
	if p.Abstract != "Graph neural networks" {
		t.Errorf("Abstract = %q, want reconstruction in position order", p.Abstract)
	}
	if p.Year != 2021 || p.Citations != 4200 {
		t.Errorf("Year = %d, Citations = %d", p.Year, p.Citations)
	}
	if p.Venue != "IEEE TNNLS" {
		t.Errorf("Venue = %q", p.Venue)
	}
	if p.PDFURL != "https://example.org/gnn.pdf" {
		t.Errorf("PDFURL = %q", p.PDFURL)
	}
	if len(p.Fields) != 2 || p.Fields[1] != "Graph theory" {
		t.Errorf("Fields = %v", p.Fields)
	}
	if p.Source != "openalex" {
		t.Errorf("Source = %q", p.Source)
	}
}

func TestReconstructAbstract(t *testing.T) {
	tests := []struct {
		name string
		in   map[string][]int
		want string
	}{
		{"empty", nil, ""},
		{"single word", map[string][]int{"hello": {0}}, "hello"},
		{
			"repeated word",
			map[string][]int{"the": {0, 3}, "cat": {1}, "sat": {2}, "mat": {4}},
			"the cat sat the mat",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := reconstructAbstract(tt.in); got != tt.want {
				t.Errorf("reconstructAbstract() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOpenAlexSearchDropsUntitled(t *testing.T) {
	resp := `{"meta":{"count":2},"results":[
		{"id":"https://openalex.org/W1","title":""},
		{"id":"https://openalex.org/W2","title":"Keeper"}]}`

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, resp)
	}))
	defer ts.Close()

	old := openAlexSearchBase
	openAlexSearchBase = ts.URL
	defer func() { openAlexSearchBase = old }()

	b := &OpenAlexBackend{Client: ts.Client()}
	papers, err := b.Search(context.Background(), Query{Text: "test"}, testCfg())
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(papers) != 1 || papers[0].Title != "Keeper" {
		t.Errorf("papers = %v, want only the titled record", papers)
	}
}

func TestOpenAlexSearchHTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer ts.Close()

	old := openAlexSearchBase
	openAlexSearchBase = ts.URL
	defer func() { openAlexSearchBase = old }()

	b := &OpenAlexBackend{Client: ts.Client()}
	_, err := b.Search(context.Background(), Query{Text: "test"}, testCfg())
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "HTTP 403") {
		t.Errorf("error = %q, want substring 'HTTP 403'", err.Error())
	}
}

func TestOpenAlexBackendName(t *testing.T) {
	b := &OpenAlexBackend{}
	if got := b.Name(); got != "openalex" {
		t.Errorf("Name() = %q, want %q", got, "openalex")
	}
}
