// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-finder/internal/rank"
	"github.com/pdiddy/paper-finder/pkg/types"
)

func testOutput() Output {
	return Output{
		Query: "graph neural networks",
		Results: []rank.Scored{
			{
				Paper: types.Paper{
					Title:     "A Comprehensive Survey on Graph Neural Networks and Their Applications",
					Authors:   []string{"Zonghan Wu", "Shirui Pan"},
					Year:      2021,
					Citations: 4200,
					Source:    "semantic_scholar",
				},
				Score: 0.92,
			},
			{
				Paper: types.Paper{Title: "Short", Year: 2023, Source: "arxiv"},
				Score: 0.55,
			},
		},
		DupsRemoved: 3,
	}
}

func TestTableOutput(t *testing.T) {
	var buf bytes.Buffer
	Table(testOutput(), &buf)
	got := buf.String()

	// Long titles truncate with an ellipsis.
	if !strings.Contains(got, "...") {
		t.Errorf("output missing truncated title:\n%s", got)
	}
	// Multi-author papers show the first author et al.
	if !strings.Contains(got, "et al.") {
		t.Errorf("output missing et al.:\n%s", got)
	}
	if !strings.Contains(got, "semantic_scholar") || !strings.Contains(got, "arxiv") {
		t.Errorf("output missing sources:\n%s", got)
	}
	if !strings.Contains(got, "2 results (3 duplicates removed)") {
		t.Errorf("output missing summary line:\n%s", got)
	}
}

func TestTableEmptyResults(t *testing.T) {
	var buf bytes.Buffer
	Table(Output{}, &buf)
	if !strings.Contains(buf.String(), "No results found.") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestDetailOutput(t *testing.T) {
	var buf bytes.Buffer
	Detail(rank.Scored{
		Paper: types.Paper{
			Title:     "Attention Is All You Need",
			Authors:   []string{"Ashish Vaswani"},
			Year:      2017,
			Venue:     "NeurIPS",
			DOI:       "10.5555/attn",
			ArchiveID: "1706.03762",
			Citations: 90000,
			Abstract:  "The dominant sequence transduction models.",
			Source:    "arxiv",
		},
		Score: 0.97,
	}, 1, &buf)

	got := buf.String()
	for _, want := range []string{
		"1. Attention Is All You Need",
		"Ashish Vaswani",
		"NeurIPS",
		"10.5555/attn",
		"1706.03762",
		"0.970",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("detail output missing %q:\n%s", want, got)
		}
	}
}

func TestJSONRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(testOutput(), &buf); err != nil {
		t.Fatalf("JSON: %v", err)
	}

	var got Output
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Query != "graph neural networks" || len(got.Results) != 2 {
		t.Errorf("got = %+v", got)
	}
	if got.Results[0].Score != 0.92 {
		t.Errorf("Score = %f, want relevance score preserved", got.Results[0].Score)
	}
}

func TestWriteFileFormats(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "results.json")
	if err := WriteFile(testOutput(), jsonPath); err != nil {
		t.Fatalf("WriteFile json: %v", err)
	}
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatalf("reading: %v", err)
	}
	var fromJSON Output
	if err := json.Unmarshal(data, &fromJSON); err != nil {
		t.Fatalf("json output invalid: %v", err)
	}

	yamlPath := filepath.Join(dir, "results.yaml")
	if err := WriteFile(testOutput(), yamlPath); err != nil {
		t.Fatalf("WriteFile yaml: %v", err)
	}
	data, err = os.ReadFile(yamlPath)
	if err != nil {
		t.Fatalf("reading: %v", err)
	}
	var fromYAML Output
	if err := yaml.Unmarshal(data, &fromYAML); err != nil {
		t.Fatalf("yaml output invalid: %v", err)
	}
	if len(fromYAML.Results) != 2 {
		t.Errorf("yaml results = %d, want 2", len(fromYAML.Results))
	}
}

func TestWriteFileUnsupportedExtension(t *testing.T) {
	err := WriteFile(testOutput(), filepath.Join(t.TempDir(), "results.csv"))
	if err == nil {
		t.Fatal("expected error for unsupported extension")
	}
	if !strings.Contains(err.Error(), ".csv") {
		t.Errorf("error = %q, want it to name the extension", err.Error())
	}
}
