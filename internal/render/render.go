// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render formats ranked results for the terminal and for export
// files. Export format is chosen by file extension: .json for JSON,
// .yaml or .yml for YAML.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-finder/internal/rank"
)

// Output bundles ranked results with search run statistics.
type Output struct {
	Query        string        `json:"query" yaml:"query"`
	RefinedQuery string        `json:"refined_query,omitempty" yaml:"refined_query,omitempty"`
	Results      []rank.Scored `json:"results" yaml:"results"`
	DupsRemoved  int           `json:"duplicates_removed" yaml:"duplicates_removed"`
	SourceErrors []string      `json:"source_errors,omitempty" yaml:"source_errors,omitempty"`
}

// Table writes results as a human-readable table.
func Table(out Output, w io.Writer) {
	if len(out.Results) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-60s  %-20s  %-4s  %-6s  %-6s  %s\n",
		"#", "Title", "Authors", "Year", "Cites", "Score", "Source")
	fmt.Fprintln(w, strings.Repeat("-", 118))

	for i, r := range out.Results {
		title := r.Title
		if len(title) > 60 {
			title = title[:57] + "..."
		}
		year := ""
		if r.Year > 0 {
			year = fmt.Sprintf("%d", r.Year)
		}
		fmt.Fprintf(w, "%-4d  %-60s  %-20s  %-4s  %-6d  %-6.2f  %s\n",
			i+1, title, formatAuthors(r.Authors), year, r.Citations, r.Score, r.Source)
	}

	fmt.Fprintf(w, "\n%d results", len(out.Results))
	if out.DupsRemoved > 0 {
		fmt.Fprintf(w, " (%d duplicates removed)", out.DupsRemoved)
	}
	fmt.Fprintln(w)
}

// Detail writes one result with its full metadata.
func Detail(r rank.Scored, index int, w io.Writer) {
	fmt.Fprintf(w, "%d. %s\n", index, r.Title)
	if len(r.Authors) > 0 {
		fmt.Fprintf(w, "   Authors:   %s\n", strings.Join(r.Authors, ", "))
	}
	if r.Year > 0 {
		fmt.Fprintf(w, "   Year:      %d\n", r.Year)
	}
	if r.Venue != "" {
		fmt.Fprintf(w, "   Venue:     %s\n", r.Venue)
	}
	fmt.Fprintf(w, "   Citations: %d\n", r.Citations)
	if r.DOI != "" {
		fmt.Fprintf(w, "   DOI:       %s\n", r.DOI)
	}
	if r.ArchiveID != "" {
		fmt.Fprintf(w, "   arXiv:     %s\n", r.ArchiveID)
	}
	if r.URL != "" {
		fmt.Fprintf(w, "   URL:       %s\n", r.URL)
	}
	if r.PDFURL != "" {
		fmt.Fprintf(w, "   PDF:       %s\n", r.PDFURL)
	}
	fmt.Fprintf(w, "   Score:     %.3f (%s)\n", r.Score, r.Source)
	if r.Abstract != "" {
		abstract := r.Abstract
		if len(abstract) > 300 {
			abstract = abstract[:297] + "..."
		}
		fmt.Fprintf(w, "   %s\n", abstract)
	}
}

// JSON writes results as indented JSON.
func JSON(out Output, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// YAML writes results as YAML.
func YAML(out Output, w io.Writer) error {
	data, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("marshaling results: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// WriteFile exports results to path, choosing the format by extension.
func WriteFile(out Output, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = JSON(out, f)
	case ".yaml", ".yml":
		err = YAML(out, f)
	default:
		return fmt.Errorf("unsupported output format %q (use .json, .yaml, or .yml)", filepath.Ext(path))
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func formatAuthors(authors []string) string {
	switch len(authors) {
	case 0:
		return ""
	case 1:
		return truncate(authors[0], 20)
	default:
		return truncate(authors[0], 14) + " et al."
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
