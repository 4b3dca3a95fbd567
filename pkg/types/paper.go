// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the paper-finder pipeline.
package types

// Paper is the unified representation of one candidate document across all
// catalog sources. A Paper is created by a source adapter and passes through
// aggregation, filtering, and ranking unmodified; relevance scores live in
// rank.Scored annotations, never on the Paper itself.
type Paper struct {
	// Title is the paper title. Adapters discard source items without one.
	Title string `json:"title" yaml:"title"`

	// DOI is the Digital Object Identifier, when the source provides one.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// ArchiveID is the preprint archive identifier (e.g. "2301.07041").
	ArchiveID string `json:"archive_id,omitempty" yaml:"archive_id,omitempty"`

	// Authors lists the paper authors in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// Abstract is the paper abstract, possibly empty.
	Abstract string `json:"abstract" yaml:"abstract"`

	// Year is the publication year, zero when unknown.
	Year int `json:"year,omitempty" yaml:"year,omitempty"`

	// Venue is the journal or conference name, when known.
	Venue string `json:"venue,omitempty" yaml:"venue,omitempty"`

	// Fields lists the fields of study the source assigns to the paper.
	Fields []string `json:"fields,omitempty" yaml:"fields,omitempty"`

	// Citations is the citation count reported by the source.
	Citations int `json:"citations" yaml:"citations"`

	// URL is the landing page for the paper.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	// PDFURL points at an open-access PDF when the source knows one.
	PDFURL string `json:"pdf_url,omitempty" yaml:"pdf_url,omitempty"`

	// Source identifies the adapter that produced this record
	// (e.g. "arxiv", "semantic_scholar", "openalex").
	Source string `json:"source" yaml:"source"`
}

// HasPDF reports whether an open-access PDF is known for the paper.
func (p Paper) HasPDF() bool { return p.PDFURL != "" }
