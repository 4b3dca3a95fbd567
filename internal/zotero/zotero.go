// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package zotero pushes papers into a Zotero library through the Zotero
// Web API v3. The pipeline treats the library as a narrow collaborator:
// create collections, create items with an optional linked-URL PDF
// attachment, and check for already-present titles.
package zotero

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/paper-finder/internal/httputil"
	"github.com/pdiddy/paper-finder/pkg/types"
)

// zoteroAPIBase is the Zotero Web API endpoint. Declared as a var so
// tests can substitute an httptest server.
var zoteroAPIBase = "https://api.zotero.org"

const (
	maxCreators      = 50
	maxAbstractChars = 10000
	maxFieldTags     = 20
	// titleQueryChars bounds the title prefix used for duplicate lookups.
	titleQueryChars = 50
)

// Client talks to one Zotero library.
type Client struct {
	cfg    types.ZoteroConfig
	client *http.Client
}

// NewClient returns a Client, or nil when the library credentials are not
// configured.
func NewClient(cfg types.ZoteroConfig, client *http.Client) *Client {
	if !cfg.Configured() {
		return nil
	}
	if cfg.LibraryType == "" {
		cfg.LibraryType = "user"
	}
	return &Client{cfg: cfg, client: client}
}

// Available reports whether the library is configured.
func (c *Client) Available() bool { return c != nil }

// libraryPath returns the URL prefix for the configured library.
func (c *Client) libraryPath() string {
	kind := "users"
	if c.cfg.LibraryType == "group" {
		kind = "groups"
	}
	return fmt.Sprintf("%s/%s/%s", zoteroAPIBase, kind, c.cfg.LibraryID)
}

// do sends an authenticated request and retries on 429.
func (c *Client) do(ctx context.Context, method, url string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Zotero-API-Key", c.cfg.APIKey)
	req.Header.Set("Zotero-API-Version", "3")
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return httputil.DoWithRetry(ctx, c.client, req, 0)
}

// Collection is one library collection.
type Collection struct {
	Key    string
	Name   string
	Parent string
}

// Collections lists the collections in the library.
func (c *Client) Collections(ctx context.Context) ([]Collection, error) {
	resp, err := c.do(ctx, http.MethodGet, c.libraryPath()+"/collections", nil)
	if err != nil {
		return nil, fmt.Errorf("fetching collections: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Zotero API returned HTTP %d", resp.StatusCode)
	}

	var raw []struct {
		Key  string `json:"key"`
		Data struct {
			Name             string `json:"name"`
			ParentCollection any    `json:"parentCollection"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("parsing collections: %w", err)
	}

	collections := make([]Collection, 0, len(raw))
	for _, r := range raw {
		col := Collection{Key: r.Key, Name: r.Data.Name}
		if parent, ok := r.Data.ParentCollection.(string); ok {
			col.Parent = parent
		}
		collections = append(collections, col)
	}
	return collections, nil
}

// CreateCollection creates a collection and returns its key.
func (c *Client) CreateCollection(ctx context.Context, name string) (string, error) {
	body, err := json.Marshal([]map[string]string{{"name": name}})
	if err != nil {
		return "", fmt.Errorf("marshaling collection: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, c.libraryPath()+"/collections", body)
	if err != nil {
		return "", fmt.Errorf("creating collection: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("Zotero API returned HTTP %d", resp.StatusCode)
	}

	key, err := firstSuccessfulKey(resp.Body)
	if err != nil {
		return "", fmt.Errorf("creating collection %q: %w", name, err)
	}
	return key, nil
}

// PushOptions controls an AddPapers call.
type PushOptions struct {
	// CollectionKey adds created items to an existing collection.
	CollectionKey string

	// CollectionName creates a collection first and adds items to it.
	CollectionName string

	// AttachPDFs creates a linked-URL attachment for papers with a PDF.
	AttachPDFs bool

	// SkipExisting drops papers whose title is already in the library
	// before pushing. Off by default: a plain push never queries the
	// library first.
	SkipExisting bool
}

// PushResult summarizes an AddPapers call.
type PushResult struct {
	Added         int
	Skipped       int
	Failed        int
	FailedTitles  []string
	CollectionKey string
}

// AddPapers pushes papers into the library one at a time. A per-paper
// failure is counted and the push continues with the remaining papers.
func (c *Client) AddPapers(ctx context.Context, papers []types.Paper, opts PushOptions) (PushResult, error) {
	var result PushResult

	if opts.SkipExisting {
		before := len(papers)
		papers = c.CheckDuplicates(ctx, papers)
		result.Skipped = before - len(papers)
		if len(papers) == 0 {
			// Nothing left to push, so do not create a collection either.
			return result, nil
		}
	}

	collectionKey := opts.CollectionKey
	if opts.CollectionName != "" {
		key, err := c.CreateCollection(ctx, opts.CollectionName)
		if err != nil {
			return PushResult{}, err
		}
		collectionKey = key
	}

	result.CollectionKey = collectionKey

	for _, p := range papers {
		itemKey, err := c.addPaper(ctx, p, collectionKey)
		if err != nil {
			result.Failed++
			result.FailedTitles = append(result.FailedTitles, p.Title)
			continue
		}
		result.Added++

		if opts.AttachPDFs && p.PDFURL != "" {
			// Attachment failures do not fail the paper.
			_ = c.attachPDF(ctx, itemKey, p)
		}
	}

	return result, nil
}

// addPaper creates one item and returns its key.
func (c *Client) addPaper(ctx context.Context, p types.Paper, collectionKey string) (string, error) {
	it := itemFromPaper(p)
	if collectionKey != "" {
		it.Collections = []string{collectionKey}
	}

	body, err := json.Marshal([]item{it})
	if err != nil {
		return "", fmt.Errorf("marshaling item: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, c.libraryPath()+"/items", body)
	if err != nil {
		return "", fmt.Errorf("creating item: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("Zotero API returned HTTP %d", resp.StatusCode)
	}

	return firstSuccessfulKey(resp.Body)
}

// attachPDF creates a linked-URL attachment pointing at the paper's PDF.
// The file itself is not downloaded.
func (c *Client) attachPDF(ctx context.Context, parentKey string, p types.Paper) error {
	title := p.Title
	if len(title) > titleQueryChars {
		title = title[:titleQueryChars] + "..."
	}

	attachment := item{
		ItemType:    "attachment",
		ParentItem:  parentKey,
		LinkMode:    "linked_url",
		Title:       title + " (PDF)",
		URL:         p.PDFURL,
		ContentType: "application/pdf",
	}

	body, err := json.Marshal([]item{attachment})
	if err != nil {
		return fmt.Errorf("marshaling attachment: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, c.libraryPath()+"/items", body)
	if err != nil {
		return fmt.Errorf("creating attachment: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("Zotero API returned HTTP %d", resp.StatusCode)
	}
	return nil
}

// CheckDuplicates returns the papers not already present in the library.
// Presence means an item whose title matches exactly after lowercasing
// and trimming. A lookup error keeps the paper; degraded duplicate
// detection must not drop results.
func (c *Client) CheckDuplicates(ctx context.Context, papers []types.Paper) []types.Paper {
	var fresh []types.Paper
	for _, p := range papers {
		existing, err := c.searchLibrary(ctx, truncateTitle(p.Title), 5)
		if err != nil {
			fresh = append(fresh, p)
			continue
		}

		duplicate := false
		want := strings.ToLower(strings.TrimSpace(p.Title))
		for _, title := range existing {
			if strings.ToLower(strings.TrimSpace(title)) == want {
				duplicate = true
				break
			}
		}
		if !duplicate {
			fresh = append(fresh, p)
		}
	}
	return fresh
}

// searchLibrary queries the library and returns matching item titles.
func (c *Client) searchLibrary(ctx context.Context, query string, limit int) ([]string, error) {
	params := url.Values{
		"q":     {query},
		"limit": {strconv.Itoa(limit)},
	}

	resp, err := c.do(ctx, http.MethodGet, c.libraryPath()+"/items?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("searching library: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Zotero API returned HTTP %d", resp.StatusCode)
	}

	var raw []struct {
		Data struct {
			Title string `json:"title"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("parsing items: %w", err)
	}

	titles := make([]string, 0, len(raw))
	for _, r := range raw {
		titles = append(titles, r.Data.Title)
	}
	return titles, nil
}

// item is the Zotero item payload.
type item struct {
	ItemType         string    `json:"itemType"`
	Title            string    `json:"title"`
	Creators         []creator `json:"creators,omitempty"`
	AbstractNote     string    `json:"abstractNote,omitempty"`
	Date             string    `json:"date,omitempty"`
	URL              string    `json:"url,omitempty"`
	DOI              string    `json:"DOI,omitempty"`
	Repository       string    `json:"repository,omitempty"`
	ArchiveID        string    `json:"archiveID,omitempty"`
	PublicationTitle string    `json:"publicationTitle,omitempty"`
	Tags             []tag     `json:"tags,omitempty"`
	Collections      []string  `json:"collections,omitempty"`
	ParentItem       string    `json:"parentItem,omitempty"`
	LinkMode         string    `json:"linkMode,omitempty"`
	ContentType      string    `json:"contentType,omitempty"`
}

type creator struct {
	CreatorType string `json:"creatorType"`
	Name        string `json:"name"`
}

type tag struct {
	Tag string `json:"tag"`
}

// itemFromPaper maps a Paper onto a Zotero item. Papers with an archive
// ID become preprints, everything else a journal article.
func itemFromPaper(p types.Paper) item {
	itemType := "journalArticle"
	if p.ArchiveID != "" {
		itemType = "preprint"
	}

	it := item{
		ItemType: itemType,
		Title:    p.Title,
		URL:      p.URL,
		DOI:      p.DOI,
	}

	for i, a := range p.Authors {
		if i >= maxCreators {
			break
		}
		it.Creators = append(it.Creators, creator{CreatorType: "author", Name: a})
	}

	if p.Abstract != "" {
		abstract := p.Abstract
		if len(abstract) > maxAbstractChars {
			abstract = abstract[:maxAbstractChars]
		}
		it.AbstractNote = abstract
	}

	if p.Year > 0 {
		it.Date = strconv.Itoa(p.Year)
	}

	if p.ArchiveID != "" {
		it.Repository = "arXiv"
		it.ArchiveID = "arXiv:" + p.ArchiveID
	}

	if p.Venue != "" {
		if itemType == "journalArticle" {
			it.PublicationTitle = p.Venue
		} else {
			it.Repository = p.Venue
		}
	}

	for i, f := range p.Fields {
		if i >= maxFieldTags {
			break
		}
		it.Tags = append(it.Tags, tag{Tag: f})
	}

	return it
}

// truncateTitle bounds a title for library search queries.
func truncateTitle(title string) string {
	if len(title) <= titleQueryChars {
		return title
	}
	return title[:titleQueryChars]
}

// firstSuccessfulKey extracts the first created key from a Zotero write
// response.
func firstSuccessfulKey(body io.Reader) (string, error) {
	var wr struct {
		Successful map[string]struct {
			Key string `json:"key"`
		} `json:"successful"`
		Failed map[string]struct {
			Message string `json:"message"`
		} `json:"failed"`
	}
	if err := json.NewDecoder(body).Decode(&wr); err != nil {
		return "", fmt.Errorf("parsing write response: %w", err)
	}

	for _, s := range wr.Successful {
		if s.Key != "" {
			return s.Key, nil
		}
	}
	for _, f := range wr.Failed {
		return "", fmt.Errorf("write rejected: %s", f.Message)
	}
	return "", fmt.Errorf("write response contained no created key")
}
