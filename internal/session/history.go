// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const historyDBFile = "paper-finder-history.db"

// History records past searches in a SQLite database so they can be
// listed and searched later.
type History struct {
	db *sql.DB
}

// Record is one past search.
type Record struct {
	ID          int64
	Query       string
	Refined     string
	ResultCount int
	Timestamp   time.Time
	Titles      []string
}

// OpenHistory opens or creates the history database inside dir.
func OpenHistory(dir string) (*History, error) {
	dbPath := filepath.Join(dir, historyDBFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}

	h := &History{db: db}
	if err := h.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating history schema: %w", err)
	}
	return h, nil
}

// Close releases the database connection.
func (h *History) Close() error {
	return h.db.Close()
}

func (h *History) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS searches (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			query TEXT NOT NULL,
			refined_query TEXT,
			result_count INTEGER NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS search_results (
			search_id INTEGER NOT NULL REFERENCES searches(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			title TEXT NOT NULL,
			source TEXT,
			year INTEGER,
			score REAL,
			PRIMARY KEY (search_id, position)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_searches_created_at ON searches(created_at)`,
	}

	for _, stmt := range statements {
		if _, err := h.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table over queries and result titles with triggers
	// for sync.
	var ftsExists int
	if err := h.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='searches_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE searches_fts USING fts5(query, content=searches, content_rowid=id)`,
			`CREATE TRIGGER searches_ai AFTER INSERT ON searches BEGIN
				INSERT INTO searches_fts(rowid, query) VALUES (new.id, new.query);
			END`,
			`CREATE TRIGGER searches_ad AFTER DELETE ON searches BEGIN
				INSERT INTO searches_fts(searches_fts, rowid, query) VALUES('delete', old.id, old.query);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := h.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// Add records a completed search and its result titles.
func (h *History) Add(ctx context.Context, s *Session) (int64, error) {
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO searches (query, refined_query, result_count, created_at)
		 VALUES (?, ?, ?, ?)`,
		s.Query, s.RefinedQuery, len(s.Results),
		s.Timestamp.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting search: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading search id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO search_results (search_id, position, title, source, year, score)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range s.Results {
		if _, err := stmt.ExecContext(ctx, id, i+1, r.Title, r.Source, r.Year, r.Score); err != nil {
			return 0, fmt.Errorf("inserting result %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing history: %w", err)
	}
	return id, nil
}

// Recent returns the most recent searches, newest first.
func (h *History) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := h.db.QueryContext(ctx,
		`SELECT id, query, refined_query, result_count, created_at
		 FROM searches ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	return h.scanRecords(ctx, rows)
}

// Search returns past searches whose query matches the FTS expression,
// newest first.
func (h *History) Search(ctx context.Context, match string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := h.db.QueryContext(ctx,
		`SELECT s.id, s.query, s.refined_query, s.result_count, s.created_at
		 FROM searches s JOIN searches_fts f ON s.id = f.rowid
		 WHERE searches_fts MATCH ? ORDER BY s.id DESC LIMIT ?`, match, limit)
	if err != nil {
		return nil, fmt.Errorf("searching history: %w", err)
	}
	defer rows.Close()

	return h.scanRecords(ctx, rows)
}

func (h *History) scanRecords(ctx context.Context, rows *sql.Rows) ([]Record, error) {
	var records []Record
	for rows.Next() {
		var r Record
		var refined sql.NullString
		var created string
		if err := rows.Scan(&r.ID, &r.Query, &refined, &r.ResultCount, &created); err != nil {
			return nil, fmt.Errorf("scanning search row: %w", err)
		}
		r.Refined = refined.String
		if ts, err := time.Parse(time.RFC3339, created); err == nil {
			r.Timestamp = ts
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating history rows: %w", err)
	}

	for i := range records {
		titles, err := h.resultTitles(ctx, records[i].ID)
		if err != nil {
			return nil, err
		}
		records[i].Titles = titles
	}
	return records, nil
}

func (h *History) resultTitles(ctx context.Context, searchID int64) ([]string, error) {
	rows, err := h.db.QueryContext(ctx,
		`SELECT title FROM search_results WHERE search_id = ? ORDER BY position`, searchID)
	if err != nil {
		return nil, fmt.Errorf("querying result titles: %w", err)
	}
	defer rows.Close()

	var titles []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scanning title: %w", err)
		}
		titles = append(titles, t)
	}
	return titles, rows.Err()
}
