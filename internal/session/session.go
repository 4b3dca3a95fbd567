// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package session persists the most recent search so follow-up commands
// (push, analyze, similar) can act on its results, and records a
// longer-term search history in SQLite.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pdiddy/paper-finder/internal/rank"
)

// sessionFile is the name of the session file inside the session
// directory.
const sessionFile = ".paper-finder-session.json"

// Session holds the results of the most recent search.
type Session struct {
	Query        string        `json:"query"`
	RefinedQuery string        `json:"refined_query,omitempty"`
	Timestamp    time.Time     `json:"timestamp"`
	Results      []rank.Scored `json:"results"`
}

// Path returns the session file path for the given directory. An empty
// dir means the current working directory.
func Path(dir string) string {
	return filepath.Join(dir, sessionFile)
}

// Save writes the session as JSON, replacing any previous session.
func Save(dir string, s *Session) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling session: %w", err)
	}
	if err := os.WriteFile(Path(dir), data, 0o644); err != nil {
		return fmt.Errorf("writing session file: %w", err)
	}
	return nil
}

// Load reads the most recent session. A missing or unparseable session
// file yields an empty session, not an error; a stale or corrupt file
// must never block a new search.
func Load(dir string) *Session {
	data, err := os.ReadFile(Path(dir))
	if err != nil {
		return &Session{}
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return &Session{}
	}
	return &s
}

// Empty reports whether the session holds no results.
func (s *Session) Empty() bool {
	return s == nil || len(s.Results) == 0
}
