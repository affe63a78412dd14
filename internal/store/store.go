// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists citation, reference, and change-record snapshots
// in SQLite. It stands in for the upstream detection service, reference
// store, and change-tracking store so the CLI can run end to end; the
// annotation engine itself never touches it.
// Implements: prd003-snapshot-store (R1-R4).
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pubcite/pkg/types"
)

// Store manages the pubcite snapshot database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the snapshot database at cfg.DBPath, creating the
// schema if it does not exist (R1.1, R1.2).
func Open(cfg types.StoreConfig) (*Store, error) {
	path := cfg.DBPath
	if path == "" {
		path = "pubcite.db"
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS citations (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT,
			raw_text TEXT NOT NULL,
			paragraph_index INTEGER,
			start_offset INTEGER,
			end_offset INTEGER,
			citation_number INTEGER,
			reference_number INTEGER,
			orphaned INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS ref_entries (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT,
			number INTEGER NOT NULL UNIQUE,
			authors TEXT NOT NULL,
			year TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS change_records (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			citation_id TEXT,
			old_number INTEGER,
			new_number INTEGER,
			old_text TEXT,
			new_text TEXT,
			change_type TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_citations_id ON citations(id)`,
		`CREATE INDEX IF NOT EXISTS idx_ref_entries_number ON ref_entries(number)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// SaveSnapshot replaces the stored citation and reference snapshots (R2.1).
func (s *Store) SaveSnapshot(ctx context.Context, citations []types.Citation, refs []types.ReferenceEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM citations`); err != nil {
		return fmt.Errorf("clearing citations: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM ref_entries`); err != nil {
		return fmt.Errorf("clearing references: %w", err)
	}

	for _, c := range citations {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO citations (id, raw_text, paragraph_index, start_offset, end_offset, citation_number, reference_number, orphaned)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			c.ID, c.RawText, c.ParagraphIndex, c.StartOffset, c.EndOffset,
			c.CitationNumber, c.ReferenceNumber, boolToInt(c.IsOrphaned))
		if err != nil {
			return fmt.Errorf("inserting citation %q: %w", c.RawText, err)
		}
	}

	for _, r := range refs {
		authors, err := json.Marshal(r.Authors)
		if err != nil {
			return fmt.Errorf("marshaling authors for reference %d: %w", r.Number, err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO ref_entries (id, number, authors, year) VALUES (?, ?, ?, ?)`,
			r.ID, r.Number, string(authors), r.Year)
		if err != nil {
			return fmt.Errorf("inserting reference %d: %w", r.Number, err)
		}
	}

	return tx.Commit()
}

// LoadSnapshot returns the stored citation and reference snapshots in
// insertion order (R2.2).
func (s *Store) LoadSnapshot(ctx context.Context) ([]types.Citation, []types.ReferenceEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, raw_text, paragraph_index, start_offset, end_offset, citation_number, reference_number, orphaned
		 FROM citations ORDER BY rowid`)
	if err != nil {
		return nil, nil, fmt.Errorf("querying citations: %w", err)
	}
	defer rows.Close()

	var citations []types.Citation
	for rows.Next() {
		var c types.Citation
		var orphaned int
		if err := rows.Scan(&c.ID, &c.RawText, &c.ParagraphIndex, &c.StartOffset, &c.EndOffset,
			&c.CitationNumber, &c.ReferenceNumber, &orphaned); err != nil {
			return nil, nil, fmt.Errorf("scanning citation: %w", err)
		}
		c.IsOrphaned = orphaned != 0
		citations = append(citations, c)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterating citations: %w", err)
	}

	refRows, err := s.db.QueryContext(ctx,
		`SELECT id, number, authors, year FROM ref_entries ORDER BY number`)
	if err != nil {
		return nil, nil, fmt.Errorf("querying references: %w", err)
	}
	defer refRows.Close()

	var refs []types.ReferenceEntry
	for refRows.Next() {
		var r types.ReferenceEntry
		var authors string
		if err := refRows.Scan(&r.ID, &r.Number, &authors, &r.Year); err != nil {
			return nil, nil, fmt.Errorf("scanning reference: %w", err)
		}
		if authors != "" {
			if err := json.Unmarshal([]byte(authors), &r.Authors); err != nil {
				return nil, nil, fmt.Errorf("unmarshaling authors for reference %d: %w", r.Number, err)
			}
		}
		refs = append(refs, r)
	}
	if err := refRows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterating references: %w", err)
	}

	return citations, refs, nil
}

// SaveChanges replaces the stored change records (R3.1).
func (s *Store) SaveChanges(ctx context.Context, changes []types.ChangeRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM change_records`); err != nil {
		return fmt.Errorf("clearing change records: %w", err)
	}

	for _, ch := range changes {
		var newNumber sql.NullInt64
		if ch.NewNumber != nil {
			newNumber = sql.NullInt64{Int64: int64(*ch.NewNumber), Valid: true}
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO change_records (citation_id, old_number, new_number, old_text, new_text, change_type)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			ch.CitationID, ch.OldNumber, newNumber, ch.OldText, ch.NewText, string(ch.ChangeType))
		if err != nil {
			return fmt.Errorf("inserting change record for %q: %w", ch.CitationID, err)
		}
	}

	return tx.Commit()
}

// LoadChanges returns the stored change records in insertion order (R3.2).
func (s *Store) LoadChanges(ctx context.Context) ([]types.ChangeRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT citation_id, old_number, new_number, old_text, new_text, change_type
		 FROM change_records ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("querying change records: %w", err)
	}
	defer rows.Close()

	var changes []types.ChangeRecord
	for rows.Next() {
		var ch types.ChangeRecord
		var newNumber sql.NullInt64
		var changeType string
		if err := rows.Scan(&ch.CitationID, &ch.OldNumber, &newNumber, &ch.OldText, &ch.NewText, &changeType); err != nil {
			return nil, fmt.Errorf("scanning change record: %w", err)
		}
		if newNumber.Valid {
			n := int(newNumber.Int64)
			ch.NewNumber = &n
		}
		ch.ChangeType = types.ChangeType(changeType)
		changes = append(changes, ch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating change records: %w", err)
	}
	return changes, nil
}

// ClearChanges discards the stored change records. Change records are
// transient: consumed for one rendering, then discarded (R3.3).
func (s *Store) ClearChanges(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM change_records`); err != nil {
		return fmt.Errorf("clearing change records: %w", err)
	}
	return nil
}

// Fixture is the YAML layout accepted by ImportYAML and by the CLI's
// file-based input mode.
type Fixture struct {
	Citations  []types.Citation       `json:"citations" yaml:"citations"`
	References []types.ReferenceEntry `json:"references" yaml:"references"`
	Changes    []types.ChangeRecord   `json:"changes,omitempty" yaml:"changes,omitempty"`
}

// ReadFixture loads a fixture YAML file.
func ReadFixture(path string) (Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Fixture{}, fmt.Errorf("reading fixture %s: %w", path, err)
	}
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Fixture{}, fmt.Errorf("parsing fixture %s: %w", path, err)
	}
	return f, nil
}

// ImportYAML loads a fixture file and replaces all stored snapshots.
// It returns the imported counts (R4.1).
func (s *Store) ImportYAML(ctx context.Context, path string) (citations, refs, changes int, err error) {
	f, err := ReadFixture(path)
	if err != nil {
		return 0, 0, 0, err
	}
	if err := s.SaveSnapshot(ctx, f.Citations, f.References); err != nil {
		return 0, 0, 0, err
	}
	if err := s.SaveChanges(ctx, f.Changes); err != nil {
		return 0, 0, 0, err
	}
	return len(f.Citations), len(f.References), len(f.Changes), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
