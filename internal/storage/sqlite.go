package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/matsen/bibclique/internal/reference"
)

// DB wraps a SQLite database connection. It is a rebuildable query layer
// over entries.jsonl and never the source of truth.
type DB struct {
	db *sql.DB
}

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// createSchema creates the database schema if it doesn't exist. Ids are
// not unique before deduplication, so rows are keyed by file position.
func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS entries (
			position INTEGER PRIMARY KEY,
			id TEXT NOT NULL,
			type TEXT NOT NULL,
			record_json TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_entries_id ON entries(id);

		CREATE VIRTUAL TABLE IF NOT EXISTS entries_fts USING fts5(
			position UNINDEXED,
			id,
			title,
			authors_text,
			keywords,
			year
		);
	`

	_, err := db.Exec(schema)
	return err
}

// RebuildFromJSONL clears the database and rebuilds it from a JSONL file.
// It returns the number of indexed entries.
func (d *DB) RebuildFromJSONL(jsonlPath string) (int, error) {
	file, err := ReadFile(jsonlPath)
	if err != nil {
		return 0, fmt.Errorf("reading JSONL: %w", err)
	}
	return d.Rebuild(file)
}

// Rebuild replaces the database content with the entries of file.
func (d *DB) Rebuild(file *reference.File) (int, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM entries"); err != nil {
		return 0, fmt.Errorf("clearing entries table: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM entries_fts"); err != nil {
		return 0, fmt.Errorf("clearing entries_fts table: %w", err)
	}

	entriesStmt, err := tx.Prepare(`
		INSERT INTO entries (position, id, type, record_json)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing entries insert: %w", err)
	}
	defer entriesStmt.Close()

	ftsStmt, err := tx.Prepare(`
		INSERT INTO entries_fts (position, id, title, authors_text, keywords, year)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing fts insert: %w", err)
	}
	defer ftsStmt.Close()

	count := 0
	for i, elem := range file.Elements() {
		entry, ok := elem.(*reference.Entry)
		if !ok {
			continue
		}

		record, err := MarshalEntry(entry)
		if err != nil {
			return 0, fmt.Errorf("encoding entry %s: %w", entry.ID, err)
		}

		if _, err := entriesStmt.Exec(i, entry.ID, entry.Type, string(record)); err != nil {
			return 0, fmt.Errorf("inserting entry %s: %w", entry.ID, err)
		}

		_, err = ftsStmt.Exec(i, entry.ID,
			reference.Text(entry.Value(reference.FieldTitle)),
			formatAuthorsText(entry),
			reference.Text(entry.Value(reference.FieldKeywords)),
			reference.Text(entry.Value(reference.FieldYear)),
		)
		if err != nil {
			return 0, fmt.Errorf("inserting fts for %s: %w", entry.ID, err)
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing rebuild: %w", err)
	}
	return count, nil
}

// formatAuthorsText creates a searchable text representation of authors
// and editors.
func formatAuthorsText(entry *reference.Entry) string {
	var names []string
	for _, key := range []string{reference.FieldAuthor, reference.FieldEditor} {
		for _, item := range entry.Value(key) {
			p, ok := item.(*reference.Person)
			if !ok {
				continue
			}
			names = append(names, strings.TrimSpace(p.FirstName+" "+p.LastName))
		}
	}
	return strings.Join(names, ", ")
}

// GetByID retrieves the first entry with the given id.
func (d *DB) GetByID(id string) (*reference.Entry, error) {
	row := d.db.QueryRow(`SELECT record_json FROM entries WHERE id = ? ORDER BY position LIMIT 1`, id)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("entry %s: %w", id, ErrNotFound)
	}
	return entry, err
}

// Search performs a full-text search and returns matching entries in file
// order.
func (d *DB) Search(query string, limit int) ([]*reference.Entry, error) {
	return d.searchFTS(prepareFTSQuery(query), limit)
}

// SearchField performs a search on a specific field.
func (d *DB) SearchField(field, value string, limit int) ([]*reference.Entry, error) {
	var column string
	switch field {
	case "author":
		column = "authors_text"
	case "title", "keywords", "year":
		column = field
	default:
		return nil, fmt.Errorf("unknown search field: %s", field)
	}
	query := prepareFTSQuery(value)
	// A column filter binds only the next token, so multi-word names such as
	// "van Beethoven" must be a phrase.
	if field == "author" && len(strings.Fields(value)) > 1 && !strings.HasPrefix(query, "\"") {
		query = "\"" + query + "\""
	}
	return d.searchFTS(column+":"+query, limit)
}

func (d *DB) searchFTS(ftsQuery string, limit int) ([]*reference.Entry, error) {
	rows, err := d.db.Query(`
		SELECT record_json
		FROM entries
		WHERE position IN (SELECT CAST(position AS INTEGER) FROM entries_fts WHERE entries_fts MATCH ?)
		ORDER BY position
		LIMIT ?`, ftsQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("searching: %w", err)
	}
	defer rows.Close()

	var entries []*reference.Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Count returns the total number of indexed entries.
func (d *DB) Count() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM entries").Scan(&count)
	return count, err
}

// scanner interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(s scanner) (*reference.Entry, error) {
	var record string
	if err := s.Scan(&record); err != nil {
		return nil, err
	}
	entry, err := UnmarshalEntry([]byte(record))
	if err != nil {
		return nil, fmt.Errorf("decoding stored entry: %w", err)
	}
	return entry, nil
}

// prepareFTSQuery escapes special characters for FTS5 queries.
func prepareFTSQuery(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	// FTS5 uses double quotes for phrase matching
	if strings.ContainsAny(query, "\"*+-:(){}[]^~,.") {
		query = strings.ReplaceAll(query, "\"", "\"\"")
		return "\"" + query + "\""
	}

	return query
}
