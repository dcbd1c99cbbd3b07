package storage

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matsen/bibclique/internal/reference"
)

func person(first, last string) *reference.Person {
	return &reference.Person{FirstName: first, LastName: last}
}

func text(s string) reference.Value {
	return reference.Value{&reference.PlainText{Text: s}}
}

// setupTestDB creates a test database from a JSONL file with test data.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	tmpDir := t.TempDir()
	jsonlPath := filepath.Join(tmpDir, "entries.jsonl")

	smith := reference.NewEntry("article", "smith2026")
	smith.Set(reference.FieldAuthor, reference.Value{person("John", "Smith"), person("Jane", "Doe")})
	smith.Set(reference.FieldTitle, text("Machine Learning in Biology"))
	smith.Set(reference.FieldYear, text("2026"))
	smith.Set(reference.FieldKeywords, reference.Value{&reference.Keyword{Text: "phylogenetics"}})

	jones := reference.NewEntry("inproceedings", "jones2025")
	jones.Set(reference.FieldAuthor, reference.Value{person("Alice", "Jones")})
	jones.Set(reference.FieldTitle, text("Deep Learning for Protein Structure"))
	jones.Set(reference.FieldYear, text("2025"))

	// Same id as the first entry, as happens before deduplication.
	smithCopy := reference.NewEntry("article", "smith2026")
	smithCopy.Set(reference.FieldTitle, text("Machine learning in biology"))

	book := reference.NewEntry("book", "brown2024")
	book.Set(reference.FieldEditor, reference.Value{person("Bob", "Brown")})
	book.Set(reference.FieldTitle, text("Statistical Methods in Genomics"))

	file := reference.NewFile(
		&reference.Macro{Key: "nat", Value: text("Nature")},
		smith, jones, smithCopy, book,
	)
	if err := WriteFile(jsonlPath, file); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	db, err := OpenDB(filepath.Join(tmpDir, "test.db"))
	if err != nil {
		t.Fatalf("OpenDB() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	count, err := db.RebuildFromJSONL(jsonlPath)
	if err != nil {
		t.Fatalf("RebuildFromJSONL() error = %v", err)
	}
	if count != 4 {
		t.Fatalf("RebuildFromJSONL() = %d, want 4", count)
	}
	return db
}

func entryIDs(entries []*reference.Entry) []string {
	var ids []string
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	return ids
}

func TestDB_Count(t *testing.T) {
	db := setupTestDB(t)

	count, err := db.Count()
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 4 {
		t.Errorf("Count() = %d, want 4", count)
	}
}

func TestDB_GetByID(t *testing.T) {
	db := setupTestDB(t)

	entry, err := db.GetByID("smith2026")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got := reference.Text(entry.Value(reference.FieldTitle)); got != "Machine Learning in Biology" {
		t.Errorf("title = %q, want the first smith2026 entry", got)
	}
	if got := reference.Text(entry.Value(reference.FieldAuthor)); got != "Smith, John and Doe, Jane" {
		t.Errorf("author = %q", got)
	}

	_, err = db.GetByID("nobody")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID(missing) error = %v, want ErrNotFound", err)
	}
}

func TestDB_Search(t *testing.T) {
	db := setupTestDB(t)

	tests := []struct {
		query string
		want  []string
	}{
		{"learning", []string{"smith2026", "jones2025", "smith2026"}},
		{"protein", []string{"jones2025"}},
		{"phylogenetics", []string{"smith2026"}},
		{"Brown", []string{"brown2024"}},
		{"quantum", nil},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, err := db.Search(tt.query, 10)
			if err != nil {
				t.Fatalf("Search() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, entryIDs(got)); diff != "" {
				t.Errorf("Search(%q) mismatch (-want +got):\n%s", tt.query, diff)
			}
		})
	}
}

func TestDB_SearchLimit(t *testing.T) {
	db := setupTestDB(t)

	got, err := db.Search("learning", 1)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(got) != 1 {
		t.Errorf("Search() returned %d entries, want 1", len(got))
	}
}

func TestDB_SearchField(t *testing.T) {
	db := setupTestDB(t)

	got, err := db.SearchField("author", "Jones", 10)
	if err != nil {
		t.Fatalf("SearchField() error = %v", err)
	}
	if diff := cmp.Diff([]string{"jones2025"}, entryIDs(got)); diff != "" {
		t.Errorf("SearchField(author) mismatch (-want +got):\n%s", diff)
	}

	got, err = db.SearchField("year", "2025", 10)
	if err != nil {
		t.Fatalf("SearchField() error = %v", err)
	}
	if diff := cmp.Diff([]string{"jones2025"}, entryIDs(got)); diff != "" {
		t.Errorf("SearchField(year) mismatch (-want +got):\n%s", diff)
	}

	if _, err := db.SearchField("abstract", "x", 10); err == nil {
		t.Error("SearchField(abstract) should fail")
	}
}

func TestDB_SearchFieldMultiWordAuthor(t *testing.T) {
	ludwig := reference.NewEntry("book", "beethoven1810")
	ludwig.Set(reference.FieldAuthor, reference.Value{person("Ludwig", "van Beethoven")})
	ludwig.Set(reference.FieldTitle, text("Letters"))

	// "van" only occurs in the title, "Beethoven" in the authors.
	karl := reference.NewEntry("book", "beethoven1820")
	karl.Set(reference.FieldAuthor, reference.Value{person("Karl", "Beethoven")})
	karl.Set(reference.FieldTitle, text("Van Gogh and Others"))

	db, err := OpenDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenDB() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if _, err := db.Rebuild(reference.NewFile(ludwig, karl)); err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}

	got, err := db.SearchField("author", "van Beethoven", 10)
	if err != nil {
		t.Fatalf("SearchField() error = %v", err)
	}
	if diff := cmp.Diff([]string{"beethoven1810"}, entryIDs(got)); diff != "" {
		t.Errorf("SearchField(author, van Beethoven) mismatch (-want +got):\n%s", diff)
	}
}

func TestDB_RebuildReplacesContent(t *testing.T) {
	db := setupTestDB(t)

	only := reference.NewEntry("misc", "solo")
	only.Set(reference.FieldTitle, text("Lonely"))
	count, err := db.Rebuild(reference.NewFile(only))
	if err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}
	if count != 1 {
		t.Errorf("Rebuild() = %d, want 1", count)
	}

	got, err := db.Search("learning", 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Search() after rebuild = %v, want none", entryIDs(got))
	}
}

func TestPrepareFTSQuery(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"  simple  ", "simple"},
		{"two words", "two words"},
		{"C++", `"C++"`},
		{`say "hi"`, `"say ""hi"""`},
	}

	for _, tt := range tests {
		if got := prepareFTSQuery(tt.input); got != tt.want {
			t.Errorf("prepareFTSQuery(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
