package main

import (
	"os"
	"testing"

	"github.com/matsen/bibclique/internal/config"
	"github.com/matsen/bibclique/internal/reference"
	"github.com/matsen/bibclique/internal/storage"
)

// newTestLibrary writes file as the entries of a fresh library and returns
// its root.
func newTestLibrary(t *testing.T, file *reference.File) string {
	t.Helper()
	root := t.TempDir()
	if err := os.MkdirAll(config.LibraryPath(root), 0755); err != nil {
		t.Fatal(err)
	}
	if err := storage.WriteFile(config.EntriesPath(root), file); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return root
}

func TestRebuildIndex(t *testing.T) {
	root := newTestLibrary(t, duplicateFile())
	db := mustOpenDatabase(root)
	defer db.Close()

	count, err := rebuildIndex(db, config.EntriesPath(root))
	if err != nil {
		t.Fatalf("rebuildIndex() error = %v", err)
	}
	if count != 3 {
		t.Errorf("rebuildIndex() = %d, want 3", count)
	}
}

func TestLookupIndexed(t *testing.T) {
	root := newTestLibrary(t, duplicateFile())
	db := mustOpenDatabase(root)
	if _, err := rebuildIndex(db, config.EntriesPath(root)); err != nil {
		t.Fatalf("rebuildIndex() error = %v", err)
	}
	db.Close()

	entry := lookupIndexed(root, "jones1980")
	if entry == nil {
		t.Fatal("lookupIndexed(jones1980) = nil, want entry")
	}
	if entry.Type != "book" {
		t.Errorf("Type = %q, want book", entry.Type)
	}

	if got := lookupIndexed(root, "missing"); got != nil {
		t.Errorf("lookupIndexed(missing) = %v, want nil", got.ID)
	}
}

func TestLookupIndexedNotYetBuilt(t *testing.T) {
	root := newTestLibrary(t, duplicateFile())
	if got := lookupIndexed(root, "jones1980"); got != nil {
		t.Errorf("lookupIndexed() on an empty database = %v, want nil", got.ID)
	}
}
