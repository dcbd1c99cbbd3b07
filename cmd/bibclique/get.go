package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/matsen/bibclique/internal/reference"
	"github.com/matsen/bibclique/internal/storage"
)

var getNoCrossref bool

func init() {
	getCmd.Flags().BoolVar(&getNoCrossref, "no-crossref", false, "Show the entry without fields inherited via crossref/xdata")
	rootCmd.AddCommand(getCmd)
}

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Get a single entry by id",
	Long: `Get a single entry by its id, rendered as plain text.

Fields missing from the entry are completed from the entries named by its
crossref and xdata fields unless --no-crossref is given. With
--no-crossref the entry is read from the query database when it is there,
falling back to entries.jsonl.

Example:
  bibclique get doe1999`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

func runGet(cmd *cobra.Command, args []string) error {
	root := mustFindLibrary()
	cfg := mustLoadConfig(root)

	var entry *reference.Entry
	if getNoCrossref {
		entry = lookupIndexed(root, args[0])
	}
	if entry == nil {
		file := mustReadFile(root)
		e, _, ok := file.EntryByID(args[0])
		if !ok {
			exitWithError(ExitDataError, "entry not found: %s", args[0])
		}
		entry = resolveEntry(e, file, !getNoCrossref)
	}

	view := newEntryView(entry, cfg.Renderer())
	if humanOutput {
		printEntryDetail(view)
	} else {
		outputJSON(view)
	}
	return nil
}

func resolveEntry(entry *reference.Entry, file *reference.File, crossref bool) *reference.Entry {
	if !crossref {
		return entry
	}
	return entry.ResolveCrossref(file)
}

// lookupIndexed returns the entry from the query database, or nil when the
// database does not hold it.
func lookupIndexed(root, id string) *reference.Entry {
	db := mustOpenDatabase(root)
	defer db.Close()

	entry, err := db.GetByID(id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		exitWithError(ExitError, "reading database: %v", err)
	}
	return entry
}
