package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matsen/bibclique/internal/config"
	"github.com/matsen/bibclique/internal/storage"
)

func init() {
	rootCmd.AddCommand(rebuildCmd)
}

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the query layer from entries.jsonl",
	Long: `Rebuild the SQLite query database from the JSONL source file.

Use this after pulling changes from git or if the database becomes corrupted.`,
	RunE: runRebuild,
}

// RebuildResult is the response for the rebuild command.
type RebuildResult struct {
	Status  string `json:"status"`
	Entries int    `json:"entries"`
}

func runRebuild(cmd *cobra.Command, args []string) error {
	root := mustFindLibrary()
	db := mustOpenDatabase(root)
	defer db.Close()

	count, err := rebuildIndex(db, config.EntriesPath(root))
	if err != nil {
		exitWithError(ExitDataError, "rebuilding database: %v", err)
	}

	if humanOutput {
		fmt.Printf("Rebuilt query database with %d entries\n", count)
	} else {
		outputJSON(RebuildResult{Status: "rebuilt", Entries: count})
	}
	return nil
}

// rebuildIndex reloads db from the JSONL file at path and checks that every
// entry made it into the index.
func rebuildIndex(db *storage.DB, path string) (int, error) {
	count, err := db.RebuildFromJSONL(path)
	if err != nil {
		return 0, err
	}
	indexed, err := db.Count()
	if err != nil {
		return 0, fmt.Errorf("counting indexed entries: %w", err)
	}
	if indexed != count {
		return 0, fmt.Errorf("database holds %d entries after rebuild, expected %d", indexed, count)
	}
	return count, nil
}
