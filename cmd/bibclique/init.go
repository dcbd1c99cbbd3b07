package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/bibclique/internal/config"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new bibclique library",
	Long: `Initialize a new bibclique library in the current directory.

Creates:
  .bibclique/
  ├── entries.jsonl   # Empty file
  ├── config.yml      # Default config
  └── cache/          # Empty directory (gitignored)`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	root, exitCode := getStartingDirectory()
	if exitCode != 0 {
		os.Exit(exitCode)
	}

	if config.IsLibrary(root) {
		exitWithError(ExitError, "directory already contains a bibclique library")
	}

	if err := os.MkdirAll(config.CachePath(root), 0755); err != nil {
		exitWithError(ExitError, "creating %s directory: %v", config.LibraryDir, err)
	}

	entries, err := os.Create(config.EntriesPath(root))
	if err != nil {
		exitWithError(ExitError, "creating %s: %v", config.EntriesFile, err)
	}
	entries.Close()

	if err := config.Default().Save(root); err != nil {
		exitWithError(ExitError, "creating %s: %v", config.ConfigFile, err)
	}

	if humanOutput {
		fmt.Printf("Initialized bibclique library in %s\n", root)
	} else {
		outputJSON(StatusResponse{Status: "initialized", Path: root})
	}
	return nil
}
