// Package main provides the bibclique CLI entry point.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/matsen/bibclique/internal/config"
	"github.com/matsen/bibclique/internal/reference"
	"github.com/matsen/bibclique/internal/storage"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// humanOutput controls whether to use human-readable output
	humanOutput bool
	verbose     bool

	logger = zap.NewNop()
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Error: loading .env: %s\n", err)
		os.Exit(ExitConfigError)
	}

	if err := rootCmd.Execute(); err != nil {
		// Print the error since we have SilenceErrors: true
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "bibclique",
	Short: "Find and merge duplicate bibliography entries",
	Long: `bibclique finds groups of likely duplicate bibliography entries and
merges them field by field.

Entries live in git-versionable JSONL (.bibclique/entries.jsonl) with an
ephemeral SQLite database for searching. All commands output JSON by
default; use --human for readable text.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := newLogger(verbose)
		if err != nil {
			return fmt.Errorf("creating logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")
	rootCmd.Version = Version
}

// getStartingDirectory returns the directory to start searching for a library.
// BIBCLIQUE_ROOT takes precedence over the current working directory.
func getStartingDirectory() (string, int) {
	if root := os.Getenv("BIBCLIQUE_ROOT"); root != "" {
		return root, 0
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", outputError(ExitError, "getting current directory: %v", err)
	}
	return cwd, 0
}

// mustFindLibrary finds the library root, exits on error.
func mustFindLibrary() string {
	start, exitCode := getStartingDirectory()
	if exitCode != 0 {
		os.Exit(exitCode)
	}

	root, err := config.ResolveLibrary(start)
	if err != nil {
		if errors.Is(err, config.ErrNotLibrary) && humanOutput {
			fmt.Fprintln(os.Stderr, config.HelpfulConfigMessage())
			os.Exit(ExitConfigError)
		}
		exitWithError(ExitConfigError, "%v", err)
	}
	logger.Debug("using library", zap.String("root", root))
	return root
}

// mustOpenDatabase opens the SQLite database, exits on error.
// The caller is responsible for calling Close() on the returned DB.
func mustOpenDatabase(root string) *storage.DB {
	if err := os.MkdirAll(config.CachePath(root), 0755); err != nil {
		exitWithError(ExitError, "creating cache directory: %v", err)
	}
	db, err := storage.OpenDB(config.DBPath(root))
	if err != nil {
		exitWithError(ExitError, "opening database: %v", err)
	}
	return db
}

// mustLoadConfig loads configuration, exits on error.
func mustLoadConfig(root string) *config.Config {
	cfg, err := config.Load(root)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	return cfg
}

// mustReadFile loads entries.jsonl, exits on error.
func mustReadFile(root string) *reference.File {
	file, err := storage.ReadFile(config.EntriesPath(root))
	if err != nil {
		exitWithError(ExitDataError, "reading entries: %v", err)
	}
	logger.Debug("loaded entries", zap.Int("elements", file.Len()))
	return file
}

// mustWriteFile saves file to entries.jsonl and refreshes the query
// database, exits on error.
func mustWriteFile(root string, file *reference.File) {
	if err := storage.WriteFile(config.EntriesPath(root), file); err != nil {
		exitWithError(ExitDataError, "writing entries: %v", err)
	}

	db := mustOpenDatabase(root)
	defer db.Close()
	if _, err := db.Rebuild(file); err != nil {
		exitWithError(ExitError, "rebuilding database: %v", err)
	}
}
