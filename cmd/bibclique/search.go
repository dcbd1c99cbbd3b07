package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/bibclique/internal/author"
	"github.com/matsen/bibclique/internal/reference"
)

var searchLimit int

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", DefaultSearchLimit, "Maximum results to return")
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search entries by keyword",
	Long: `Search entries by keyword using the query database.

Query Syntax:
  Plain text      - Searches id, title, authors, keywords and year
  author:name     - Search author and editor names only ("Yu",
                    "Timothy Yu" or "Yu, Timothy")
  title:text      - Search title only
  keywords:text   - Search keywords only
  year:2020       - Search year only

Run 'bibclique rebuild' first if entries.jsonl was edited by hand.

Examples:
  bibclique search "phylogenetics"
  bibclique search "author:Matsen"
  bibclique search "title:influenza"`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

var searchFields = []string{"author", "title", "keywords", "year"}

// splitFieldQuery separates a "field:value" prefix from query.
func splitFieldQuery(query string) (field, value string) {
	for _, f := range searchFields {
		if v, ok := strings.CutPrefix(query, f+":"); ok {
			return f, v
		}
	}
	return "", query
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.TrimSpace(args[0])
	if query == "" {
		exitWithError(ExitError, "empty search query")
	}

	root := mustFindLibrary()
	cfg := mustLoadConfig(root)
	db := mustOpenDatabase(root)
	defer db.Close()

	var entries []*reference.Entry
	var err error
	if field, value := splitFieldQuery(query); field != "" {
		q := author.ParseQuery(value)
		if field == "author" && !q.IsEmpty() {
			// FTS matches name tokens anywhere; narrow to whole last names.
			entries, err = db.SearchField(field, q.Last, searchLimit)
			entries = author.Filter(entries, q)
		} else {
			entries, err = db.SearchField(field, value, searchLimit)
		}
	} else {
		entries, err = db.Search(query, searchLimit)
	}
	if err != nil {
		exitWithError(ExitError, "searching: %v", err)
	}

	renderer := cfg.Renderer()
	if humanOutput {
		if len(entries) == 0 {
			fmt.Println("No entries found")
			return nil
		}
		fmt.Printf("Found %d entries:\n\n", len(entries))
		for i, e := range entries {
			printEntrySummary(i+1, e, renderer)
		}
	} else {
		outputJSON(newEntryViews(entries, renderer))
	}
	return nil
}
