package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/matsen/bibclique/internal/clipboard"
	"github.com/matsen/bibclique/internal/idsuggest"
	"github.com/matsen/bibclique/internal/reference"
)

var (
	idApplyAll    bool
	idApplyFormat string
	idApplyDryRun bool
	idSuggestCopy bool
)

func init() {
	idSuggestCmd.Flags().BoolVar(&idSuggestCopy, "copy", false, "Copy the default-format suggestion to the clipboard")
	idApplyCmd.Flags().BoolVar(&idApplyAll, "all", false, "Rename every entry")
	idApplyCmd.Flags().StringVar(&idApplyFormat, "format", "", "Id format to use (default from config.yml)")
	idApplyCmd.Flags().BoolVar(&idApplyDryRun, "dry-run", false, "Show renames without writing them")

	idCmd.AddCommand(idSuggestCmd)
	idCmd.AddCommand(idApplyCmd)
	idCmd.AddCommand(idDescribeCmd)
	rootCmd.AddCommand(idCmd)
}

var idCmd = &cobra.Command{
	Use:   "id",
	Short: "Suggest and apply entry ids",
	Long: `Suggest and apply entry ids built from id formats.

An id format is a list of tokens separated by "|", for example A2|y or
al|"_|Y|"_|T1. Run 'bibclique id describe <format>' to see what a format
produces.`,
}

var idSuggestCmd = &cobra.Command{
	Use:   "suggest <id>",
	Short: "List the ids every configured format produces for an entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runIDSuggest,
}

var idApplyCmd = &cobra.Command{
	Use:   "apply [id...]",
	Short: "Rename entries using the default id format",
	Long: `Rename entries using the default id format.

Crossref and xdata fields that point at a renamed entry are updated. When
the new id is already taken, a letter suffix (b, c, ...) is appended.

Examples:
  bibclique id apply smith2020 jones99
  bibclique id apply --all --format 'al|Y'`,
	RunE: runIDApply,
}

var idDescribeCmd = &cobra.Command{
	Use:   "describe [format]",
	Short: "Explain an id format token by token",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runIDDescribe,
}

// Rename records one id change.
type Rename struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// IDApplyResult is the response for the id apply command.
type IDApplyResult struct {
	DryRun  bool     `json:"dry_run"`
	Format  string   `json:"format"`
	Renames []Rename `json:"renames"`
}

// FormatDescription is the response for the id describe command.
type FormatDescription struct {
	Format string   `json:"format"`
	Tokens []string `json:"tokens"`
}

// clipboardUnavailableMsg is the error shown when --copy has nothing to copy with.
const clipboardUnavailableMsg = "clipboard unavailable (install wl-copy, xclip or xsel on Linux)"

func runIDSuggest(cmd *cobra.Command, args []string) error {
	if idSuggestCopy && !clipboard.IsAvailable() {
		exitWithError(ExitError, clipboardUnavailableMsg)
	}

	root := mustFindLibrary()
	cfg := mustLoadConfig(root)
	file := mustReadFile(root)

	entry, _, ok := file.EntryByID(args[0])
	if !ok {
		exitWithError(ExitDataError, "entry not found: %s", args[0])
	}

	suggester := cfg.Suggester()
	suggestions := suggester.Suggestions(entry.ResolveCrossref(file))
	if suggestions == nil {
		suggestions = []idsuggest.Suggestion{}
	}

	if idSuggestCopy {
		s, ok := preferredSuggestion(suggestions, suggester.DefaultFormat)
		if !ok {
			exitWithError(ExitDataError, "no suggestion to copy for %s", args[0])
		}
		if err := clipboard.Copy(s.ID); err != nil {
			exitWithError(ExitError, "copying to clipboard: %v", err)
		}
		logger.Debug("copied id suggestion", zap.String("id", s.ID), zap.String("format", s.Format))
	}

	if humanOutput {
		if len(suggestions) == 0 {
			fmt.Println("No suggestions")
		}
		for _, s := range suggestions {
			fmt.Printf("%-24s %s\n", s.ID, s.Format)
		}
	} else {
		outputJSON(suggestions)
	}
	return nil
}

// preferredSuggestion picks the suggestion made by the default format, or
// the first one when the default format produced nothing.
func preferredSuggestion(suggestions []idsuggest.Suggestion, defaultFormat string) (idsuggest.Suggestion, bool) {
	for _, s := range suggestions {
		if s.Format == defaultFormat {
			return s, true
		}
	}
	if len(suggestions) == 0 {
		return idsuggest.Suggestion{}, false
	}
	return suggestions[0], true
}

func runIDApply(cmd *cobra.Command, args []string) error {
	if !idApplyAll && len(args) == 0 {
		return fmt.Errorf("specify entry ids or --all")
	}

	root := mustFindLibrary()
	cfg := mustLoadConfig(root)
	file := mustReadFile(root)

	suggester := cfg.Suggester()
	if idApplyFormat != "" {
		suggester.DefaultFormat = idApplyFormat
	}
	if suggester.DefaultFormat == "" {
		exitWithError(ExitConfigError, "no default id format configured (set default_id_format or pass --format)")
	}

	renames, err := renameEntries(file, args, idApplyAll, suggester)
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}
	if renames == nil {
		renames = []Rename{}
	}

	if !idApplyDryRun && len(renames) > 0 {
		mustWriteFile(root, file)
	}

	if humanOutput {
		if len(renames) == 0 {
			fmt.Println("No entries renamed")
		}
		for _, r := range renames {
			fmt.Printf("%s -> %s\n", r.From, r.To)
		}
	} else {
		outputJSON(IDApplyResult{DryRun: idApplyDryRun, Format: suggester.DefaultFormat, Renames: renames})
	}
	return nil
}

func runIDDescribe(cmd *cobra.Command, args []string) error {
	var formats []string
	if len(args) == 1 {
		formats = args
	} else {
		root := mustFindLibrary()
		formats = mustLoadConfig(root).IDFormats
	}

	descriptions := make([]FormatDescription, 0, len(formats))
	for _, f := range formats {
		tokens := idsuggest.Describe(f)
		if tokens == nil {
			tokens = []string{}
		}
		descriptions = append(descriptions, FormatDescription{Format: f, Tokens: tokens})
	}

	if humanOutput {
		for _, d := range descriptions {
			fmt.Println(d.Format)
			for _, t := range d.Tokens {
				fmt.Printf("  - %s\n", t)
			}
		}
	} else {
		outputJSON(descriptions)
	}
	return nil
}

// renameEntries gives the selected entries the id produced by the
// suggester's default format. Entries whose new id would be empty or
// unchanged are skipped.
func renameEntries(file *reference.File, ids []string, all bool, s idsuggest.Suggester) ([]Rename, error) {
	var targets []*reference.Entry
	if all {
		targets = file.Entries()
	} else {
		for _, id := range ids {
			e, _, ok := file.EntryByID(id)
			if !ok {
				return nil, fmt.Errorf("entry not found: %s", id)
			}
			targets = append(targets, e)
		}
	}

	var renames []Rename
	for _, e := range targets {
		resolved := e.ResolveCrossref(file)
		if !s.ApplyDefault(resolved) || resolved.ID == "" || resolved.ID == e.ID {
			continue
		}
		newID := uniqueID(file, resolved.ID, e)
		if newID == e.ID {
			continue
		}
		renames = append(renames, Rename{From: e.ID, To: newID})
		retargetReferences(file, e.ID, newID)
		e.ID = newID
	}
	return renames, nil
}

// uniqueID returns id, or id with the first free letter suffix if another
// entry or a macro already uses it.
func uniqueID(file *reference.File, id string, self *reference.Entry) string {
	taken := func(candidate string) bool {
		elem := file.ContainsKey(candidate, reference.KindAll)
		return elem != nil && elem != reference.Element(self)
	}
	if !taken(id) {
		return id
	}
	for c := 'b'; c <= 'z'; c++ {
		if candidate := id + string(c); !taken(candidate) {
			return candidate
		}
	}
	for i := 2; ; i++ {
		if candidate := fmt.Sprintf("%s-%d", id, i); !taken(candidate) {
			return candidate
		}
	}
}

// retargetReferences points crossref and xdata fields naming from at to.
func retargetReferences(file *reference.File, from, to string) {
	for _, e := range file.Entries() {
		for _, key := range []string{reference.FieldCrossRef, reference.FieldXData} {
			if e.Contains(key) && reference.Text(e.Value(key)) == from {
				e.Set(key, reference.NewValue(&reference.PlainText{Text: to}))
			}
		}
	}
}
