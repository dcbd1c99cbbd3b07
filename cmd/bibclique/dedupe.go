package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/matsen/bibclique/internal/dedupe"
	"github.com/matsen/bibclique/internal/reference"
)

var (
	dedupeDryRun      bool
	dedupeMerge       bool
	dedupeSensitivity int
	dedupeUnion       []string
	dedupeUncheck     []string
)

func init() {
	dedupeCmd.Flags().BoolVar(&dedupeDryRun, "dry-run", false, "Show duplicate cliques without making changes")
	dedupeCmd.Flags().BoolVar(&dedupeMerge, "merge", false, "Replace each clique by one merged entry")
	dedupeCmd.Flags().IntVar(&dedupeSensitivity, "sensitivity", 0, "Distance threshold (default from config.yml)")
	dedupeCmd.Flags().StringSliceVar(&dedupeUnion, "union", nil, "Fields whose alternatives are all kept (default from config.yml)")
	dedupeCmd.Flags().StringSliceVar(&dedupeUncheck, "uncheck", nil, "Entry ids to leave out of merges")
	rootCmd.AddCommand(dedupeCmd)
}

var dedupeCmd = &cobra.Command{
	Use:   "dedupe",
	Short: "Find and merge duplicate entries",
	Long: `Find groups (cliques) of entries that are probably duplicates and
optionally merge each group into a single entry.

Entries are compared by title, authors and year. Lower --sensitivity finds
fewer, closer duplicates. For fields where the members disagree the first
alternative is kept, except for --union fields, where all alternatives are
combined.

Examples:
  bibclique dedupe --dry-run                      # Show cliques and conflicts
  bibclique dedupe --dry-run --sensitivity 1000   # Only near-identical entries
  bibclique dedupe --merge --union keywords,url   # Merge, keeping all keywords and urls
  bibclique dedupe --merge --uncheck smith2020b   # Merge, but keep smith2020b separate`,
	RunE: runDedupe,
}

// MemberReport describes one member of a clique.
type MemberReport struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Checked bool   `json:"checked"`
}

// ConflictReport describes a field on which the checked members disagree.
type ConflictReport struct {
	Field        string   `json:"field"`
	Alternatives []string `json:"alternatives"`
	Chosen       []string `json:"chosen"`
}

// CliqueReport describes one clique and the entry it would merge into.
type CliqueReport struct {
	Members   []MemberReport   `json:"members"`
	Conflicts []ConflictReport `json:"conflicts"`
	Merged    *EntryView       `json:"merged,omitempty"`
}

// DedupeResult represents the result of a dedupe operation.
type DedupeResult struct {
	DryRun      bool           `json:"dry_run"`
	Sensitivity int            `json:"sensitivity"`
	Cliques     []CliqueReport `json:"cliques"`
	Merged      int            `json:"merged,omitempty"`
}

func runDedupe(cmd *cobra.Command, args []string) error {
	if dedupeDryRun == dedupeMerge {
		return fmt.Errorf("must specify either --dry-run or --merge")
	}

	root := mustFindLibrary()
	cfg := mustLoadConfig(root)
	file := mustReadFile(root)
	renderer := cfg.Renderer()

	sensitivity := cfg.Sensitivity
	if cmd.Flags().Changed("sensitivity") {
		sensitivity = dedupeSensitivity
	}
	if sensitivity < 0 {
		exitWithError(ExitError, "invalid sensitivity: %d", sensitivity)
	}
	union := cfg.UnionFields
	if cmd.Flags().Changed("union") {
		union = dedupeUnion
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	finder := &dedupe.Finder{
		Sensitivity: sensitivity,
		Progress:    progressLogger(logger),
		Logger:      logger,
	}
	cliques, err := finder.FindDuplicates(ctx, file)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			exitWithError(ExitCancelled, "cancelled")
		}
		exitWithError(ExitError, "finding duplicates: %v", err)
	}

	applyCliqueOptions(file, cliques, dedupeUncheck, union)

	result := DedupeResult{
		DryRun:      dedupeDryRun,
		Sensitivity: sensitivity,
		Cliques:     make([]CliqueReport, 0, len(cliques)),
	}
	for _, c := range cliques {
		result.Cliques = append(result.Cliques, buildCliqueReport(file, c, renderer))
	}

	if dedupeMerge && len(cliques) > 0 {
		n, err := dedupe.MergeDuplicates(cliques, file)
		if err != nil {
			exitWithError(ExitError, "merging duplicates: %v", err)
		}
		mustWriteFile(root, file)
		result.Merged = n
		logger.Info("merged duplicates", zap.Int("cliques", len(cliques)), zap.Int("merged", n))
	}

	if humanOutput {
		printDedupeHuman(result)
	} else {
		outputJSON(result)
	}
	return nil
}

// progressLogger logs clustering progress in steps of ten percent.
func progressLogger(l *zap.Logger) dedupe.ProgressFunc {
	lastStep := -1
	return func(current, max int) {
		if max == 0 {
			return
		}
		step := current * 10 / max
		if step == lastStep {
			return
		}
		lastStep = step
		l.Info("comparing entries", zap.Int("done", current), zap.Int("total", max))
	}
}

// applyCliqueOptions unchecks members whose id is listed in uncheck and
// chooses every alternative of the union fields.
func applyCliqueOptions(file *reference.File, cliques []*dedupe.Clique, uncheck, union []string) {
	skip := make(map[string]bool, len(uncheck))
	for _, id := range uncheck {
		skip[id] = true
	}

	for _, c := range cliques {
		for _, m := range c.Members() {
			if e, ok := file.Entry(m.Handle); ok && skip[e.ID] {
				c.SetChecked(m.Handle, false)
			}
		}
		for _, field := range union {
			field = strings.ToLower(strings.TrimSpace(field))
			for _, alt := range c.Alternatives(field) {
				c.SetChosenValue(field, alt, dedupe.AddValue)
			}
		}
	}
}

func buildCliqueReport(file *reference.File, c *dedupe.Clique, r reference.Renderer) CliqueReport {
	report := CliqueReport{
		Members:   []MemberReport{},
		Conflicts: []ConflictReport{},
	}
	for _, m := range c.Members() {
		e, ok := file.Entry(m.Handle)
		if !ok {
			continue
		}
		report.Members = append(report.Members, MemberReport{ID: e.ID, Type: e.Type, Checked: m.Checked})
	}
	for _, field := range c.FieldNames() {
		report.Conflicts = append(report.Conflicts, ConflictReport{
			Field:        field,
			Alternatives: valueTexts(c.Alternatives(field), r),
			Chosen:       valueTexts(c.Chosen(field), r),
		})
	}
	if merged, ok := dedupe.MergeClique(c); ok {
		view := newEntryView(merged, r)
		report.Merged = &view
	}
	return report
}

func valueTexts(values []reference.Value, r reference.Renderer) []string {
	texts := make([]string, 0, len(values))
	for _, v := range values {
		texts = append(texts, r.Text(v))
	}
	return texts
}

func printDedupeHuman(result DedupeResult) {
	if len(result.Cliques) == 0 {
		fmt.Println("No duplicates found.")
		return
	}

	fmt.Printf("Found %d cliques (sensitivity %d):\n\n", len(result.Cliques), result.Sensitivity)
	for i, c := range result.Cliques {
		var ids []string
		for _, m := range c.Members {
			id := m.ID
			if !m.Checked {
				id += " (unchecked)"
			}
			ids = append(ids, id)
		}
		fmt.Printf("[%d] %s\n", i+1, strings.Join(ids, ", "))
		for _, conflict := range c.Conflicts {
			fmt.Printf("    %s:\n", conflict.Field)
			chosen := make(map[string]bool, len(conflict.Chosen))
			for _, text := range conflict.Chosen {
				chosen[text] = true
			}
			for _, alt := range conflict.Alternatives {
				marker := " "
				if chosen[alt] {
					marker = "*"
				}
				fmt.Printf("      %s %s\n", marker, truncateString(alt, SummaryTitleMaxLen))
			}
		}
		fmt.Println()
	}

	if !result.DryRun {
		fmt.Printf("Merged %d cliques\n", result.Merged)
	}
}
