package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/matsen/bibclique/internal/reference"
)

// Constants for output formatting.
const (
	DefaultSearchLimit = 50 // Default limit for search commands

	SummaryTitleMaxLen = 70 // Title length in search summaries
	TextWrapWidth      = 60 // Wrap width for field values in detail views
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError writes an error message to stderr and returns the exit code.
func outputError(code int, format string, args ...interface{}) int {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	return code
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse is a generic response for commands that return status.
type StatusResponse struct {
	Status string `json:"status"`
	Path   string `json:"path,omitempty"`
}

// FieldView is one field of an entry rendered as plain text.
type FieldView struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// EntryView is the JSON shape of an entry.
type EntryView struct {
	ID     string      `json:"id"`
	Type   string      `json:"type"`
	Fields []FieldView `json:"fields"`
}

func newEntryView(e *reference.Entry, r reference.Renderer) EntryView {
	view := EntryView{ID: e.ID, Type: e.Type, Fields: []FieldView{}}
	for _, f := range e.Fields() {
		view.Fields = append(view.Fields, FieldView{Key: f.Key, Value: r.Text(f.Value)})
	}
	return view
}

func newEntryViews(entries []*reference.Entry, r reference.Renderer) []EntryView {
	views := make([]EntryView, 0, len(entries))
	for _, e := range entries {
		views = append(views, newEntryView(e, r))
	}
	return views
}

func printEntryDetail(view EntryView) {
	fmt.Printf("%s (%s)\n", view.ID, view.Type)
	fmt.Println(strings.Repeat("=", 70))

	width := 0
	for _, f := range view.Fields {
		if len(f.Key) > width {
			width = len(f.Key)
		}
	}
	indent := strings.Repeat(" ", width+3)
	for _, f := range view.Fields {
		fmt.Printf("%-*s  %s\n", width+1, f.Key+":", wrapText(f.Value, TextWrapWidth, indent))
	}
}

func printEntrySummary(num int, e *reference.Entry, r reference.Renderer) {
	fmt.Printf("[%d] %s\n", num, e.ID)
	if title := r.Text(e.Value(reference.FieldTitle)); title != "" {
		fmt.Printf("    %s\n", truncateString(title, SummaryTitleMaxLen))
	}
	if names := e.AuthorsLastNames(); len(names) > 0 {
		if len(names) > 3 {
			names = append(names[:3:3], "et al.")
		}
		fmt.Printf("    %s\n", strings.Join(names, ", "))
	}
	if year := r.Text(e.Value(reference.FieldYear)); year != "" {
		fmt.Printf("    (%s)\n", year)
	}
	fmt.Println()
}

// truncateString truncates a string to maxLen, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// wrapText wraps text to the specified width with indentation on subsequent lines.
func wrapText(text string, width int, indent string) string {
	if len(text) <= width {
		return text
	}

	var lines []string
	var currentLine strings.Builder

	for _, word := range strings.Fields(text) {
		if currentLine.Len() == 0 {
			currentLine.WriteString(word)
		} else if currentLine.Len()+1+len(word) <= width {
			currentLine.WriteString(" ")
			currentLine.WriteString(word)
		} else {
			lines = append(lines, currentLine.String())
			currentLine.Reset()
			currentLine.WriteString(word)
		}
	}
	if currentLine.Len() > 0 {
		lines = append(lines, currentLine.String())
	}

	return strings.Join(lines, "\n"+indent)
}
