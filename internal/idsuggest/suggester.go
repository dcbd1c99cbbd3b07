package idsuggest

import "github.com/matsen/bibclique/internal/reference"

// Suggester holds the configured id formats.
type Suggester struct {
	Formats       []string
	DefaultFormat string
}

// Suggestion is the id one format produces for an entry.
type Suggestion struct {
	Format string `json:"format"`
	ID     string `json:"id"`
}

// Suggestions formats entry with every configured format, skipping formats
// that produce an empty id.
func (s Suggester) Suggestions(entry *reference.Entry) []Suggestion {
	var out []Suggestion
	for _, f := range s.Formats {
		if id := FormatID(entry, f); id != "" {
			out = append(out, Suggestion{Format: f, ID: id})
		}
	}
	return out
}

// ApplyDefault sets entry.ID from the default format. It returns false and
// leaves the entry alone if no default format is configured.
func (s Suggester) ApplyDefault(entry *reference.Entry) bool {
	if s.DefaultFormat == "" {
		return false
	}
	entry.ID = FormatID(entry, s.DefaultFormat)
	return true
}
