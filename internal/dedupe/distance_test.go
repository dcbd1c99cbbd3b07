package dedupe

import (
	"math"
	"testing"

	"github.com/matsen/bibclique/internal/reference"
)

func newEntry(id, title, author, year string) *reference.Entry {
	e := reference.NewEntry("article", id)
	if title != "" {
		e.Set(reference.FieldTitle, reference.NewValue(&reference.PlainText{Text: title}))
	}
	if author != "" {
		e.Set(reference.FieldAuthor, reference.NewValue(&reference.PlainText{Text: author}))
	}
	if year != "" {
		e.Set(reference.FieldYear, reference.NewValue(&reference.PlainText{Text: year}))
	}
	return e
}

func TestLevenshteinWord(t *testing.T) {
	tests := []struct {
		s, t string
		want float64
	}{
		{"", "", 0},
		{"abc", "", 1},
		{"", "abc", 1},
		{"Graph", "graph", 0},
		{"kitten", "sitting", 3.0 / 7.0},
		{"abc", "xyz", 1},
		{"Müller", "muller", 1.0 / 6.0},
	}

	for _, tt := range tests {
		t.Run(tt.s+"/"+tt.t, func(t *testing.T) {
			got := LevenshteinWord(tt.s, tt.t)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("LevenshteinWord(%q, %q) = %v, want %v", tt.s, tt.t, got, tt.want)
			}
		})
	}
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		name string
		s, t string
		want float64
	}{
		{"both empty", "", "", 0},
		{"one empty", "", "Graph Theory", 1},
		{"no words counts as empty", "1234", "Graph", 1},
		{"case and punctuation ignored", "Graph-Theory!", "graph theory", 0},
		{"one word substituted", "a b", "a c", 0.5},
		{"plural", "Deep Learning for Protein Structure", "Deep learning for protein structures", 0.002},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Levenshtein(tt.s, tt.t)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Levenshtein(%q, %q) = %v, want %v", tt.s, tt.t, got, tt.want)
			}
		})
	}
}

func TestEntryDistance(t *testing.T) {
	base := newEntry("a", "Deep Learning for Protein Structure", "Doe, John", "2020")

	tests := []struct {
		name  string
		other *reference.Entry
		want  int
	}{
		{"identical", newEntry("b", "Deep Learning for Protein Structure", "Doe, John", "2020"), 0},
		{"plural title", newEntry("b", "Deep learning for protein structures", "Doe, John", "2020"), 12},
		{"two years apart", newEntry("b", "Deep Learning for Protein Structure", "Doe, John", "2022"), 40},
		{"years far apart capped", newEntry("b", "Deep Learning for Protein Structure", "Doe, John", "1999"), 1000},
		{"missing year", newEntry("b", "Deep Learning for Protein Structure", "Doe, John", ""), 100000},
		{"non-numeric year", newEntry("b", "Deep Learning for Protein Structure", "Doe, John", "in press"), 100000},
		{"different paper", newEntry("b", "Statistical Methods in Genomics", "Brown, Bob", "2018"), 6540},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EntryDistance(base, tt.other); got != tt.want {
				t.Errorf("EntryDistance() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestEntryDistanceMissingYearOnBothSides(t *testing.T) {
	a := newEntry("a", "Same Title", "Same Author", "")
	b := newEntry("b", "Same Title", "Same Author", "")
	if got := EntryDistance(a, b); got < 100*MaxDistance/10 {
		t.Errorf("EntryDistance() = %d, want the year penalty to dominate", got)
	}
}

func TestEntryDistanceSymmetric(t *testing.T) {
	entries := []*reference.Entry{
		newEntry("1", "Deep Learning for Protein Structure", "Doe, John", "2020"),
		newEntry("2", "Deep learning for protein structures", "Doe, J.", "2021"),
		newEntry("3", "Statistical Methods in Genomics", "Brown, Bob and White, Carol", "2018"),
		newEntry("4", "Methods for Statistical Genomics", "White, Carol", "2017"),
		newEntry("5", "", "Anonymous", "1900"),
		newEntry("6", "Protein Structure", "", "n.d."),
	}

	for _, a := range entries {
		for _, b := range entries {
			if ab, ba := EntryDistance(a, b), EntryDistance(b, a); ab != ba {
				t.Errorf("EntryDistance(%s, %s) = %d but reverse = %d", a.ID, b.ID, ab, ba)
			}
		}
	}
}
