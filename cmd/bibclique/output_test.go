package main

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matsen/bibclique/internal/reference"
)

func TestTruncateString(t *testing.T) {
	tests := []struct {
		input  string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is far too long", 10, "this is..."},
	}

	for _, tt := range tests {
		if got := truncateString(tt.input, tt.maxLen); got != tt.want {
			t.Errorf("truncateString(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
		}
	}
}

func TestWrapText(t *testing.T) {
	got := wrapText("one two three four five", 9, "  ")
	want := "one two\n  three\n  four five"
	if got != want {
		t.Errorf("wrapText() = %q, want %q", got, want)
	}
}

func TestNewEntryView(t *testing.T) {
	e := reference.NewEntry("article", "doe99")
	e.Set(reference.FieldAuthor, reference.Value{
		&reference.Person{FirstName: "John", LastName: "Doe"},
		&reference.Person{FirstName: "Jane", LastName: "Roe"},
	})
	e.Set(reference.FieldKeywords, reference.Value{
		&reference.Keyword{Text: "a"},
		&reference.Keyword{Text: "b"},
	})

	r := reference.Renderer{PersonNameFormat: reference.PersonNameFormatFirstLast}
	want := EntryView{
		ID:   "doe99",
		Type: "article",
		Fields: []FieldView{
			{Key: "author", Value: "John Doe and Jane Roe"},
			{Key: "keywords", Value: "a; b"},
		},
	}
	if diff := cmp.Diff(want, newEntryView(e, r)); diff != "" {
		t.Errorf("newEntryView() mismatch (-want +got):\n%s", diff)
	}
}

func TestSplitFieldQuery(t *testing.T) {
	tests := []struct {
		query     string
		wantField string
		wantValue string
	}{
		{"phylogenetics", "", "phylogenetics"},
		{"author:Matsen", "author", "Matsen"},
		{"title:influenza virus", "title", "influenza virus"},
		{"keywords:ml", "keywords", "ml"},
		{"year:2020", "year", "2020"},
		{"abstract:x", "", "abstract:x"},
	}

	for _, tt := range tests {
		field, value := splitFieldQuery(tt.query)
		if field != tt.wantField || value != tt.wantValue {
			t.Errorf("splitFieldQuery(%q) = (%q, %q), want (%q, %q)",
				tt.query, field, value, tt.wantField, tt.wantValue)
		}
	}
}
