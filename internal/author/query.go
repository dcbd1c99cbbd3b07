// Package author provides author name parsing and matching for search queries.
package author

import (
	"strings"

	"github.com/matsen/bibclique/internal/reference"
)

// Query represents a parsed author search query.
type Query struct {
	First string // First name (may be empty for last-name-only queries)
	Last  string // Last name (required)
}

// ParseQuery parses an author search string into a structured Query.
//
// Supported formats:
//   - "Yu"           → last="Yu" (single word = last name only)
//   - "Timothy Yu"   → first="Timothy", last="Yu" (space-separated = First Last)
//   - "Yu, Timothy"  → first="Timothy", last="Yu" (comma = Last, First)
//
// Names are trimmed but case is preserved (matching is case-insensitive).
func ParseQuery(input string) Query {
	input = strings.TrimSpace(input)
	if input == "" {
		return Query{}
	}

	if idx := strings.Index(input, ","); idx > 0 {
		last := strings.TrimSpace(input[:idx])
		first := strings.TrimSpace(input[idx+1:])
		return Query{First: first, Last: last}
	}

	parts := strings.Fields(input)
	if len(parts) == 1 {
		return Query{Last: parts[0]}
	}

	// "Timothy C Yu" → first="Timothy C", last="Yu"
	last := parts[len(parts)-1]
	first := strings.Join(parts[:len(parts)-1], " ")
	return Query{First: first, Last: last}
}

// IsEmpty reports whether the query has no last name to match.
func (q Query) IsEmpty() bool {
	return q.Last == ""
}

// Matches checks if the query matches a person.
//
// Matching rules:
//   - Last name: case-insensitive match of the whole last name or of its
//     final word, so "Beethoven" matches "van Beethoven" (required)
//   - First name: case-insensitive prefix match (if query has first name)
//
// This enables "Tim Yu" to match "Timothy C Yu" while preventing
// "Yu" from matching "Yujia".
func (q Query) Matches(p *reference.Person) bool {
	if lastNameMatches(q.Last, p.LastName) && firstNameMatches(q.First, p.FirstName) {
		return true
	}

	// "Ludwig van Beethoven" parses as first="Ludwig van"; the particle
	// belongs to the last name.
	if q.First == "" || len(strings.Fields(p.LastName)) < 2 {
		return false
	}
	full := strings.ToLower(q.First + " " + q.Last)
	suffix := " " + strings.ToLower(p.LastName)
	if !strings.HasSuffix(full, suffix) {
		return false
	}
	return firstNameMatches(strings.TrimSuffix(full, suffix), p.FirstName)
}

func firstNameMatches(query, first string) bool {
	if query == "" {
		return true
	}
	return strings.HasPrefix(strings.ToLower(first), strings.ToLower(query))
}

func lastNameMatches(query, last string) bool {
	if query == "" {
		return false
	}
	if strings.EqualFold(query, last) {
		return true
	}
	words := strings.Fields(last)
	return len(words) > 1 && strings.EqualFold(query, words[len(words)-1])
}

// MatchesAny checks if the query matches any person in the value.
func (q Query) MatchesAny(v reference.Value) bool {
	for _, item := range v {
		if p, ok := item.(*reference.Person); ok && q.Matches(p) {
			return true
		}
	}
	return false
}

// MatchesEntry checks if the query matches an author or, failing that, an
// editor of the entry.
func (q Query) MatchesEntry(e *reference.Entry) bool {
	return q.MatchesAny(e.Value(reference.FieldAuthor)) || q.MatchesAny(e.Value(reference.FieldEditor))
}

// AllMatch checks if all queries match the entry.
// This implements AND logic for multiple author filters.
func AllMatch(queries []Query, e *reference.Entry) bool {
	for _, q := range queries {
		if !q.MatchesEntry(e) {
			return false
		}
	}
	return true
}

// Filter returns the entries matched by every query, in order.
func Filter(entries []*reference.Entry, queries ...Query) []*reference.Entry {
	var out []*reference.Entry
	for _, e := range entries {
		if AllMatch(queries, e) {
			out = append(out, e)
		}
	}
	return out
}
