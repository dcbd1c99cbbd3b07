package reference

import (
	"regexp"
	"strings"
)

// ReplaceMode selects how Replace matches the text to be substituted.
type ReplaceMode int

const (
	// CompleteMatch replaces a component only if it equals the search text.
	CompleteMatch ReplaceMode = iota
	// AnySubstring replaces every occurrence of the search text.
	AnySubstring
)

// Item is one fragment of a field value. The set of implementations is
// closed: *PlainText, *Person, *Keyword, *MacroKey and *VerbatimText.
type Item interface {
	// Replace substitutes before with after in the item's text components.
	Replace(before, after string, mode ReplaceMode)
	// ContainsPattern reports whether any text component contains pattern.
	ContainsPattern(pattern string, caseSensitive bool) bool
	// Equal reports whether other is the same variant with the same content.
	Equal(other Item) bool

	item()
}

// PlainText is ordinary field text.
type PlainText struct {
	Text string
}

// Person is a name from a person list such as author or editor.
type Person struct {
	FirstName string
	LastName  string
	Suffix    string
}

// Keyword is one element of a keyword list.
type Keyword struct {
	Text string
}

// MacroKey references a @string macro by name.
type MacroKey struct {
	Text string
}

// VerbatimText is text that must not be interpreted, such as URLs or file
// paths. It may carry a trailing comment.
type VerbatimText struct {
	Text       string
	Comment    string
	HasComment bool
}

func (*PlainText) item()    {}
func (*Person) item()       {}
func (*Keyword) item()      {}
func (*MacroKey) item()     {}
func (*VerbatimText) item() {}

func replaceText(text, before, after string, mode ReplaceMode) string {
	switch mode {
	case CompleteMatch:
		if text == before {
			return after
		}
		return text
	case AnySubstring:
		if before == "" {
			return text
		}
		return strings.ReplaceAll(text, before, after)
	}
	return text
}

func containsText(text, pattern string, caseSensitive bool) bool {
	if caseSensitive {
		return strings.Contains(text, pattern)
	}
	return strings.Contains(strings.ToLower(text), strings.ToLower(pattern))
}

func (p *PlainText) Replace(before, after string, mode ReplaceMode) {
	p.Text = replaceText(p.Text, before, after, mode)
}

func (p *PlainText) ContainsPattern(pattern string, caseSensitive bool) bool {
	return containsText(p.Text, pattern, caseSensitive)
}

func (p *PlainText) Equal(other Item) bool {
	o, ok := other.(*PlainText)
	return ok && o.Text == p.Text
}

func (p *Person) Replace(before, after string, mode ReplaceMode) {
	p.FirstName = replaceText(p.FirstName, before, after, mode)
	p.LastName = replaceText(p.LastName, before, after, mode)
	p.Suffix = replaceText(p.Suffix, before, after, mode)
}

// ContainsPattern also tests the "First Last" and "Last, First" spellings so
// that a pattern spanning both name parts still matches.
func (p *Person) ContainsPattern(pattern string, caseSensitive bool) bool {
	candidates := []string{
		p.FirstName,
		p.LastName,
		p.Suffix,
		strings.TrimSpace(p.FirstName + " " + p.LastName),
		p.LastName + ", " + p.FirstName,
	}
	for _, c := range candidates {
		if containsText(c, pattern, caseSensitive) {
			return true
		}
	}
	return false
}

func (p *Person) Equal(other Item) bool {
	o, ok := other.(*Person)
	return ok && o.FirstName == p.FirstName && o.LastName == p.LastName && o.Suffix == p.Suffix
}

func (k *Keyword) Replace(before, after string, mode ReplaceMode) {
	k.Text = replaceText(k.Text, before, after, mode)
}

func (k *Keyword) ContainsPattern(pattern string, caseSensitive bool) bool {
	return containsText(k.Text, pattern, caseSensitive)
}

func (k *Keyword) Equal(other Item) bool {
	o, ok := other.(*Keyword)
	return ok && o.Text == k.Text
}

var validMacroKey = regexp.MustCompile(`(?i)^([a-z][-.:/+_a-z0-9]*|[0-9]+)$`)

// IsValid reports whether the key could be written unquoted in a BibTeX file.
func (m *MacroKey) IsValid() bool {
	return validMacroKey.MatchString(m.Text)
}

func (m *MacroKey) Replace(before, after string, mode ReplaceMode) {
	m.Text = replaceText(m.Text, before, after, mode)
}

func (m *MacroKey) ContainsPattern(pattern string, caseSensitive bool) bool {
	return containsText(m.Text, pattern, caseSensitive)
}

func (m *MacroKey) Equal(other Item) bool {
	o, ok := other.(*MacroKey)
	return ok && o.Text == m.Text
}

func (v *VerbatimText) Replace(before, after string, mode ReplaceMode) {
	v.Text = replaceText(v.Text, before, after, mode)
}

func (v *VerbatimText) ContainsPattern(pattern string, caseSensitive bool) bool {
	if containsText(v.Text, pattern, caseSensitive) {
		return true
	}
	return v.HasComment && containsText(v.Comment, pattern, caseSensitive)
}

func (v *VerbatimText) Equal(other Item) bool {
	o, ok := other.(*VerbatimText)
	return ok && o.Text == v.Text && o.HasComment == v.HasComment && o.Comment == v.Comment
}

// CloneItem returns a deep copy of item.
func CloneItem(item Item) Item {
	switch it := item.(type) {
	case *PlainText:
		c := *it
		return &c
	case *Person:
		c := *it
		return &c
	case *Keyword:
		c := *it
		return &c
	case *MacroKey:
		c := *it
		return &c
	case *VerbatimText:
		c := *it
		return &c
	}
	return nil
}
