package dedupe

import (
	"strings"

	"github.com/matsen/bibclique/internal/reference"
)

// Pseudo-fields tracked next to the bibliographic fields of a clique.
const (
	FieldType = "^type"
	FieldID   = "^id"
)

// itemwiseFields are list-like fields whose items are offered as separate
// alternatives rather than as one rendered string.
var itemwiseFields = map[string]bool{
	reference.FieldKeywords: true,
	reference.FieldURL:      true,
}

// ChooseOp selects how SetChosenValue changes a field's chosen values.
type ChooseOp int

const (
	// SetValue makes value the only chosen alternative.
	SetValue ChooseOp = iota
	// AddValue adds value unless an alternative with the same text is chosen.
	AddValue
	// RemoveValue removes the first chosen alternative with the same text.
	RemoveValue
)

// Alternatives lists the distinct values a field takes among the checked
// entries of a clique.
type Alternatives struct {
	Field  string
	Values []reference.Value
}

// FieldAlternatives collects, for every field where the given entries
// disagree, the distinct values they carry. Values are compared by rendered
// text. Field names are lower-cased; the pseudo-fields FieldType and FieldID
// hold entry types and ids. Fields with a single alternative are omitted.
func FieldAlternatives(entries []*reference.Entry) []Alternatives {
	var order []string
	byField := make(map[string][]reference.Value)

	add := func(field string, v reference.Value) {
		text := v.Text()
		if text == "" {
			return
		}
		values, seen := byField[field]
		if !seen {
			order = append(order, field)
		}
		for _, existing := range values {
			if existing.Text() == text {
				return
			}
		}
		byField[field] = append(values, v)
	}

	for _, e := range entries {
		add(FieldType, reference.NewValue(&reference.PlainText{Text: e.Type}))
		add(FieldID, reference.NewValue(&reference.PlainText{Text: e.ID}))
		for _, f := range e.Fields() {
			name := strings.ToLower(f.Key)
			if itemwiseFields[name] {
				for _, item := range f.Value {
					add(name, reference.NewValue(item))
				}
				continue
			}
			add(name, f.Value)
		}
	}

	var out []Alternatives
	for _, field := range order {
		if values := byField[field]; len(values) >= 2 {
			out = append(out, Alternatives{Field: field, Values: values})
		}
	}
	return out
}

// Member is one entry of a clique.
type Member struct {
	Handle  reference.Handle
	Checked bool
}

// Clique is a group of entries judged to be duplicates of each other. It
// refers to entries of a File by handle and does not own them.
type Clique struct {
	file    *reference.File
	members []Member

	alternatives []Alternatives
	chosen       map[string][]reference.Value
}

// NewClique creates an empty clique over entries of file.
func NewClique(file *reference.File) *Clique {
	return &Clique{file: file, chosen: make(map[string][]reference.Value)}
}

// Add appends the entry with handle h. Adding does not recompute conflicts;
// call Recalculate or SetChecked afterwards.
func (c *Clique) Add(h reference.Handle, checked bool) {
	c.members = append(c.members, Member{Handle: h, Checked: checked})
}

// Len returns the number of members.
func (c *Clique) Len() int {
	return len(c.members)
}

// Members returns the members in insertion order.
func (c *Clique) Members() []Member {
	out := make([]Member, len(c.members))
	copy(out, c.members)
	return out
}

// Entries returns the member entries that are still in the file.
func (c *Clique) Entries() []*reference.Entry {
	return c.entries(false)
}

// CheckedEntries returns the checked member entries.
func (c *Clique) CheckedEntries() []*reference.Entry {
	return c.entries(true)
}

func (c *Clique) entries(checkedOnly bool) []*reference.Entry {
	var out []*reference.Entry
	for _, m := range c.members {
		if checkedOnly && !m.Checked {
			continue
		}
		if e, ok := c.file.Entry(m.Handle); ok {
			out = append(out, e)
		}
	}
	return out
}

// IsChecked reports whether the member with handle h is checked.
func (c *Clique) IsChecked(h reference.Handle) bool {
	for _, m := range c.members {
		if m.Handle == h {
			return m.Checked
		}
	}
	return false
}

// SetChecked changes the checked state of the member with handle h and
// recomputes the conflicting fields. Chosen values are reset to defaults.
func (c *Clique) SetChecked(h reference.Handle, checked bool) {
	for i := range c.members {
		if c.members[i].Handle == h {
			c.members[i].Checked = checked
		}
	}
	c.Recalculate()
}

// Recalculate recomputes the conflicting fields from the checked entries
// and seeds each field's chosen values with its first alternative.
func (c *Clique) Recalculate() {
	c.alternatives = FieldAlternatives(c.CheckedEntries())
	c.chosen = make(map[string][]reference.Value, len(c.alternatives))
	for _, alt := range c.alternatives {
		c.chosen[alt.Field] = []reference.Value{alt.Values[0]}
	}
}

// FieldNames returns the conflicting fields in first-seen order.
func (c *Clique) FieldNames() []string {
	names := make([]string, len(c.alternatives))
	for i, alt := range c.alternatives {
		names[i] = alt.Field
	}
	return names
}

// Alternatives returns the distinct values of a conflicting field.
func (c *Clique) Alternatives(field string) []reference.Value {
	for _, alt := range c.alternatives {
		if alt.Field == field {
			return alt.Values
		}
	}
	return nil
}

// Chosen returns the chosen values of a conflicting field.
func (c *Clique) Chosen(field string) []reference.Value {
	return c.chosen[field]
}

// SetChosenValue changes the chosen values of field.
func (c *Clique) SetChosenValue(field string, value reference.Value, op ChooseOp) {
	text := value.Text()
	switch op {
	case SetValue:
		c.chosen[field] = []reference.Value{value}
	case AddValue:
		for _, v := range c.chosen[field] {
			if v.Text() == text {
				return
			}
		}
		c.chosen[field] = append(c.chosen[field], value)
	case RemoveValue:
		values := c.chosen[field]
		for i, v := range values {
			if v.Text() == text {
				c.chosen[field] = append(values[:i:i], values[i+1:]...)
				return
			}
		}
	}
}
