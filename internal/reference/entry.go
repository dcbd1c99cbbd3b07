// Package reference defines the bibliographic data model: entries, field
// values and the items they are made of, plus the File that owns them.
package reference

import "strings"

// Well-known entry types and field names.
const (
	TypeProceedings   = "proceedings"
	TypeInProceedings = "inproceedings"

	FieldAuthor    = "author"
	FieldBookTitle = "booktitle"
	FieldCrossRef  = "crossref"
	FieldEditor    = "editor"
	FieldJournal   = "journal"
	FieldKeywords  = "keywords"
	FieldMonth     = "month"
	FieldPages     = "pages"
	FieldTitle     = "title"
	FieldURL       = "url"
	FieldVolume    = "volume"
	FieldXData     = "xdata"
	FieldYear      = "year"
)

// Field is one key/value pair of an Entry.
type Field struct {
	Key   string
	Value Value
}

// Entry is one bibliographic record. Field keys are matched
// case-insensitively; the spelling of the first insertion is kept.
type Entry struct {
	Type   string
	ID     string
	fields []Field
}

// NewEntry creates an entry without fields.
func NewEntry(entryType, id string) *Entry {
	return &Entry{Type: entryType, ID: id}
}

func (e *Entry) index(key string) int {
	for i, f := range e.fields {
		if strings.EqualFold(f.Key, key) {
			return i
		}
	}
	return -1
}

// Value returns the value stored under key, or nil.
func (e *Entry) Value(key string) Value {
	if i := e.index(key); i >= 0 {
		return e.fields[i].Value
	}
	return nil
}

// Contains reports whether key is present.
func (e *Entry) Contains(key string) bool {
	return e.index(key) >= 0
}

// Set stores value under key, keeping the existing key spelling if the
// field is already present.
func (e *Entry) Set(key string, value Value) {
	if i := e.index(key); i >= 0 {
		e.fields[i].Value = value
		return
	}
	e.fields = append(e.fields, Field{Key: key, Value: value})
}

// Remove deletes key and reports whether it was present.
func (e *Entry) Remove(key string) bool {
	i := e.index(key)
	if i < 0 {
		return false
	}
	e.fields = append(e.fields[:i], e.fields[i+1:]...)
	return true
}

// Keys returns the field keys in insertion order.
func (e *Entry) Keys() []string {
	keys := make([]string, len(e.fields))
	for i, f := range e.fields {
		keys[i] = f.Key
	}
	return keys
}

// Fields returns the fields in insertion order. The slice is a copy; the
// values are shared.
func (e *Entry) Fields() []Field {
	out := make([]Field, len(e.fields))
	copy(out, e.fields)
	return out
}

// Len returns the number of fields.
func (e *Entry) Len() int {
	return len(e.fields)
}

// Clone returns a deep copy of the entry.
func (e *Entry) Clone() *Entry {
	c := &Entry{Type: e.Type, ID: e.ID, fields: make([]Field, len(e.fields))}
	for i, f := range e.fields {
		c.fields[i] = Field{Key: f.Key, Value: f.Value.Clone()}
	}
	return c
}

// ResolveCrossref returns a copy of e completed with the fields of the
// entries named by its crossref and xdata fields. Fields already present in
// e are never overwritten, except that an inproceedings entry without a
// booktitle takes the title of a referenced proceedings entry.
func (e *Entry) ResolveCrossref(file *File) *Entry {
	result := e.Clone()
	if file == nil {
		return result
	}

	for _, refField := range []string{FieldCrossRef, FieldXData} {
		key := Text(e.Value(refField))
		if key == "" {
			continue
		}
		ref, ok := file.ContainsKey(key, KindEntry).(*Entry)
		if !ok {
			continue
		}
		for _, f := range ref.fields {
			if !result.Contains(f.Key) {
				result.Set(f.Key, f.Value.Clone())
			}
		}
		if strings.EqualFold(ref.Type, TypeProceedings) &&
			strings.EqualFold(result.Type, TypeInProceedings) &&
			ref.Contains(FieldTitle) && !e.Contains(FieldBookTitle) {
			result.Set(FieldBookTitle, ref.Value(FieldTitle).Clone())
		}
	}
	return result
}

// AuthorsLastNames returns the last names of the authors, or of the editors
// if there are no authors.
func (e *Entry) AuthorsLastNames() []string {
	value := e.Value(FieldAuthor)
	if value.IsEmpty() {
		value = e.Value(FieldEditor)
	}
	var names []string
	for _, item := range value {
		if p, ok := item.(*Person); ok && p.LastName != "" {
			names = append(names, p.LastName)
		}
	}
	return names
}

func (*Entry) element() {}
