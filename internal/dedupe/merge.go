package dedupe

import (
	"fmt"

	"github.com/matsen/bibclique/internal/reference"
)

// MergeClique builds the entry that would replace the checked members of c.
// Chosen values decide conflicting fields; several chosen values of one
// field are concatenated without repeating rendered text. Id, type and
// remaining fields are filled from the checked members in order, never
// overwriting what is already set. The second result is false if no member
// is checked.
func MergeClique(c *Clique) (*reference.Entry, bool) {
	merged := reference.NewEntry("", "")

	for _, field := range c.FieldNames() {
		chosen := c.Chosen(field)
		switch field {
		case FieldID:
			if len(chosen) > 0 {
				merged.ID = chosen[0].Text()
			}
		case FieldType:
			if len(chosen) > 0 {
				merged.Type = chosen[0].Text()
			}
		default:
			if v := unionValues(chosen); !v.IsEmpty() {
				merged.Set(field, v)
			}
		}
	}

	checked := c.CheckedEntries()
	for _, e := range checked {
		if merged.ID == "" {
			merged.ID = e.ID
		}
		if merged.Type == "" {
			merged.Type = e.Type
		}
		for _, f := range e.Fields() {
			if !merged.Contains(f.Key) {
				merged.Set(f.Key, f.Value)
			}
		}
	}
	return merged, len(checked) > 0
}

func unionValues(values []reference.Value) reference.Value {
	var out reference.Value
	seen := make(map[string]bool)
	for _, v := range values {
		for _, item := range v {
			text := reference.ItemText(item)
			if seen[text] {
				continue
			}
			seen[text] = true
			out = append(out, item)
		}
	}
	return out
}

// MergeDuplicates replaces the checked members of each clique in file with
// one merged entry, appended at the end of the file. Cliques without
// checked members leave the file untouched. It returns the number of
// merged entries added.
func MergeDuplicates(cliques []*Clique, file *reference.File) (int, error) {
	merged := 0
	for i, c := range cliques {
		if c.file != file {
			return merged, fmt.Errorf("clique %d belongs to a different file", i)
		}
		entry, ok := MergeClique(c)
		if !ok {
			continue
		}
		for _, m := range c.members {
			if m.Checked {
				file.Remove(m.Handle)
			}
		}
		file.Append(entry)
		merged++
	}
	return merged, nil
}
