package reference

// Value is the full content of one field: items in BibTeX "#" concatenation
// order.
type Value []Item

// NewValue builds a Value from items.
func NewValue(items ...Item) Value {
	return Value(items)
}

// Text renders the value with DefaultRenderer.
func (v Value) Text() string {
	return DefaultRenderer.Text(v)
}

// IsEmpty reports whether the value has no items.
func (v Value) IsEmpty() bool {
	return len(v) == 0
}

// Replace substitutes before with after in every item and then removes
// items whose rendered text repeats an earlier item.
func (v *Value) Replace(before, after string, mode ReplaceMode) {
	for _, item := range *v {
		item.Replace(before, after, mode)
	}
	v.dedup()
}

// ReplaceItem replaces the whole value with after if its rendered text equals
// beforeText; otherwise each item rendering to beforeText is replaced.
func (v *Value) ReplaceItem(beforeText string, after Item) {
	if v.Text() == beforeText {
		*v = Value{after}
		return
	}
	for i, item := range *v {
		if ItemText(item) == beforeText {
			(*v)[i] = after
		}
	}
	v.dedup()
}

func (v *Value) dedup() {
	seen := make(map[string]bool, len(*v))
	// A fresh slice, so Values sharing the backing array are left intact.
	kept := make(Value, 0, len(*v))
	for _, item := range *v {
		text := ItemText(item)
		if seen[text] {
			continue
		}
		seen[text] = true
		kept = append(kept, item)
	}
	*v = kept
}

// ContainsPattern reports whether any item, or the rendered value as a
// whole, contains pattern.
func (v Value) ContainsPattern(pattern string, caseSensitive bool) bool {
	for _, item := range v {
		if item.ContainsPattern(pattern, caseSensitive) {
			return true
		}
	}
	return len(v) > 1 && containsText(v.Text(), pattern, caseSensitive)
}

// Contains reports whether an item equal to item is present.
func (v Value) Contains(item Item) bool {
	for _, it := range v {
		if it.Equal(item) {
			return true
		}
	}
	return false
}

// Equal compares two values item by item.
func (v Value) Equal(other Value) bool {
	if len(v) != len(other) {
		return false
	}
	for i := range v {
		if !v[i].Equal(other[i]) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy.
func (v Value) Clone() Value {
	if v == nil {
		return nil
	}
	out := make(Value, len(v))
	for i, item := range v {
		out[i] = CloneItem(item)
	}
	return out
}
