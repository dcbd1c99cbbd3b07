package reference

// Element is anything a File can hold: *Entry, *Macro, *Preamble or
// *Comment.
type Element interface {
	element()
}

// Macro is a @string definition.
type Macro struct {
	Key   string
	Value Value
}

// Preamble is a @preamble block.
type Preamble struct {
	Value Value
}

// Comment is free text between elements.
type Comment struct {
	Text string
}

func (*Macro) element()    {}
func (*Preamble) element() {}
func (*Comment) element()  {}

// Handle identifies an element within the File that created it. Handles are
// never reused, so a handle to a removed element stays invalid.
type Handle int

// Kind selects element kinds for ContainsKey.
type Kind int

const (
	KindEntry Kind = 1 << iota
	KindMacro
	KindAll = KindEntry | KindMacro
)

type slot struct {
	handle Handle
	elem   Element
}

// File is an ordered collection of elements. It owns its elements; other
// components refer to them by Handle.
type File struct {
	slots []slot
	next  Handle
}

// NewFile creates an empty file.
func NewFile(elems ...Element) *File {
	f := &File{}
	for _, e := range elems {
		f.Append(e)
	}
	return f
}

// Append adds e at the end and returns its handle.
func (f *File) Append(e Element) Handle {
	f.next++
	f.slots = append(f.slots, slot{handle: f.next, elem: e})
	return f.next
}

// Len returns the number of elements.
func (f *File) Len() int {
	return len(f.slots)
}

// At returns the element at position i.
func (f *File) At(i int) Element {
	return f.slots[i].elem
}

// HandleAt returns the handle of the element at position i.
func (f *File) HandleAt(i int) Handle {
	return f.slots[i].handle
}

// RemoveAt removes the element at position i.
func (f *File) RemoveAt(i int) {
	f.slots = append(f.slots[:i], f.slots[i+1:]...)
}

func (f *File) position(h Handle) int {
	for i, s := range f.slots {
		if s.handle == h {
			return i
		}
	}
	return -1
}

// Remove removes the element with handle h and reports whether it existed.
func (f *File) Remove(h Handle) bool {
	i := f.position(h)
	if i < 0 {
		return false
	}
	f.RemoveAt(i)
	return true
}

// Get returns the element with handle h, or nil.
func (f *File) Get(h Handle) Element {
	if i := f.position(h); i >= 0 {
		return f.slots[i].elem
	}
	return nil
}

// Entry returns the entry with handle h.
func (f *File) Entry(h Handle) (*Entry, bool) {
	e, ok := f.Get(h).(*Entry)
	return e, ok
}

// Elements returns the elements in order.
func (f *File) Elements() []Element {
	out := make([]Element, len(f.slots))
	for i, s := range f.slots {
		out[i] = s.elem
	}
	return out
}

// EntryHandles returns, in file order, the handles of all entries that have
// at least one field.
func (f *File) EntryHandles() []Handle {
	var out []Handle
	for _, s := range f.slots {
		if e, ok := s.elem.(*Entry); ok && e.Len() > 0 {
			out = append(out, s.handle)
		}
	}
	return out
}

// Entries returns all entries in file order.
func (f *File) Entries() []*Entry {
	var out []*Entry
	for _, s := range f.slots {
		if e, ok := s.elem.(*Entry); ok {
			out = append(out, e)
		}
	}
	return out
}

// ContainsKey returns the first entry whose id, or macro whose key, equals
// key, restricted to the given kinds. It returns nil if there is none.
func (f *File) ContainsKey(key string, kinds Kind) Element {
	for _, s := range f.slots {
		switch e := s.elem.(type) {
		case *Entry:
			if kinds&KindEntry != 0 && e.ID == key {
				return e
			}
		case *Macro:
			if kinds&KindMacro != 0 && e.Key == key {
				return e
			}
		}
	}
	return nil
}

// EntryByID returns the entry with the given id and its handle.
func (f *File) EntryByID(id string) (*Entry, Handle, bool) {
	for _, s := range f.slots {
		if e, ok := s.elem.(*Entry); ok && e.ID == id {
			return e, s.handle, true
		}
	}
	return nil, 0, false
}
