// Package storage handles data persistence in JSONL and SQLite formats.
package storage

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/matsen/bibclique/internal/reference"
)

// MaxJSONLLineCapacity is the maximum buffer size for reading JSONL lines (1MB per line).
const MaxJSONLLineCapacity = 1024 * 1024

// ErrNotFound is returned when a lookup matches nothing.
var ErrNotFound = errors.New("not found")

// Element kinds as written to the "kind" property of a line.
const (
	kindEntry    = "entry"
	kindMacro    = "macro"
	kindPreamble = "preamble"
	kindComment  = "comment"
)

// Item kinds.
const (
	itemText     = "text"
	itemPerson   = "person"
	itemKeyword  = "keyword"
	itemMacroKey = "macro"
	itemVerbatim = "verbatim"
)

type itemRecord struct {
	Kind       string `json:"kind"`
	Text       string `json:"text,omitempty"`
	First      string `json:"first,omitempty"`
	Last       string `json:"last,omitempty"`
	Suffix     string `json:"suffix,omitempty"`
	Comment    string `json:"comment,omitempty"`
	HasComment bool   `json:"has_comment,omitempty"`
}

type fieldRecord struct {
	Key   string       `json:"key"`
	Items []itemRecord `json:"items"`
}

// elementRecord is one line of entries.jsonl.
type elementRecord struct {
	Kind   string        `json:"kind"`
	Type   string        `json:"type,omitempty"`
	ID     string        `json:"id,omitempty"`
	Fields []fieldRecord `json:"fields,omitempty"`
	Key    string        `json:"key,omitempty"`
	Value  []itemRecord  `json:"value,omitempty"`
	Text   string        `json:"text,omitempty"`
}

func encodeItem(item reference.Item) (itemRecord, error) {
	switch it := item.(type) {
	case *reference.PlainText:
		return itemRecord{Kind: itemText, Text: it.Text}, nil
	case *reference.Person:
		return itemRecord{Kind: itemPerson, First: it.FirstName, Last: it.LastName, Suffix: it.Suffix}, nil
	case *reference.Keyword:
		return itemRecord{Kind: itemKeyword, Text: it.Text}, nil
	case *reference.MacroKey:
		return itemRecord{Kind: itemMacroKey, Text: it.Text}, nil
	case *reference.VerbatimText:
		return itemRecord{Kind: itemVerbatim, Text: it.Text, Comment: it.Comment, HasComment: it.HasComment}, nil
	}
	return itemRecord{}, fmt.Errorf("unsupported item %T", item)
}

func decodeItem(r itemRecord) (reference.Item, error) {
	switch r.Kind {
	case itemText:
		return &reference.PlainText{Text: r.Text}, nil
	case itemPerson:
		return &reference.Person{FirstName: r.First, LastName: r.Last, Suffix: r.Suffix}, nil
	case itemKeyword:
		return &reference.Keyword{Text: r.Text}, nil
	case itemMacroKey:
		return &reference.MacroKey{Text: r.Text}, nil
	case itemVerbatim:
		return &reference.VerbatimText{Text: r.Text, Comment: r.Comment, HasComment: r.HasComment}, nil
	}
	return nil, fmt.Errorf("unknown item kind %q", r.Kind)
}

func encodeValue(v reference.Value) ([]itemRecord, error) {
	records := make([]itemRecord, 0, len(v))
	for _, item := range v {
		r, err := encodeItem(item)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}

func decodeValue(records []itemRecord) (reference.Value, error) {
	v := make(reference.Value, 0, len(records))
	for _, r := range records {
		item, err := decodeItem(r)
		if err != nil {
			return nil, err
		}
		v = append(v, item)
	}
	return v, nil
}

func encodeEntry(e *reference.Entry) (elementRecord, error) {
	rec := elementRecord{Kind: kindEntry, Type: e.Type, ID: e.ID}
	for _, f := range e.Fields() {
		items, err := encodeValue(f.Value)
		if err != nil {
			return elementRecord{}, fmt.Errorf("field %s: %w", f.Key, err)
		}
		rec.Fields = append(rec.Fields, fieldRecord{Key: f.Key, Items: items})
	}
	return rec, nil
}

func decodeEntry(rec elementRecord) (*reference.Entry, error) {
	e := reference.NewEntry(rec.Type, rec.ID)
	for _, f := range rec.Fields {
		v, err := decodeValue(f.Items)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Key, err)
		}
		e.Set(f.Key, v)
	}
	return e, nil
}

func encodeElement(elem reference.Element) (elementRecord, error) {
	switch el := elem.(type) {
	case *reference.Entry:
		return encodeEntry(el)
	case *reference.Macro:
		v, err := encodeValue(el.Value)
		if err != nil {
			return elementRecord{}, fmt.Errorf("macro %s: %w", el.Key, err)
		}
		return elementRecord{Kind: kindMacro, Key: el.Key, Value: v}, nil
	case *reference.Preamble:
		v, err := encodeValue(el.Value)
		if err != nil {
			return elementRecord{}, fmt.Errorf("preamble: %w", err)
		}
		return elementRecord{Kind: kindPreamble, Value: v}, nil
	case *reference.Comment:
		return elementRecord{Kind: kindComment, Text: el.Text}, nil
	}
	return elementRecord{}, fmt.Errorf("unsupported element %T", elem)
}

func decodeElement(rec elementRecord) (reference.Element, error) {
	switch rec.Kind {
	case kindEntry:
		return decodeEntry(rec)
	case kindMacro:
		v, err := decodeValue(rec.Value)
		if err != nil {
			return nil, err
		}
		return &reference.Macro{Key: rec.Key, Value: v}, nil
	case kindPreamble:
		v, err := decodeValue(rec.Value)
		if err != nil {
			return nil, err
		}
		return &reference.Preamble{Value: v}, nil
	case kindComment:
		return &reference.Comment{Text: rec.Text}, nil
	}
	return nil, fmt.Errorf("unknown element kind %q", rec.Kind)
}

// MarshalEntry encodes one entry as a single JSONL record.
func MarshalEntry(e *reference.Entry) ([]byte, error) {
	rec, err := encodeEntry(e)
	if err != nil {
		return nil, err
	}
	return json.Marshal(rec)
}

// UnmarshalEntry decodes a record written by MarshalEntry.
func UnmarshalEntry(data []byte) (*reference.Entry, error) {
	var rec elementRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	if rec.Kind != kindEntry {
		return nil, fmt.Errorf("record kind %q is not an entry", rec.Kind)
	}
	return decodeEntry(rec)
}

// ReadFile reads all elements of a JSONL file into a new File.
// A missing file yields an empty File.
func ReadFile(path string) (*reference.File, error) {
	file := reference.NewFile()

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return file, nil
		}
		return nil, fmt.Errorf("opening entries file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	buf := make([]byte, MaxJSONLLineCapacity)
	scanner.Buffer(buf, MaxJSONLLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var rec elementRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		elem, err := decodeElement(rec)
		if err != nil {
			return nil, fmt.Errorf("decoding line %d: %w", lineNum, err)
		}
		file.Append(elem)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading entries file: %w", err)
	}

	return file, nil
}

// WriteFile writes all elements of file to a JSONL file, replacing existing
// content.
func WriteFile(path string, file *reference.File) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating entries file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for i, elem := range file.Elements() {
		rec, err := encodeElement(elem)
		if err != nil {
			return fmt.Errorf("encoding element %d: %w", i, err)
		}
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encoding element %d: %w", i, err)
		}
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("writing element %d: %w", i, err)
		}
		if err := w.WriteByte('\n'); err != nil {
			return fmt.Errorf("writing newline: %w", err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing entries file: %w", err)
	}
	return f.Close()
}
