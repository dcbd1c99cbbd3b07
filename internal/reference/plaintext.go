package reference

import (
	"strconv"
	"strings"
	"time"
)

const (
	enDash   = "\u2013"
	thinSp   = "\u2009"
	nbsp     = "\u00a0"
	andJoin  = " and "
	andOther = " and others"
	kwJoin   = "; "

	// PersonNameFormatLastFirst renders "Doe, Jr., John".
	PersonNameFormatLastFirst = "<%l><, %s><, %f>"
	// PersonNameFormatFirstLast renders "John Doe Jr.".
	PersonNameFormatFirstLast = "<%f ><%l>< %s>"
)

// Renderer turns values into human-readable plain text.
type Renderer struct {
	// PersonNameFormat is a template such as "<%l><, %f>"; empty means
	// PersonNameFormatLastFirst.
	PersonNameFormat string
	// BeautifyMonth renders month codes ("jan", "5", "3--4") as month names.
	BeautifyMonth bool
}

// DefaultRenderer is used by Text, ItemText and Value.Text.
var DefaultRenderer = Renderer{PersonNameFormat: PersonNameFormatLastFirst}

// Text renders v with DefaultRenderer.
func Text(v Value) string {
	return DefaultRenderer.Text(v)
}

// ItemText renders one item with DefaultRenderer.
func ItemText(item Item) string {
	return DefaultRenderer.ItemText(item)
}

type itemClass int

const (
	classOther itemClass = iota
	classPerson
	classKeyword
)

// Text renders a whole value, joining persons with "and" and keywords with
// "; ".
func (r Renderer) Text(v Value) string {
	if r.BeautifyMonth && len(v) >= 1 && len(v) <= 3 {
		if month, ok := monthText(v); ok {
			return month
		}
	}

	var b strings.Builder
	last := classOther
	for _, item := range v {
		next := r.ItemText(item)
		if next == "" {
			continue
		}
		class := classOf(item)
		switch {
		case last == classPerson && class == classPerson:
			b.WriteString(andJoin)
		case last == classPerson && class == classOther && next == "others":
			next = andOther
		case last == classKeyword && class == classKeyword:
			b.WriteString(kwJoin)
		case b.Len() > 0:
			b.WriteString(" ")
		}
		b.WriteString(next)
		last = class
	}
	return b.String()
}

func classOf(item Item) itemClass {
	switch item.(type) {
	case *Person:
		return classPerson
	case *Keyword:
		return classKeyword
	}
	return classOther
}

// ItemText renders one item and removes BibTeX markup residue.
func (r Renderer) ItemText(item Item) string {
	var text string
	verbatim := false
	switch it := item.(type) {
	case *PlainText:
		text = it.Text
	case *MacroKey:
		text = it.Text
	case *Keyword:
		text = it.Text
	case *VerbatimText:
		text = it.Text
		verbatim = true
	case *Person:
		format := r.PersonNameFormat
		if format == "" {
			format = PersonNameFormatLastFirst
		}
		text = FormatPerson(format, it.FirstName, it.LastName, it.Suffix)
	default:
		return ""
	}
	return cleanup(text, verbatim)
}

// cleanup drops unescaped braces and hyphenation hints and maps "\," and
// unescaped "~" to their Unicode spaces. Tildes survive in verbatim text.
func cleanup(text string, verbatim bool) string {
	if !strings.ContainsAny(text, "{}\\~") {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	escaped := false
	for i := 0; i < len(text); i++ {
		c := text[i]
		if escaped {
			escaped = false
			switch c {
			case '-':
				continue
			case ',':
				b.WriteString(thinSp)
				continue
			}
			b.WriteByte('\\')
			b.WriteByte(c)
			continue
		}
		switch c {
		case '\\':
			escaped = true
			continue
		case '{', '}':
			continue
		case '~':
			if !verbatim {
				b.WriteString(nbsp)
				continue
			}
		}
		b.WriteByte(c)
	}
	if escaped {
		b.WriteByte('\\')
	}
	return b.String()
}

// FormatPerson fills a name template. Each "<...%x...>" segment is replaced
// by its surrounding text and the name part x (f, l or s); segments whose
// name part is empty vanish.
func FormatPerson(format, first, last, suffix string) string {
	result := format
	for {
		p1 := strings.IndexByte(result, '<')
		if p1 < 0 {
			break
		}
		p2 := strings.IndexByte(result[p1+1:], '>')
		if p2 < 0 {
			break
		}
		p2 += p1 + 1
		p3 := strings.IndexByte(result[p1:], '%')
		if p3 < 0 {
			break
		}
		p3 += p1
		if p3 >= p2 {
			break
		}

		var insert string
		if p3+1 < p2 {
			switch result[p3+1] {
			case 'f':
				insert = first
			case 'l':
				insert = last
			case 's':
				insert = suffix
			}
		}
		if insert != "" {
			end := p3 + 2
			if end > p2 {
				end = p2
			}
			insert = result[p1+1:p3] + insert + result[end:p2]
		}
		result = result[:p1] + insert + result[p2+1:]
	}
	return result
}

var monthAbbrevs = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

var monthSeparators = map[string]bool{
	"#": true, "-": true, "--": true, "/": true, enDash: true,
}

func monthOf(item Item) (time.Month, bool) {
	switch it := item.(type) {
	case *MacroKey:
		m, ok := monthAbbrevs[strings.ToLower(strings.TrimSpace(it.Text))]
		return m, ok
	case *PlainText:
		n, err := strconv.Atoi(strings.TrimSpace(it.Text))
		if err != nil || n < 1 || n > 12 {
			return 0, false
		}
		return time.Month(n), true
	}
	return 0, false
}

// monthText recognises a single month or a month range such as
// "jan # feb" or "3--4".
// splitMonthRange parses a numeric range such as "3--4" held in one item.
func splitMonthRange(text string) (time.Month, time.Month, bool) {
	for _, sep := range []string{"--", enDash, "-", "/"} {
		a, b, found := strings.Cut(text, sep)
		if !found {
			continue
		}
		first, ok1 := monthOf(&PlainText{Text: a})
		second, ok2 := monthOf(&PlainText{Text: b})
		return first, second, ok1 && ok2
	}
	return 0, 0, false
}

func monthText(v Value) (string, bool) {
	if pt, ok := v[0].(*PlainText); ok && len(v) == 1 {
		if first, second, ok := splitMonthRange(pt.Text); ok {
			return first.String() + enDash + second.String(), true
		}
	}
	first, ok := monthOf(v[0])
	if !ok {
		return "", false
	}
	switch len(v) {
	case 1:
		return first.String(), true
	case 2:
		second, ok := monthOf(v[1])
		if !ok {
			return "", false
		}
		return first.String() + enDash + second.String(), true
	case 3:
		if !monthSeparators[strings.TrimSpace(ItemText(v[1]))] {
			return "", false
		}
		second, ok := monthOf(v[2])
		if !ok {
			return "", false
		}
		return first.String() + enDash + second.String(), true
	}
	return "", false
}
