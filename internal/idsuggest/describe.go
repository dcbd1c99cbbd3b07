package idsuggest

import (
	"fmt"
	"strings"
)

// Describe returns one human-readable line per token of format.
func Describe(format string) []string {
	var lines []string
	for _, token := range strings.Split(format, "|") {
		if token == "" {
			continue
		}
		lines = append(lines, describeToken(token))
	}
	return lines
}

func describeToken(token string) string {
	switch token[0] {
	case 'a':
		info := parseTokenInfo(token[1:])
		info.startWord, info.endWord = 0, 0
		return "First author only" + describeInfo(info, "", false)
	case 'A':
		return "Authors" + describeInfo(parseTokenInfo(token[1:]), "authors", true)
	case 'z':
		info := parseTokenInfo(token[1:])
		info.startWord, info.endWord = 1, unlimited
		return "All but first author" + describeInfo(info, "", false)
	case 'y':
		return "Year (2 digits)"
	case 'Y':
		return "Year (4 digits)"
	case 't':
		return "Title" + describeInfo(parseTokenInfo(token[1:]), "words", true)
	case 'T':
		return "Title without small words" + describeInfo(parseTokenInfo(token[1:]), "words", true)
	case 'j':
		return "Journal initials" + describeInfo(parseTokenInfo(token[1:]), "words", true)
	case 'v':
		return "Volume"
	case 'p':
		return "First page"
	case '"':
		return fmt.Sprintf("Text: %q", token[1:])
	}
	return fmt.Sprintf("Unknown token %q", token)
}

func describeInfo(info tokenInfo, unit string, withRange bool) string {
	var b strings.Builder
	if withRange {
		switch {
		case info.startWord == 0 && info.endWord >= unlimited:
			fmt.Fprintf(&b, ", all %s", unit)
		case info.endWord >= unlimited:
			fmt.Fprintf(&b, ", %s %d and later", unit, info.startWord+1)
		case info.startWord == info.endWord:
			fmt.Fprintf(&b, ", %s %d only", strings.TrimSuffix(unit, "s"), info.startWord+1)
		default:
			fmt.Fprintf(&b, ", %s %d to %d", unit, info.startWord+1, info.endWord+1)
		}
		if info.lastWord {
			b.WriteString(", including the last one")
		}
	}
	if info.length < unlimited {
		fmt.Fprintf(&b, ", first %d characters each", info.length)
	}
	switch info.caseChange {
	case ToLower:
		b.WriteString(", in lower case")
	case ToUpper:
		b.WriteString(", in upper case")
	case ToCamelCase:
		b.WriteString(", in CamelCase")
	}
	if info.inBetween != "" {
		fmt.Fprintf(&b, ", separated by %q", info.inBetween)
	}
	return b.String()
}
