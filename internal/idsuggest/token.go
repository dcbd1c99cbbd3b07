// Package idsuggest formats entry ids from format strings such as
// `A2|y|"_|T3l`: a pipe-separated list of tokens, each expanding to part of
// the id.
//
// Token kinds (first character):
//
//	A   authors (whole configured range)   a   first author only
//	z   all authors but the first
//	y   year, two digits                   Y   year, four digits
//	t   title words                        T   title words without small words
//	j   journal initials                   v   volume
//	p   first page                         "   literal text
//
// Author, title and journal tokens accept a suffix: an optional digit
// limiting the characters per word, an optional case change (l lower, u
// upper, c CamelCase), an optional word range wNM or wNI (N to infinity),
// an optional L to always include the last author, and finally "text to
// put between words.
package idsuggest

import (
	"strings"
	"unicode"
)

// CaseChange is the case transformation requested by a token.
type CaseChange int

const (
	NoChange CaseChange = iota
	ToLower
	ToUpper
	ToCamelCase
)

// unlimited stands for "no limit" in lengths and word ranges.
const unlimited = 0x00ffffff

// tokenInfo is the parsed suffix of an author, title or journal token.
type tokenInfo struct {
	length     int
	startWord  int
	endWord    int
	lastWord   bool
	caseChange CaseChange
	inBetween  string
}

func digitValue(b byte) int {
	if b >= '0' && b <= '9' {
		return int(b - '0')
	}
	return -1
}

// parseTokenInfo parses the suffix following a token's kind character.
func parseTokenInfo(s string) tokenInfo {
	info := tokenInfo{length: unlimited, endWord: unlimited}
	pos := 0

	if pos < len(s) {
		if dv := digitValue(s[pos]); dv > -1 {
			info.length = dv
			pos++
		}
	}

	if pos < len(s) {
		switch s[pos] {
		case 'l':
			info.caseChange = ToLower
			pos++
		case 'u':
			info.caseChange = ToUpper
			pos++
		case 'c':
			info.caseChange = ToCamelCase
			pos++
		}
	}

	if len(s) > pos+2 && s[pos] == 'w' {
		start := digitValue(s[pos+1])
		end := -1
		if s[pos+2] == 'I' {
			end = unlimited
		} else {
			end = digitValue(s[pos+2])
		}
		if start > -1 && end > -1 {
			info.startWord = start
			info.endWord = end
			pos += 3
			if pos < len(s) && s[pos] == 'L' {
				info.lastWord = true
				pos++
			}
		}
	}

	if len(s) > pos+1 && s[pos] == '"' {
		info.inBetween = s[pos+1:]
	}

	return info
}

func (info tokenInfo) inRange(index int) bool {
	return index >= info.startWord && index <= info.endWord
}

func (info tokenInfo) cut(s string) string {
	if len(s) > info.length {
		return s[:info.length]
	}
	return s
}

func (info tokenInfo) applyCase(s string) string {
	switch info.caseChange {
	case ToLower:
		return strings.ToLower(s)
	case ToUpper:
		return strings.ToUpper(s)
	}
	return s
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
