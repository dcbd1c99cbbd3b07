package idsuggest

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/matsen/bibclique/internal/reference"
)

// smallWords are dropped from titles by the T token.
var smallWords = map[string]bool{
	"and": true, "on": true, "in": true, "the": true, "of": true, "at": true,
	"a": true, "an": true, "with": true, "for": true, "from": true,
}

var (
	fourDigits = regexp.MustCompile(`\d{4}`)
	anyDigits  = regexp.MustCompile(`\d+`)
)

// FormatID expands format against entry.
func FormatID(entry *reference.Entry, format string) string {
	var b strings.Builder
	for _, token := range strings.Split(format, "|") {
		if token == "" {
			continue
		}
		b.WriteString(translateToken(entry, token))
	}
	return b.String()
}

func translateToken(entry *reference.Entry, token string) string {
	switch token[0] {
	case 'a':
		info := parseTokenInfo(token[1:])
		info.startWord, info.endWord = 0, 0
		return translateAuthors(entry, info)
	case 'A':
		return translateAuthors(entry, parseTokenInfo(token[1:]))
	case 'z':
		info := parseTokenInfo(token[1:])
		info.startWord, info.endWord = 1, unlimited
		return translateAuthors(entry, info)
	case 'y':
		if year, ok := yearNumber(entry); ok {
			return fmt.Sprintf("%02d", year%100)
		}
	case 'Y':
		if year, ok := yearNumber(entry); ok {
			return fmt.Sprintf("%04d", year%10000)
		}
	case 't', 'T':
		return translateTitle(entry, parseTokenInfo(token[1:]), token[0] == 'T')
	case 'j':
		return translateJournal(entry, parseTokenInfo(token[1:]))
	case 'v':
		return normalizeText(reference.Text(entry.Value(reference.FieldVolume)))
	case 'p':
		pages := reference.Text(entry.Value(reference.FieldPages))
		return anyDigits.FindString(pages)
	case '"':
		return token[1:]
	}
	return ""
}

func yearNumber(entry *reference.Entry) (int, bool) {
	text := reference.Text(entry.Value(reference.FieldYear))
	match := fourDigits.FindString(text)
	if match == "" {
		match = anyDigits.FindString(text)
	}
	if match == "" {
		return 0, false
	}
	year, err := strconv.Atoi(match)
	if err != nil {
		return 0, false
	}
	return year, true
}

func translateAuthors(entry *reference.Entry, info tokenInfo) string {
	authors := entry.AuthorsLastNames()
	var parts []string
	for i, name := range authors {
		if !info.inRange(i) && !(info.lastWord && i == len(authors)-1) {
			continue
		}
		var components []string
		for _, c := range strings.Fields(name) {
			c = normalizeText(c)
			if info.caseChange == ToCamelCase {
				c = upperFirst(c)
			}
			components = append(components, c)
		}
		parts = append(parts, info.cut(strings.Join(components, "")))
	}
	return info.applyCase(strings.Join(parts, info.inBetween))
}

func translateTitle(entry *reference.Entry, info tokenInfo, removeSmallWords bool) string {
	title := reference.Text(entry.Value(reference.FieldTitle))
	words := titleWords(title)

	var parts []string
	for i, word := range words {
		if !info.inRange(i) && !(info.lastWord && i == len(words)-1) {
			continue
		}
		if removeSmallWords && smallWords[strings.ToLower(word)] {
			continue
		}
		if info.caseChange == ToCamelCase {
			word = upperFirst(word)
		}
		parts = append(parts, info.cut(word))
	}
	return info.applyCase(strings.Join(parts, info.inBetween))
}

// titleWords splits a title at white space and normalizes each word,
// dropping words that normalize to nothing.
func titleWords(title string) []string {
	var words []string
	for _, w := range strings.Fields(title) {
		if w = normalizeText(w); w != "" {
			words = append(words, w)
		}
	}
	return words
}

// translateJournal builds initials from the journal's significant words,
// e.g. "Journal of Machine Learning Research" gives "JMLR".
func translateJournal(entry *reference.Entry, info tokenInfo) string {
	journal := reference.Text(entry.Value(reference.FieldJournal))
	var initials []string
	for i, word := range titleWords(journal) {
		if smallWords[strings.ToLower(word)] || !info.inRange(i) {
			continue
		}
		initials = append(initials, strings.ToUpper(word[:1]))
	}
	return info.applyCase(strings.Join(initials, info.inBetween))
}
