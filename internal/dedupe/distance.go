// Package dedupe finds groups of likely duplicate entries in a File and
// merges each group into a single entry.
package dedupe

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/matsen/bibclique/internal/reference"
)

// MaxDistance is the distance of two entirely different entries, ignoring
// the year penalty.
const MaxDistance = 10000

// Weights of the field distances in EntryDistance.
const (
	titleWeight  = 0.6
	authorWeight = 0.3
	yearWeight   = 0.1

	// yearPenalty applies when either year is not a number. It dwarfs the
	// other terms so such entries never cluster.
	yearPenalty = 100.0
)

var wordSeparator = regexp.MustCompile(`[^a-zA-Z']+`)

// LevenshteinWord returns the case-insensitive character edit distance of
// s and t divided by the length of the longer string.
func LevenshteinWord(s, t string) float64 {
	a := []rune(strings.ToLower(s))
	b := []rune(strings.ToLower(t))
	m, n := len(a), len(b)
	if m == 0 && n == 0 {
		return 0
	}
	if m == 0 || n == 0 {
		return 1
	}

	prev := make([]int, n+1)
	curr := make([]int, n+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= m; i++ {
		curr[0] = i
		for j := 1; j <= n; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return float64(prev[n]) / float64(max(m, n))
}

// LevenshteinWords is the word-level edit distance of two token lists.
// Substituting one word for another costs the square of their
// LevenshteinWord distance. The result is divided by the longer list length.
func LevenshteinWords(s, t []string) float64 {
	m, n := len(s), len(t)
	if m == 0 && n == 0 {
		return 0
	}
	if m == 0 || n == 0 {
		return 1
	}

	prev := make([]float64, n+1)
	curr := make([]float64, n+1)
	for j := range prev {
		prev[j] = float64(j)
	}
	for i := 1; i <= m; i++ {
		curr[0] = float64(i)
		for j := 1; j <= n; j++ {
			d := LevenshteinWord(s[i-1], t[j-1])
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+d*d)
		}
		prev, curr = curr, prev
	}
	return prev[n] / float64(max(m, n))
}

// Levenshtein splits both strings into words and returns their
// LevenshteinWords distance.
func Levenshtein(s, t string) float64 {
	return LevenshteinWords(splitWords(s), splitWords(t))
}

func splitWords(s string) []string {
	var words []string
	for _, w := range wordSeparator.Split(s, -1) {
		if w != "" {
			words = append(words, w)
		}
	}
	return words
}

// EntryDistance combines title, author and year distances of two entries
// into an integer; below MaxDistance unless a year is missing or invalid.
func EntryDistance(a, b *reference.Entry) int {
	titleValue := Levenshtein(reference.Text(a.Value(reference.FieldTitle)), reference.Text(b.Value(reference.FieldTitle)))
	authorValue := Levenshtein(reference.Text(a.Value(reference.FieldAuthor)), reference.Text(b.Value(reference.FieldAuthor)))

	yearValue := yearPenalty
	yearA, errA := strconv.Atoi(strings.TrimSpace(reference.Text(a.Value(reference.FieldYear))))
	yearB, errB := strconv.Atoi(strings.TrimSpace(reference.Text(b.Value(reference.FieldYear))))
	if errA == nil && errB == nil {
		d := float64(yearA - yearB)
		yearValue = min(1.0, d*d/100.0)
	}

	return int(MaxDistance * (titleWeight*titleValue + authorWeight*authorValue + yearWeight*yearValue))
}
