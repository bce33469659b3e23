package fuzzy

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// LevenshteinDistance returns the number of single-rune edits needed to turn
// s1 into s2 after normalization.
func LevenshteinDistance(s1, s2 string) int {
	r1 := []rune(Normalize(s1))
	r2 := []rune(Normalize(s2))

	if len(r1) == 0 {
		return len(r2)
	}
	if len(r2) == 0 {
		return len(r1)
	}

	// Two rolling rows are enough
	prev := make([]int, len(r2)+1)
	curr := make([]int, len(r2)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(r1); i++ {
		curr[0] = i
		for j := 1; j <= len(r2); j++ {
			cost := 1
			if r1[i-1] == r2[j-1] {
				cost = 0
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(r2)]
}

// Threshold is the typo tolerance for a query of the given length.
func Threshold(query string) int {
	n := len([]rune(Normalize(query)))
	switch {
	case n <= 3:
		return 0
	case n <= 5:
		return 1
	case n >= 8:
		return 3
	}
	return 2
}

// RelevanceScore scores how well a todo matches query. Title hits weigh more
// than description hits; zero means no match.
func RelevanceScore(query, title, description string) float64 {
	query = Normalize(query)
	if query == "" {
		return 0
	}
	threshold := Threshold(query)

	score := fieldScore(query, Normalize(title), threshold, 100)
	score += fieldScore(query, Normalize(description), threshold, 40)
	return score
}

func fieldScore(query, text string, threshold int, weight float64) float64 {
	if text == "" {
		return 0
	}

	if strings.Contains(text, query) {
		score := weight
		if containsWord(text, query) {
			score += weight / 2
		}
		if strings.HasPrefix(text, query) {
			score += weight / 4
		}
		return score
	}

	best := 0.0
	for _, word := range strings.Fields(text) {
		if strings.HasPrefix(word, query) {
			best = max(best, weight*0.6)
			continue
		}
		if threshold == 0 {
			continue
		}
		if dist := LevenshteinDistance(query, word); dist <= threshold {
			best = max(best, weight*0.5-float64(dist)*weight*0.1)
		}
	}
	return best
}

// Normalize lowercases s, strips diacritics and collapses whitespace.
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if stripped, _, err := transform.String(t, s); err == nil {
		s = stripped
	}
	s = strings.ToLower(s)
	return strings.Join(strings.Fields(s), " ")
}

func containsWord(text, query string) bool {
	for _, word := range strings.Fields(text) {
		if word == query {
			return true
		}
	}
	return false
}
