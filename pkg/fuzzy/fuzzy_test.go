package fuzzy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"Milk", "milk", 0},
		{"café", "cafe", 0},
		{"meeting", "meting", 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LevenshteinDistance(tt.a, tt.b), "%q vs %q", tt.a, tt.b)
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "buy milk", Normalize("  Buy   MILK "))
	assert.Equal(t, "creme brulee", Normalize("Crème Brûlée"))
}

func TestThreshold(t *testing.T) {
	assert.Equal(t, 0, Threshold("abc"))
	assert.Equal(t, 1, Threshold("abcd"))
	assert.Equal(t, 2, Threshold("abcdef"))
	assert.Equal(t, 3, Threshold("abcdefgh"))
}

func TestRelevanceScore(t *testing.T) {
	t.Run("empty query matches nothing", func(t *testing.T) {
		assert.Zero(t, RelevanceScore("  ", "Buy milk", ""))
	})

	t.Run("title outranks description", func(t *testing.T) {
		inTitle := RelevanceScore("milk", "Buy milk", "")
		inDescription := RelevanceScore("milk", "Groceries", "milk and eggs")
		assert.Greater(t, inTitle, inDescription)
		assert.Greater(t, inDescription, 0.0)
	})

	t.Run("typo tolerant", func(t *testing.T) {
		assert.Greater(t, RelevanceScore("meting", "Team meeting", ""), 0.0)
	})

	t.Run("word prefix", func(t *testing.T) {
		assert.Greater(t, RelevanceScore("groc", "Weekly groceries", ""), 0.0)
	})

	t.Run("short queries need exact substrings", func(t *testing.T) {
		assert.Zero(t, RelevanceScore("cat", "Call dad", ""))
	})

	t.Run("no match", func(t *testing.T) {
		assert.Zero(t, RelevanceScore("dentist", "Buy milk", "and bread"))
	})
}
