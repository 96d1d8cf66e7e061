package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountLines(t *testing.T) {
	cases := []struct {
		name string
		text string
		want int
	}{
		{"empty", "", 0},
		{"single unterminated", "a", 1},
		{"single terminated", "a\n", 1},
		{"two unterminated", "a\nb", 2},
		{"two terminated", "a\nb\n", 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, countLines(tc.text))
		})
	}
}

func TestDirExcluded(t *testing.T) {
	assert.True(t, dirExcluded("node_modules", []string{"node_modules"}))
	assert.True(t, dirExcluded("node_modules", []string{"node_*"}))
	assert.True(t, dirExcluded("node_modules", []string{"node_modules/"}))
	assert.True(t, dirExcluded("target", []string{"dist", "target"}))
	assert.False(t, dirExcluded("src", []string{"node_modules"}))
	assert.False(t, dirExcluded("docs", nil))
}

func TestLocalizePatterns(t *testing.T) {
	assert.Equal(t, []string{"*.txt"}, localizePatterns([]string{"docs/*.txt"}, "docs"))

	// a "**" segment keeps the full pattern and contributes the remainder
	assert.Equal(t,
		[]string{"**/docs/*.txt", "docs/*.txt", "*.txt"},
		localizePatterns([]string{"**/docs/*.txt"}, "docs"))

	// deeper mentions rescope to the remainder after the named segment
	assert.Equal(t, []string{"generated"}, localizePatterns([]string{"api/docs/generated"}, "docs"))

	assert.Empty(t, localizePatterns([]string{"src/*.go"}, "docs"))
	// a bare name has no remainder to rescope
	assert.Empty(t, localizePatterns([]string{"docs"}, "docs"))
}
