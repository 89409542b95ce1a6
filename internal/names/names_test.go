package names

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTitle(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain title",
			input:    "Blue in Green",
			expected: "Blue in Green",
		},
		{
			name:     "slash becomes hyphen",
			input:    "AC/DC",
			expected: "AC-DC",
		},
		{
			name:     "illegal characters removed",
			input:    `What? "A" <Title>: 50%`,
			expected: "What A Title 50",
		},
		{
			name:     "whitespace collapsed",
			input:    "  Too   many\tspaces ",
			expected: "Too many spaces",
		},
		{
			name:     "empty stays empty",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Title(tt.input))
		})
	}
}

func TestTitleIsIdempotent(t *testing.T) {
	inputs := []string{
		"Blue in Green",
		`A/B\C:D*E?F"G<H>I|J`,
		"  spaced   out  ",
		"",
		"Sigur Rós",
	}

	for _, in := range inputs {
		once := Title(in)
		assert.Equal(t, once, Title(once), "sanitizing twice must equal sanitizing once: %q", in)
	}
}

func TestTitleOrFallback(t *testing.T) {
	assert.Equal(t, "Untitled", TitleOrFallback(""))
	assert.Equal(t, "Untitled", TitleOrFallback(`???`))
	assert.Equal(t, "So What", TitleOrFallback("So What"))
}

func TestPathSegment(t *testing.T) {
	assert.Equal(t, "Unknown Author", PathSegment("", FallbackAuthor))
	assert.Equal(t, "My Album", PathSegment("My Album", FallbackAlbum))
	assert.Equal(t, "Unknown Album", PathSegment("  ", FallbackAlbum))
	// Accents are transliterated, not dropped.
	assert.Equal(t, "Sigur Ros", PathSegment("Sigur Rós", FallbackAuthor))
}
