// Package names makes CUE sheet metadata safe to use in file and
// directory names.
package names

import (
	"strings"

	"github.com/kennygrant/sanitize"
)

const (
	// FallbackTitle replaces track titles that sanitize to nothing.
	FallbackTitle = "Untitled"
	// FallbackAuthor and FallbackAlbum replace empty collection folder names.
	FallbackAuthor = "Unknown Author"
	FallbackAlbum  = "Unknown Album"
)

// illegal strips characters that are not accepted by common filesystems.
var illegal = strings.NewReplacer(
	"/", "-",
	"\\", "",
	":", "",
	"*", "",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
	"#", "",
	"%", "",
	"&", "",
	"^", "",
	"`", "",
	"~", "",
	"'", "",
	".", "",
	"{", "",
	"}", "",
)

// Title returns a filesystem-safe version of a track title. Slashes become
// hyphens, other meta-characters are removed and runs of whitespace are
// collapsed to single spaces. Applying Title twice yields the same result
// as applying it once.
func Title(s string) string {
	s = illegal.Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// TitleOrFallback is Title with empty results replaced by FallbackTitle.
func TitleOrFallback(s string) string {
	if t := Title(s); t != "" {
		return t
	}
	return FallbackTitle
}

// PathSegment returns a directory name suitable for collection folders.
// Accented characters are transliterated to ASCII before sanitization so
// that names survive on filesystems with restrictive encodings.
func PathSegment(s, fallback string) string {
	seg := Title(sanitize.Accents(s))
	if seg == "" {
		return fallback
	}
	return seg
}
