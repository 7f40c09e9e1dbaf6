package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Clean joins text fragments pulled from one or more markup nodes into a
// single line. Whitespace of any kind collapses to one space and the result
// is trimmed; cleaning an already clean string returns it unchanged.
func Clean(fragments ...string) string {
	if len(fragments) == 0 {
		return ""
	}
	s := strings.Join(fragments, " ")
	s = strings.ToValidUTF8(s, " ")
	s = strings.Map(stripInvisible, s)
	s = norm.NFKC.String(s)
	return strings.Join(strings.Fields(s), " ")
}

// stripInvisible turns control characters into spaces and drops format
// characters such as zero-width spaces and soft hyphens.
func stripInvisible(r rune) rune {
	switch {
	case unicode.IsSpace(r):
		return ' '
	case unicode.IsControl(r):
		return ' '
	case unicode.Is(unicode.Cf, r):
		return -1
	}
	return r
}

// fold prepares text for keyword matching.
func fold(s string) string {
	return strings.ToLower(Clean(s))
}
