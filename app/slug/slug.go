// Package slug turns arbitrary titles into URL-safe post identifiers.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const maxLength = 60

var (
	slugPattern     = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
	invalidChars    = regexp.MustCompile(`[^a-z0-9 -]`)
	whitespaceRun   = regexp.MustCompile(`\s+`)
	hyphenRun       = regexp.MustCompile(`-+`)
	germanReplacer  = strings.NewReplacer("ä", "ae", "ö", "oe", "ü", "ue", "ß", "ss")
	diacriticFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// Slugify derives a slug from s: lowercase, German umlauts transliterated,
// remaining diacritics stripped, everything outside [a-z0-9 -] removed,
// whitespace collapsed to single hyphens, truncated to 60 characters.
// Idempotent: slugifying a slug returns it unchanged.
func Slugify(s string) string {
	s = strings.ToLower(s)
	s = germanReplacer.Replace(s)
	if folded, _, err := transform.String(diacriticFolder, s); err == nil {
		s = folded
	}
	s = invalidChars.ReplaceAllString(s, "")
	s = whitespaceRun.ReplaceAllString(s, "-")
	s = hyphenRun.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > maxLength {
		s = strings.TrimRight(s[:maxLength], "-")
	}
	return s
}

// Valid reports whether s is a well-formed slug.
func Valid(s string) bool {
	return slugPattern.MatchString(s)
}
