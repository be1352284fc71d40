package scraper

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// unsafeFilenameChars matches characters rejected by common filesystems,
// plus the degree sign that appears in some tournament names.
var unsafeFilenameChars = regexp.MustCompile(`[<>:"/\\|?*°]`)

// CleanText collapses whitespace runs, including the non-breaking spaces
// and stray newlines rendered table cells arrive with, into single spaces
// and trims the ends.
func CleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// FoldASCII strips diacritics so accented names match their plain ASCII
// forms ("Épée" becomes "Epee").
func FoldASCII(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}

// SanitizeFilename turns a tournament name into a file name stem: accents
// fold to ASCII, unsafe characters are dropped, spaces become underscores.
func SanitizeFilename(name string) string {
	folded := FoldASCII(CleanText(name))
	cleaned := unsafeFilenameChars.ReplaceAllString(folded, "")
	return strings.ReplaceAll(cleaned, " ", "_")
}
