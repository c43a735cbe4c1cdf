// package playlist implements the candidate-generation and balancing pipeline
// that expands a small set of seed songs into a target-sized, multi-artist,
// duplicate-free playlist.
//
// Pipeline stages: parse → normalize (catalog-backed) → candidate pool →
// optional suggestion top-up and verification → quota allocation →
// interleaved sequencing.
package playlist

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// keyDelimiter joins title and artist into a canonical identity.
// Unlikely to appear in real catalog data, so distinct pairs don't collide.
const keyDelimiter = "|||"

// Song is a (title, artist) pair. Both fields are non-empty after a
// successful parse; normalization replaces both with the catalog's
// canonical spelling.
type Song struct {
	Title  string
	Artist string
}

// Key returns the case/whitespace-insensitive identity used for
// de-duplication across the entire pipeline.
func (s Song) Key() string {
	return Key(s.Title, s.Artist)
}

// String renders the song as a "Title - Artist" line with a single ASCII
// hyphen padded by one space on each side.
func (s Song) String() string {
	return s.Title + " - " + s.Artist
}

// Key builds the canonical de-duplication key for a (title, artist) pair.
func Key(title, artist string) string {
	return strings.ToLower(strings.TrimSpace(title)) + keyDelimiter + strings.ToLower(strings.TrimSpace(artist))
}

// dash runes accepted as the title/artist separator: hyphen, en dash, em dash.
func isDash(r rune) bool {
	return r == '-' || r == '–' || r == '—'
}

// quoteCutset holds the quote glyphs stripped from both ends of parsed fields.
const quoteCutset = "\"'“”"

// ParseLine parses a free-text "Title - Artist" line into a Song.
// Splits on any dash variant; the title is the first non-empty segment and
// the artist is the remaining segments rejoined with a literal hyphen, so
// artist names containing dashes survive. Returns false when the line has
// fewer than two non-empty segments or the title is empty after cleanup.
func ParseLine(raw string) (Song, bool) {
	var parts []string
	for _, p := range strings.FieldsFunc(raw, isDash) {
		p = strings.TrimSpace(p)
		if p != "" {
			parts = append(parts, p)
		}
	}

	if len(parts) < 2 {
		return Song{}, false
	}

	title := strings.Trim(parts[0], quoteCutset)
	artist := strings.Trim(strings.Join(parts[1:], "-"), quoteCutset)

	if title == "" || artist == "" {
		return Song{}, false
	}

	return Song{Title: title, Artist: artist}, true
}

var lineEnumeration = regexp.MustCompile(`^\d+[.)]\s*`)

// SplitLines splits freeform text into trimmed, non-empty lines with any
// leading "1. " style enumeration removed. Used for both user seed input and
// suggestion-service output.
func SplitLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		line = lineEnumeration.ReplaceAllString(line, "")
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

var diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// fold lowercases, trims, and strips diacritics for tolerant comparisons.
func fold(s string) string {
	stripped, _, err := transform.String(diacriticStripper, s)
	if err != nil {
		stripped = s
	}
	return strings.ToLower(strings.TrimSpace(stripped))
}

// foldEqual reports whether two names are equal under fold.
func foldEqual(a, b string) bool {
	return fold(a) == fold(b)
}
