package render

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// slugTransformer decomposes accented characters and drops the combining
// marks, so "Déjà vu" slugifies to "deja-vu" rather than losing the letters.
var slugTransformer = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify converts heading text into a URL-safe anchor ID.
func Slugify(text string) string {
	if normalized, _, err := transform.String(slugTransformer, text); err == nil {
		text = normalized
	}

	var sb strings.Builder
	lastDash := true // suppress leading dashes
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			sb.WriteRune(r)
			lastDash = false
		case !lastDash:
			sb.WriteByte('-')
			lastDash = true
		}
	}
	return strings.TrimSuffix(sb.String(), "-")
}
