// Package slug derives URL-safe dataset names from free-text metadata.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// maxNameLen is the platform's limit on dataset names.
const maxNameLen = 99

// boundaryTheme is the administrative-boundary theme token that, combined
// with a Myanmar-only location, switches name derivation to the title.
const boundaryTheme = "COD_AB"

// asciiFold decomposes accented characters and strips the combining marks,
// so "São Tomé" slugs the same as "Sao Tome".
var asciiFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Make converts free text to a slug: lowercase, runs of non-alphanumeric
// characters collapsed to single hyphens, leading/trailing hyphens stripped.
func Make(s string) string {
	folded, _, err := transform.String(asciiFold, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	b.Grow(len(folded))
	pendingHyphen := false
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		} else {
			pendingHyphen = true
		}
	}
	return b.String()
}

// DeriveName computes the stable dataset name. Administrative-boundary
// datasets covering only Myanmar are named after the title; everything else
// is named after the theme and locations. The result is truncated to 99
// characters after slugification, which may cut mid-word; downstream relies
// on that exact behavior, so it is deliberate.
func DeriveName(title, theme string, locations []string) string {
	var name string
	if theme == boundaryTheme && len(locations) == 1 && strings.EqualFold(locations[0], "MMR") {
		name = Make(title)
	} else {
		name = Make(theme + " " + strings.Join(locations, " "))
	}
	if len(name) > maxNameLen {
		name = name[:maxNameLen]
	}
	return name
}
