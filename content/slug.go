package content

import (
	"strings"
	"unicode"
)

// Slugify derives the URL slug for a title. Letters are lowercased, word
// characters and hyphens are kept, whitespace runs become one hyphen and
// hyphen runs collapse. Hyphens at either end are kept, so "Rock -" gives
// "rock-". A title without any letter or digit yields "".
func Slugify(title string) string {
	var b strings.Builder
	sep := false
	alnum := false
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			alnum = true
			fallthrough
		case r == '_':
			if sep {
				b.WriteByte('-')
			}
			sep = false
			b.WriteRune(r)
		case r == '-' || unicode.IsSpace(r):
			sep = true
		}
	}
	if !alnum {
		return ""
	}
	if sep {
		b.WriteByte('-')
	}
	return b.String()
}
