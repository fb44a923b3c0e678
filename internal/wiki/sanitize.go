package wiki

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// SanitizeUser canonicalizes a username the way the wiki does:
// underscores become spaces, surrounding whitespace is dropped, and the
// result is NFC-normalized so visually identical names compare equal.
func SanitizeUser(name string) string {
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.TrimSpace(name)
	return norm.NFC.String(name)
}

// SanitizeTitle canonicalizes a page title for comparison
func SanitizeTitle(title string) string {
	title = strings.ReplaceAll(title, "_", " ")
	title = strings.TrimSpace(title)
	return norm.NFC.String(title)
}
