package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

var slugRegex = regexp.MustCompile(`^[a-z0-9-]{3,320}$`)

var reservedSlugs = map[string]struct{}{
	"admin":     {},
	"api":       {},
	"auth":      {},
	"bookmarks": {},
	"comments":  {},
	"drafts":    {},
	"feed":      {},
	"login":     {},
	"me":        {},
	"metrics":   {},
	"posts":     {},
	"search":    {},
	"settings":  {},
	"signup":    {},
	"tags":      {},
	"users":     {},
}

// Slugify converts a title into a URL-safe slug: lowercase, hyphen-separated,
// non-alphanumeric runs collapsed. The result may be empty for titles with no
// usable characters; callers must handle that case.
func Slugify(title string) string {
	var b strings.Builder
	lastHyphen := true // suppress leading hyphen
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case unicode.IsLetter(r) && r < 128, unicode.IsDigit(r) && r < 128:
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// ValidateSlug validates slug format and reserved names.
func ValidateSlug(slug string) error {
	if !slugRegex.MatchString(slug) {
		return fmt.Errorf("slug must contain only lowercase letters, numbers, and hyphens")
	}
	if strings.HasPrefix(slug, "-") || strings.HasSuffix(slug, "-") {
		return fmt.Errorf("slug cannot start or end with a hyphen")
	}
	if _, exists := reservedSlugs[slug]; exists {
		return fmt.Errorf("slug is reserved")
	}
	return nil
}
