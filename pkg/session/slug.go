package session

import (
	"strings"
	"unicode"
)

// DefaultSlugMaxLength caps generated slugs.
const DefaultSlugMaxLength = 50

// PlaceholderTitle is the title written into every new record.
const PlaceholderTitle = "[Set title once task is clear]"

// placeholderTitles are titles that mean "not set yet". Compared
// case-insensitively after trimming.
var placeholderTitles = []string{
	PlaceholderTitle,
	"[Session Title]",
	"[Title]",
	"Untitled",
	"Untitled Session",
	DefaultSlug,
}

// IsPlaceholderTitle reports whether title is empty or one of the
// recognized unset placeholders.
func IsPlaceholderTitle(title string) bool {
	title = strings.TrimSpace(title)
	if title == "" {
		return true
	}
	for _, p := range placeholderTitles {
		if strings.EqualFold(title, p) {
			return true
		}
	}
	return false
}

// Slugify turns a title into a filename-safe slug: lowercase, only
// [a-z0-9-], whitespace runs become one hyphen, repeated hyphens collapse,
// no leading or trailing hyphen, at most maxLen bytes.
func Slugify(title string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultSlugMaxLength
	}

	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		}
	}

	slug := strings.Join(strings.Fields(b.String()), "-")
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	slug = strings.Trim(slug, "-")

	if len(slug) > maxLen {
		slug = strings.TrimRight(slug[:maxLen], "-")
	}
	return slug
}
