package validators

import (
	"regexp"
	"strings"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

func NormalizeSlug(slug string) string {
	return strings.ToLower(strings.TrimSpace(slug))
}

// IsSlugValid accepts lowercase words joined by single dashes, up to 100 chars.
func IsSlugValid(slug string) bool {
	return len(slug) <= 100 && slugPattern.MatchString(slug)
}
