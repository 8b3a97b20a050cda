// Package sanitize cleans user-supplied text before it is stored.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// Text strips all markup from s and trims surrounding whitespace. Entities
// escaped by the policy are decoded again since the API serves JSON, not HTML.
func Text(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

// OptionalText applies Text to a non-nil pointer
func OptionalText(s *string) *string {
	if s == nil {
		return nil
	}
	clean := Text(*s)
	return &clean
}
