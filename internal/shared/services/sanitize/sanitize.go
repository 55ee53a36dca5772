// Package sanitize strips markup from free-text fields before they are stored.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

type TextSanitizer interface {
	// Text removes every tag and returns plain, trimmed text.
	Text(s string) string
}

type textSanitizer struct {
	policy *bluemonday.Policy
}

func NewTextSanitizer() TextSanitizer {
	return &textSanitizer{policy: bluemonday.StrictPolicy()}
}

func (s *textSanitizer) Text(in string) string {
	// StrictPolicy escapes what it keeps; stored values are plain text.
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(in)))
}
