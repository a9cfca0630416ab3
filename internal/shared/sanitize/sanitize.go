// Package sanitize strips markup-like fragments from free-text input.
// It is a defensive allowlist-light cleaner, not a full HTML sanitizer:
// stored values are plain text and are escaped again at render time.
package sanitize

import (
	"regexp"
	"strings"
)

var (
	// angleBrackets removes anything that could open or close a tag.
	angleBrackets = regexp.MustCompile(`[<>]`)

	// jsScheme removes javascript: scheme prefixes.
	jsScheme = regexp.MustCompile(`(?i)javascript\s*:`)

	// eventHandler removes inline event-handler-like patterns (onclick=, onload=, ...).
	eventHandler = regexp.MustCompile(`(?i)\bon\w+\s*=`)
)

// Clean trims surrounding whitespace and strips angle brackets,
// javascript: scheme prefixes and on*= event-handler patterns.
func Clean(s string) string {
	s = angleBrackets.ReplaceAllString(s, "")
	s = jsScheme.ReplaceAllString(s, "")
	s = eventHandler.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
