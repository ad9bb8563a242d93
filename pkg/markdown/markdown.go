// Package markdown removes the code-fence wrapping that chat models add
// around responses even when told not to.
package markdown

import (
	"regexp"
	"strings"
)

var (
	langFence = regexp.MustCompile("(?s)```(?:html|markdown|md|json|)\\s*(.*?)\\s*```")
	bareFence = regexp.MustCompile("(?s)```\\s*(.*?)\\s*```")
)

// CleanFences strips ```lang ... ``` and bare ``` delimiters from text,
// keeping the inner content, and trims surrounding whitespace. Cleaning
// already-clean text is a no-op.
func CleanFences(text string) string {
	cleaned := langFence.ReplaceAllString(text, "$1")
	cleaned = bareFence.ReplaceAllString(cleaned, "$1")
	return strings.TrimSpace(cleaned)
}
