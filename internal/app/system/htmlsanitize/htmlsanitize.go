// internal/app/system/htmlsanitize/htmlsanitize.go
package htmlsanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// strict removes every element and attribute. It is safe for concurrent use.
var strict = bluemonday.StrictPolicy()

// PlainText strips markup from free text supplied by clients and trims the
// result. Entities escaped by the policy are decoded again so stored text
// reads the way it was typed ("A & B" stays "A & B").
func PlainText(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}
