// internal/app/system/normalize/normalize.go
package normalize

import "strings"

// Email trims and lowercases an email address. Emails are unique and
// compared case-insensitively, so every store write and lookup goes
// through here.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace and preserves case.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Status trims and lowercases an account status filter value.
func Status(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// QueryParam trims a free-text query parameter.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}

// StatusFilter maps a list filter value to a status, treating "all" and
// empty as no filter.
func StatusFilter(s string) string {
	s = Status(s)
	if s == "all" {
		return ""
	}
	return s
}
