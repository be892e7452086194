package watcher

import (
	"regexp"
	"strconv"
)

// statusToken matches standalone 3-digit codes inside a status field.
var statusToken = regexp.MustCompile(`\b\d{3}\b`)

// IsServerError reports whether any embedded 3-digit status token falls in
// [500,600). The field may be multi-valued ("500, 304"); malformed tokens
// are skipped, never fatal. Empty or non-numeric input is not an error.
func IsServerError(status string) bool {
	for _, tok := range statusToken.FindAllString(status, -1) {
		code, err := strconv.Atoi(tok)
		if err != nil {
			continue
		}
		if code >= 500 && code < 600 {
			return true
		}
	}
	return false
}
