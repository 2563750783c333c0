// Package sanitize cleans free-text input before it reaches the store.
package sanitize

import (
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
)

var htmlPolicy = bluemonday.UGCPolicy()

// HTML strips markup down to a safe-tag allowlist.
func HTML(input string) string {
	return htmlPolicy.Sanitize(input)
}

// Text removes C0 control characters except tab, newline and carriage
// return.
func Text(input string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, input)
}

// Email lowercases and trims.
func Email(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}

// Phone keeps digits and a leading plus, dropping separators.
func Phone(input string) string {
	trimmed := strings.TrimSpace(input)
	var b strings.Builder
	for i, r := range trimmed {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else if i == 0 && r == '+' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidPhone reports whether a normalized phone matches ^\+?[0-9]{2,15}$.
func ValidPhone(phone string) bool {
	digits := strings.TrimPrefix(phone, "+")
	if len(digits) < 2 || len(digits) > 15 {
		return false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// URL allows http, https and mailto schemes; scheme-less input is assumed
// https. javascript:, data: and other schemes are rejected.
func URL(input string) (string, bool) {
	trimmed := strings.TrimSpace(input)
	lower := strings.ToLower(trimmed)
	switch {
	case strings.HasPrefix(lower, "http://"),
		strings.HasPrefix(lower, "https://"),
		strings.HasPrefix(lower, "mailto:"):
		return trimmed, true
	case !strings.Contains(trimmed, "://") && !strings.Contains(lower, ":"):
		return "https://" + trimmed, true
	default:
		return "", false
	}
}

// FilePath rejects traversal components.
func FilePath(input string) (string, bool) {
	cleaned := strings.Trim(input, "/\\")
	for _, part := range strings.FieldsFunc(cleaned, func(r rune) bool {
		return r == '/' || r == '\\'
	}) {
		if part == ".." {
			return "", false
		}
	}
	return cleaned, true
}

// Name cleans a person name: control characters out, edges trimmed.
func Name(input string) string {
	return strings.TrimSpace(Text(input))
}

// Notes cleans multi-line free text: HTML down to the allowlist, control
// characters out.
func Notes(input string) string {
	return Text(HTML(input))
}
