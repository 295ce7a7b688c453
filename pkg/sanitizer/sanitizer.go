// Package sanitizer normalizes admin input before validation and storage.
// All functions are idempotent and handle bad input by returning a cleaned
// value rather than an error.
package sanitizer

import "strings"

// NormalizeString collapses runs of whitespace into single spaces and trims
// the result.
func NormalizeString(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeCurrency trims and uppercases a currency code. The code is
// free-text by design; uppercase is the convention the storefront renders.
func NormalizeCurrency(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// NormalizeEmail lowercases an email for allow-list comparison.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeURLList drops empty entries while preserving order; image order is
// display order and must survive round trips untouched.
func NormalizeURLList(urls []string) []string {
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if trimmed := strings.TrimSpace(u); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// ClampInt bounds n to [min, max].
func ClampInt(n, min, max int) int {
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}
