package account

import "strings"

// NormalizeEmail trims surrounding whitespace only.
// Emails are case-sensitive keys: "A@x.com" and "a@x.com" are distinct accounts.
func NormalizeEmail(s string) string {
	return strings.TrimSpace(s)
}

// NormalizeName trims a first/last name.
func NormalizeName(s string) string {
	return strings.TrimSpace(s)
}
