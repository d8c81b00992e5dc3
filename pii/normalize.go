// Package pii provides canonicalization and shape validation for
// personal data. Callers normalize values with these helpers before
// computing blind indexes or storing, so that equal identities written
// in different notations canonicalize to the same bytes.
package pii

import "strings"

// NormalizePhone reduces a phone number to its canonical digit form.
// Formatting characters are stripped; Russian numbers written with the
// national 8 trunk prefix or without a country code are rewritten to
// the international 7 form. Anything else is returned digit-only as-is.
func NormalizePhone(s string) string {
	digits := digitsOnly(s)
	if digits == "" {
		return ""
	}

	switch {
	case len(digits) == 11 && digits[0] == '8':
		return "7" + digits[1:]
	case len(digits) == 10:
		return "7" + digits
	}
	return digits
}

// NormalizeEmail trims surrounding whitespace and lowercases.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// digitsOnly strips every non-digit byte.
func digitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
