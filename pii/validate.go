package pii

import (
	"regexp"
	"strings"
)

// emailPattern accepts local@domain.tld with a non-empty local part and
// a domain whose last label has at least two characters.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@.]{2,}$`)

// ValidateEmail reports whether s has the shape of an email address.
// Validators never raise on unrecognized shapes; they only report.
func ValidateEmail(s string) bool {
	return emailPattern.MatchString(strings.TrimSpace(s))
}

// ValidatePhone reports whether s normalizes to 10-15 digits.
func ValidatePhone(s string) bool {
	n := len(NormalizePhone(s))
	return n >= 10 && n <= 15
}

// ValidateINN reports whether s reduces to a 10-digit (company) or
// 12-digit (individual) INN. The control-digit checksum is not
// verified.
func ValidateINN(s string) bool {
	n := len(digitsOnly(s))
	return n == 10 || n == 12
}
