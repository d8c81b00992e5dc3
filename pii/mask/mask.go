// Package mask renders display-safe redactions of personal data.
// Masking is for presentation only and never touches ciphertext.
// Absent, empty, or ill-shaped input renders as "***", except for
// Passport, which always renders "** ** ******".
package mask

import "strings"

const redacted = "***"

// Email keeps the first two characters of the local part and the whole
// domain: "test@example.com" -> "te***@example.com". Local parts
// shorter than three characters are hidden entirely.
func Email(s string) string {
	at := strings.Index(s, "@")
	if s == "" || at < 0 {
		return redacted
	}

	local, domain := s[:at], s[at+1:]
	if len([]rune(local)) < 3 {
		return redacted + "@" + domain
	}
	return string([]rune(local)[:2]) + redacted + "@" + domain
}

// Phone keeps the leading digit (with + if the input carried one) and
// the last four digits: "+79991234567" -> "+7***4567".
func Phone(s string) string {
	digits := digitsOnly(s)
	if len(digits) < 7 {
		return redacted
	}

	first := string(digits[0])
	if strings.HasPrefix(strings.TrimSpace(s), "+") {
		first = "+" + first
	}
	return first + redacted + digits[len(digits)-4:]
}

// Name masks each word, keeping the first two characters of words that
// have at least three: "Иван Иванов" -> "Ив*** Ив***".
func Name(s string) string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return redacted
	}

	masked := make([]string, len(words))
	for i, word := range words {
		runes := []rune(word)
		if len(runes) >= 3 {
			masked[i] = string(runes[:2]) + redacted
		} else {
			masked[i] = redacted
		}
	}
	return strings.Join(masked, " ")
}

// INN keeps the first two and last four digits of a 10- or 12-digit
// INN: "7707083893" -> "77***3893".
func INN(s string) string {
	digits := digitsOnly(s)
	if len(digits) != 10 && len(digits) != 12 {
		return redacted
	}
	return digits[:2] + redacted + digits[len(digits)-4:]
}

// Card renders a card number as its last four digits in the familiar
// "**** **** **** dddd" shape. Display-only: card numbers are never
// vaulted by this library.
func Card(s string) string {
	digits := digitsOnly(s)
	if len(digits) < 4 {
		return redacted
	}
	return "**** **** **** " + digits[len(digits)-4:]
}

// Passport masks the series and number completely, regardless of
// content.
func Passport(series, number string) string {
	return "** ** ******"
}

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
