package utils

import (
	"net/mail"
	"strings"
	"unicode"
)

// NormalizeString trims surrounding whitespace from form input.
func NormalizeString(s string) string {
	return strings.TrimSpace(s)
}

// NormalizeService lowercases and trims a service selection so it can be
// matched against the fixed service vocabulary.
func NormalizeService(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// StripPhoneWhitespace removes whitespace from a phone number and nothing
// else. Separators like dashes are left in place on purpose so they fail
// the phone pattern instead of being silently repaired.
func StripPhoneWhitespace(phone string) string {
	var result strings.Builder
	for _, r := range phone {
		if unicode.IsSpace(r) {
			continue
		}
		result.WriteRune(r)
	}
	return result.String()
}

// IsValidEmail checks that the input is a bare RFC 5322 address with a
// dot in the domain. Display-name forms like "Ion <ion@example.com>" are
// rejected; the form field carries the address alone.
func IsValidEmail(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" {
		return false
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return false
	}

	at := strings.LastIndex(addr.Address, "@")
	domain := addr.Address[at+1:]
	return strings.Contains(domain, ".")
}
