package auth

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9]{7,15}$`)
	loginPattern = regexp.MustCompile(`^[A-Za-z0-9._\-]{3,64}$`)
)

func validateEmail(email string) (string, error) {
	trimmed := strings.TrimSpace(email)
	if !emailPattern.MatchString(trimmed) {
		return "", ErrValidation
	}
	return strings.ToLower(trimmed), nil
}

func validatePhone(phone string) (string, error) {
	trimmed := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(strings.TrimSpace(phone))
	if !phonePattern.MatchString(trimmed) {
		return "", ErrValidation
	}
	return trimmed, nil
}

// encodePhoneForLookup percent-encodes a validated phone number. Provider
// lookups receive this form because the transport layer carries phone
// numbers percent-encoded (the leading plus would otherwise be lost).
func encodePhoneForLookup(phone string) string {
	return url.QueryEscape(phone)
}

func validateLogin(login string) (string, error) {
	trimmed := strings.TrimSpace(login)
	if !loginPattern.MatchString(trimmed) {
		return "", ErrValidation
	}
	return trimmed, nil
}
