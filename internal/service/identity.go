package service

import (
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// normalizeEmail lowercases and trims an address. Bare usernames without an
// @ are accepted and suffixed with "@user" so they remain unique keys.
func normalizeEmail(raw string) string {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return ""
	}
	if !strings.Contains(email, "@") {
		return email + "@user"
	}
	return email
}

// validEmail reports whether a normalized address is a usable email or a
// bare-username placeholder.
func validEmail(email string) bool {
	if strings.HasSuffix(email, "@user") && !strings.Contains(strings.TrimSuffix(email, "@user"), "@") {
		return email != "@user"
	}
	return emailPattern.MatchString(email)
}

// emailLocalPart returns everything before the @, used as the default
// password for provisioned accounts.
func emailLocalPart(email string) string {
	if idx := strings.Index(email, "@"); idx > 0 {
		return email[:idx]
	}
	return email
}
