// Package validate holds local input validation applied before any network write.
package validate

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	emailMinLen = 5
	emailMaxLen = 320

	passwordMinLen = 8

	usernameMinLen = 2
	usernameMaxLen = 50

	titleMaxLen = 200
)

var (
	emailRe    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

	hasLowerRe = regexp.MustCompile(`[a-z]`)
	hasUpperRe = regexp.MustCompile(`[A-Z]`)
	hasDigitRe = regexp.MustCompile(`[0-9]`)

	htmlTagRe = regexp.MustCompile(`<[^>]*>`)

	// Patterns that reject free-text fields outright.
	suspiciousRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bjavascript:`),
		regexp.MustCompile(`(?i)\bdata:`),
		regexp.MustCompile(`(?i)\bon\w+\s*=`),
		regexp.MustCompile(`(?i)\beval\s*\(`),
		regexp.MustCompile(`(?i)<iframe`),
		regexp.MustCompile(`(?i)<object`),
		regexp.MustCompile(`(?i)<embed`),
		regexp.MustCompile(`(?i)<meta`),
	}
)

// Email checks address shape and length bounds.
func Email(email string) error {
	if len(email) < emailMinLen || len(email) > emailMaxLen {
		return fmt.Errorf("email must be between %d and %d characters", emailMinLen, emailMaxLen)
	}
	if !emailRe.MatchString(email) {
		return fmt.Errorf("malformed email address")
	}
	return nil
}

// Password enforces minimum length and character-class requirements.
func Password(password string) error {
	if len(password) < passwordMinLen {
		return fmt.Errorf("password must be at least %d characters long", passwordMinLen)
	}
	if !hasLowerRe.MatchString(password) {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !hasUpperRe.MatchString(password) {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !hasDigitRe.MatchString(password) {
		return fmt.Errorf("password must contain at least one number")
	}
	return nil
}

// Username restricts display names to a safe character set.
func Username(username string) error {
	if len(username) < usernameMinLen {
		return fmt.Errorf("username must be at least %d characters long", usernameMinLen)
	}
	if len(username) > usernameMaxLen {
		return fmt.Errorf("username must be at most %d characters", usernameMaxLen)
	}
	if !usernameRe.MatchString(username) {
		return fmt.Errorf("username can only contain letters, numbers, underscores, and hyphens")
	}
	return nil
}

// Title sanitizes a free-text field and rejects suspicious content.
// The returned string is the sanitized value.
func Title(title string) (string, error) {
	if len(title) > titleMaxLen {
		return "", fmt.Errorf("title exceeds maximum length of %d characters", titleMaxLen)
	}
	for _, re := range suspiciousRes {
		if re.MatchString(title) {
			return "", fmt.Errorf("title contains potentially malicious content")
		}
	}
	return Sanitize(title), nil
}

// Sanitize trims the input, strips HTML tags and control characters.
func Sanitize(in string) string {
	s := strings.TrimSpace(in)
	s = htmlTagRe.ReplaceAllString(s, "")
	return strings.Map(func(r rune) rune {
		if r < 0x20 || (r >= 0x7F && r <= 0x9F) {
			return -1
		}
		return r
	}, s)
}
