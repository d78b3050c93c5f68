// Package validate holds pure validators for applicant answers.
package validate

import (
	"regexp"
	"strings"
	"time"
)

var (
	nameRe     = regexp.MustCompile(`^[\p{L}\s'-]+$`)
	dateRe     = regexp.MustCompile(`^(\d{2})\.(\d{2})\.(\d{4})$`)
	digitsRe   = regexp.MustCompile(`\D`)
	durationRe = regexp.MustCompile(`(?i)^(\d+)\s*(oy|yil)$`)
	salaryRe   = regexp.MustCompile(`^\d+$`)
	spaceRe    = regexp.MustCompile(`\s+`)
)

// SanitizeText trims the input and collapses internal whitespace runs.
func SanitizeText(s string) string {
	return spaceRe.ReplaceAllString(strings.TrimSpace(s), " ")
}

// Name reports whether s looks like a person's full name: 3..100 runes of
// letters, spaces, hyphens and apostrophes.
func Name(s string) bool {
	trimmed := strings.TrimSpace(s)
	n := len([]rune(trimmed))
	if n < 3 || n > 100 {
		return false
	}
	return nameRe.MatchString(trimmed)
}

// BirthDate parses a DD.MM.YYYY birth date and reports whether it denotes a
// real calendar day in the past (and after 1900).
func BirthDate(s string) (time.Time, bool) {
	m := dateRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation("02.01.2006", m[0], time.Local)
	if err != nil {
		return time.Time{}, false
	}
	now := time.Now()
	floor := time.Date(1900, time.January, 1, 0, 0, 0, 0, time.Local)
	if !t.Before(now) || !t.After(floor) {
		return time.Time{}, false
	}
	return t, true
}

// NormalizeBirthDate rewrites common date separators to the canonical
// DD.MM.YYYY form before validation.
func NormalizeBirthDate(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "/", ".")
	s = strings.ReplaceAll(s, "-", ".")
	return s
}

// Phone reports whether s is an Uzbek phone number: 12 digits starting
// with 998, ignoring formatting characters.
func Phone(s string) bool {
	cleaned := digitsRe.ReplaceAllString(s, "")
	return len(cleaned) == 12 && strings.HasPrefix(cleaned, "998")
}

// Duration reports whether s is a free-form work duration like
// "6 oy" or "2 yil".
func Duration(s string) bool {
	return durationRe.MatchString(strings.TrimSpace(s))
}

// Salary reports whether s is a bare positive integer amount.
func Salary(s string) bool {
	return salaryRe.MatchString(strings.TrimSpace(s))
}

// Age returns the full years elapsed since the given DD.MM.YYYY birth
// date, or -1 when the input does not parse.
func Age(birthDate string, now time.Time) int {
	t, ok := BirthDate(birthDate)
	if !ok {
		return -1
	}
	age := now.Year() - t.Year()
	if now.Month() < t.Month() || (now.Month() == t.Month() && now.Day() < t.Day()) {
		age--
	}
	if age < 0 {
		return -1
	}
	return age
}
