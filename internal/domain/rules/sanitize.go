package rules

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MaxHandleLen      = 32
	MaxBioLen         = 240
	MaxDisplayNameLen = 64
	MaxMessageLen     = 500
	MaxHobbies        = 20
	MinHobbies        = 3

	minWhatsAppDigits = 10
	maxWhatsAppDigits = 15
)

var inviteCodePattern = regexp.MustCompile(`^[A-Za-z0-9]{6,16}$`)

// SanitizeInviteCode returns the upper-cased code, or false when it is malformed.
func SanitizeInviteCode(raw string) (string, bool) {
	code := strings.TrimSpace(raw)
	if !inviteCodePattern.MatchString(code) {
		return "", false
	}
	return strings.ToUpper(code), true
}

func SanitizeHandle(raw string) string {
	return truncate(strings.TrimSpace(raw), MaxHandleLen)
}

func SanitizeBio(raw string) string {
	return truncate(strings.TrimSpace(raw), MaxBioLen)
}

func SanitizeDisplayName(raw string) string {
	return truncate(strings.TrimSpace(raw), MaxDisplayNameLen)
}

// SanitizeMessage trims and truncates content; empty content is rejected.
func SanitizeMessage(raw string) (string, bool) {
	content := strings.TrimSpace(raw)
	if content == "" {
		return "", false
	}
	return truncate(content, MaxMessageLen), true
}

// SanitizeWhatsApp normalizes a phone number to "+<digits>" with 10 to 15 digits.
func SanitizeWhatsApp(raw string) (string, bool) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) < minWhatsAppDigits || len(digits) > maxWhatsAppDigits {
		return "", false
	}
	return "+" + digits, true
}

func SanitizeHobbies(raw []string) []string {
	out := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, item := range raw {
		hobby := strings.TrimSpace(item)
		if hobby == "" {
			continue
		}
		key := strings.ToLower(hobby)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, hobby)
		if len(out) == MaxHobbies {
			break
		}
	}
	return out
}

func truncate(value string, max int) string {
	if utf8.RuneCountInString(value) <= max {
		return value
	}
	runes := []rune(value)
	return string(runes[:max])
}
