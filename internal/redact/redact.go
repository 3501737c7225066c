package redact

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/dshills/feedbackform/internal/feedback"
)

const redacted = "[REDACTED]"

// patterns holds the personal-data regexes applied to free text, in priority order.
var patterns = []*regexp.Regexp{
	// Email addresses
	regexp.MustCompile(`[\w.\-+]+@[\w\-]+(?:\.[\w\-]+)+`),
	// Phone numbers: seven or more digits with optional separators
	regexp.MustCompile(`\+?\d[\d\s().\-]{5,}\d`),
}

// Redact replaces email addresses and phone numbers in input with [REDACTED].
func Redact(input string) string {
	for _, re := range patterns {
		input = re.ReplaceAllString(input, redacted)
	}
	return input
}

// Record returns a copy of r that is safe to log: the name is reduced to
// initials, email and phone are masked, and the message is redacted.
func Record(r feedback.Record) feedback.Record {
	return feedback.Record{
		Name:     Initials(r.Name),
		Email:    MaskEmail(r.Email),
		Phone:    MaskPhone(r.Phone),
		Birthday: r.Birthday,
		Message:  Redact(r.Message),
	}
}

// Initials reduces "JOHN SMITH" to "J. S.".
func Initials(name string) string {
	parts := strings.Fields(name)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		r, _ := utf8.DecodeRuneInString(p)
		out = append(out, string(r)+".")
	}
	return strings.Join(out, " ")
}

// mask shows only the first prefixLen and last suffixLen bytes of s.
func mask(s string, prefixLen, suffixLen int) string {
	if s == "" {
		return ""
	}
	// Short values are fully starred so their length is all that leaks.
	if len(s) < prefixLen+suffixLen+3 {
		return strings.Repeat("*", len(s))
	}
	return s[:prefixLen] + "..." + s[len(s)-suffixLen:]
}

// MaskEmail masks the local part and keeps the domain.
func MaskEmail(email string) string {
	local, domain, ok := strings.Cut(email, "@")
	if !ok {
		return mask(email, 2, 2)
	}
	return mask(local, 2, 1) + "@" + domain
}

// MaskPhone replaces every digit but the last two with '*'. The country code
// and template punctuation are kept so the shape stays readable.
func MaskPhone(phone string) string {
	total := 0
	for i := 0; i < len(phone); i++ {
		if phone[i] >= '0' && phone[i] <= '9' {
			total++
		}
	}
	b := []byte(phone)
	seen := 0
	for i := range b {
		if b[i] < '0' || b[i] > '9' {
			continue
		}
		seen++
		// Keep the leading country code digit and the final two digits.
		if seen == 1 && i > 0 && phone[i-1] == '+' {
			continue
		}
		if seen > total-2 {
			continue
		}
		b[i] = '*'
	}
	return string(b)
}
