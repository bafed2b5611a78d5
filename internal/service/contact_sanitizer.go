package service

import (
	"strings"
	"unicode"

	"github.com/iscbashan/contact/internal/model"
)

// Maximum stored lengths, in code points.
const (
	MaxNameLength    = 100
	MaxEmailLength   = 100
	MaxPhoneLength   = 20
	MaxSubjectLength = 50
	MaxMessageLength = 1000
)

// SanitizeSubmission normalizes a validated submission into the stored shape.
// Applying it to its own output yields the same record.
func SanitizeSubmission(in *model.ContactSubmission) model.ContactMessage {
	return model.ContactMessage{
		Name:    capText(in.Name, MaxNameLength),
		Email:   capText(strings.ToLower(strings.TrimSpace(in.Email)), MaxEmailLength),
		Phone:   capText(filterPhone(in.Phone), MaxPhoneLength),
		Subject: capText(in.Subject, MaxSubjectLength),
		Message: capText(in.Message, MaxMessageLength),
	}
}

// capText trims s, truncates it to max code points and drops whitespace the
// cut may have exposed at the end.
func capText(s string, max int) string {
	s = strings.TrimSpace(s)
	n := 0
	for i := range s {
		if n == max {
			s = s[:i]
			break
		}
		n++
	}
	return strings.TrimRightFunc(s, unicode.IsSpace)
}

// filterPhone keeps ASCII digits, '+', '-', ' ', '(' and ')'.
func filterPhone(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9':
			return r
		case r == '+', r == '-', r == ' ', r == '(', r == ')':
			return r
		default:
			return -1
		}
	}, s)
}
