package service

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/iscbashan/contact/internal/model"
)

func TestSanitizeSubmission_EndToEndExample(t *testing.T) {
	got := SanitizeSubmission(validSubmission())

	if got.Name != "Jane Doe" {
		t.Errorf("name: got %q", got.Name)
	}
	if got.Email != "jane@example.com" {
		t.Errorf("email: expected jane@example.com, got %q", got.Email)
	}
	if got.Phone != "+1 (555) 123-4567" {
		t.Errorf("phone: expected %q, got %q", "+1 (555) 123-4567", got.Phone)
	}
	if got.Subject != "Hi" {
		t.Errorf("subject: got %q", got.Subject)
	}
	if got.Message != "This is a test message." {
		t.Errorf("message should be unchanged, got %q", got.Message)
	}
	if got.IdentityImageURL != "" || got.ID != "" {
		t.Errorf("sanitizer must not set image url or id: %+v", got)
	}
}

func TestSanitizeSubmission_Truncation(t *testing.T) {
	in := &model.ContactSubmission{
		Name:    strings.Repeat("n", 150),
		Email:   strings.Repeat("e", 120) + "@example.com",
		Phone:   strings.Repeat("1", 30),
		Subject: strings.Repeat("s", 80),
		Message: strings.Repeat("m", 1500),
	}
	got := SanitizeSubmission(in)

	if got.Name != strings.Repeat("n", 100) {
		t.Errorf("expected first 100 name characters, got %d", len(got.Name))
	}
	if got.Message != in.Message[:1000] {
		t.Errorf("expected first 1000 message characters, got %d", len(got.Message))
	}
	if utf8.RuneCountInString(got.Email) != MaxEmailLength {
		t.Errorf("expected email capped at %d, got %d", MaxEmailLength, utf8.RuneCountInString(got.Email))
	}
	if len(got.Phone) != MaxPhoneLength {
		t.Errorf("expected phone capped at %d, got %d", MaxPhoneLength, len(got.Phone))
	}
	if len(got.Subject) != MaxSubjectLength {
		t.Errorf("expected subject capped at %d, got %d", MaxSubjectLength, len(got.Subject))
	}
}

func TestSanitizeSubmission_CutOnWhitespaceDropsTrailingSpace(t *testing.T) {
	// the 100th character is a space: the stored name keeps the first 99
	in := &model.ContactSubmission{Name: strings.Repeat("a", 99) + " " + strings.Repeat("b", 50)}

	got := SanitizeSubmission(in)

	if got.Name != strings.Repeat("a", 99) {
		t.Errorf("expected 99 characters without the trailing space, got %d: %q", len(got.Name), got.Name)
	}
	if again := SanitizeSubmission(&model.ContactSubmission{Name: got.Name}); again.Name != got.Name {
		t.Errorf("expected a stable result, got %q then %q", got.Name, again.Name)
	}
}

func TestSanitizeSubmission_TruncatesOnCodePoints(t *testing.T) {
	in := &model.ContactSubmission{Name: strings.Repeat("م", 150)}
	got := SanitizeSubmission(in)

	if !utf8.ValidString(got.Name) {
		t.Fatal("truncation produced invalid UTF-8")
	}
	if n := utf8.RuneCountInString(got.Name); n != MaxNameLength {
		t.Errorf("expected %d code points, got %d", MaxNameLength, n)
	}
}

func TestSanitizeSubmission_PhoneCharacterSet(t *testing.T) {
	inputs := []string{
		"+1 (555) 123-4567 ext 89",
		"tel:+44\t20 7946 0958",
		"００１２３４５６７８", // full-width digits are not ASCII digits
		"<script>alert(1)</script>555-0100",
		"+972-50-123-4567#",
	}
	for _, raw := range inputs {
		got := SanitizeSubmission(&model.ContactSubmission{Phone: raw}).Phone
		for _, r := range got {
			if !strings.ContainsRune("0123456789+- ()", r) {
				t.Errorf("phone %q: sanitized %q contains %q", raw, got, r)
			}
		}
		if got != strings.TrimSpace(got) {
			t.Errorf("phone %q: sanitized %q has surrounding spaces", raw, got)
		}
	}
}

func TestSanitizeSubmission_EmailLowercaseTrimmed(t *testing.T) {
	got := SanitizeSubmission(&model.ContactSubmission{Email: "  Mixed.Case@Example.ORG\n"}).Email
	if got != "mixed.case@example.org" {
		t.Errorf("expected lowercase trimmed email, got %q", got)
	}
}

func TestSanitizeSubmission_Idempotent(t *testing.T) {
	inputs := []*model.ContactSubmission{
		validSubmission(),
		{
			Name:    "  " + strings.Repeat("a", 99) + "   b  ",
			Email:   "  USER@EXAMPLE.COM ",
			Phone:   "+1 (555) 123-4567     999 extension",
			Subject: strings.Repeat("x", 49) + " y",
			Message: strings.Repeat("word ", 300),
		},
		{Name: strings.Repeat("İ", 120), Email: "İ@example.com", Phone: "((((((((((((((((((((()))", Subject: "s", Message: "\n\tmessage body here\n"},
	}

	for i, in := range inputs {
		once := SanitizeSubmission(in)
		twice := SanitizeSubmission(&model.ContactSubmission{
			Name: once.Name, Email: once.Email, Phone: once.Phone, Subject: once.Subject, Message: once.Message,
		})
		if once != twice {
			t.Errorf("input %d: sanitization not idempotent:\n once=%+v\ntwice=%+v", i, once, twice)
		}
	}
}
