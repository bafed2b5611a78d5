package service

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/iscbashan/contact/internal/model"
)

// Rule identifiers reported in Violation.Rule.
const (
	RuleMinLength    = "min_length"
	RuleRequired     = "required"
	RuleEmail        = "email"
	RuleEncodedImage = "encoded_image"
)

var emailPattern = regexp.MustCompile(
	`^[A-Za-z0-9_'+\-]+(\.[A-Za-z0-9_'+\-]+)*@([A-Za-z0-9]([A-Za-z0-9\-]*[A-Za-z0-9])?\.)+[A-Za-z]{2,}$`)

// fieldRule is one declarative constraint. Rules for the same field are
// evaluated in order and only the first failure per field is reported.
type fieldRule struct {
	field string
	rule  string
	value func(in *model.ContactSubmission) string
	ok    func(v string) bool
}

func minRunes(n int) func(string) bool {
	return func(v string) bool { return utf8.RuneCountInString(v) >= n }
}

func trimmed(get func(in *model.ContactSubmission) string) func(in *model.ContactSubmission) string {
	return func(in *model.ContactSubmission) string { return strings.TrimSpace(get(in)) }
}

var textRules = []fieldRule{
	{field: "name", rule: RuleMinLength, value: trimmed(func(in *model.ContactSubmission) string { return in.Name }), ok: minRunes(2)},
	{field: "email", rule: RuleEmail, value: trimmed(func(in *model.ContactSubmission) string { return in.Email }), ok: emailPattern.MatchString},
	{field: "phone", rule: RuleMinLength, value: trimmed(func(in *model.ContactSubmission) string { return in.Phone }), ok: minRunes(8)},
	{field: "subject", rule: RuleRequired, value: trimmed(func(in *model.ContactSubmission) string { return in.Subject }), ok: minRunes(1)},
	{field: "message", rule: RuleMinLength, value: trimmed(func(in *model.ContactSubmission) string { return in.Message }), ok: minRunes(10)},
}

var imageRules = []fieldRule{
	{field: "identityImageBase64", rule: RuleRequired, value: trimmed(func(in *model.ContactSubmission) string { return in.IdentityImageBase64 }), ok: minRunes(1)},
	{field: "identityImageBase64", rule: RuleEncodedImage, value: func(in *model.ContactSubmission) string { return in.IdentityImageBase64 }, ok: isEncodedImage},
}

func rulesFor(kind model.SubmissionKind) []fieldRule {
	if kind.RequiresImage() {
		return append(append([]fieldRule{}, textRules...), imageRules...)
	}
	return textRules
}

// CheckSubmission evaluates every rule for kind and returns the violations in rule order.
func CheckSubmission(kind model.SubmissionKind, in *model.ContactSubmission) []Violation {
	var violations []Violation
	failed := make(map[string]bool)
	for _, r := range rulesFor(kind) {
		if failed[r.field] {
			continue
		}
		if !r.ok(r.value(in)) {
			failed[r.field] = true
			violations = append(violations, Violation{Field: r.field, Rule: r.rule})
		}
	}
	return violations
}

// ValidateSubmission returns a *ValidationError when in breaks any rule for kind.
// It performs no I/O.
func ValidateSubmission(kind model.SubmissionKind, in *model.ContactSubmission) error {
	if in == nil {
		return &ValidationError{Violations: []Violation{{Field: "body", Rule: RuleRequired}}}
	}
	if v := CheckSubmission(kind, in); len(v) > 0 {
		return &ValidationError{Violations: v}
	}
	return nil
}

func isEncodedImage(v string) bool {
	_, err := parseEncodedImage(v)
	return err == nil
}
