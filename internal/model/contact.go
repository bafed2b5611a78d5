package model

import (
	"fmt"
	"time"
)

// SubmissionKind selects which fields a contact submission must carry.
type SubmissionKind int

const (
	// KindBasic accepts the text fields only.
	KindBasic SubmissionKind = iota
	// KindWithIdentityImage additionally requires an encoded identity image.
	KindWithIdentityImage
)

func (k SubmissionKind) String() string {
	switch k {
	case KindBasic:
		return "basic"
	case KindWithIdentityImage:
		return "identity"
	default:
		return fmt.Sprintf("SubmissionKind(%d)", int(k))
	}
}

// ParseSubmissionKind maps a configuration value ("basic" | "identity") to a SubmissionKind.
func ParseSubmissionKind(s string) (SubmissionKind, error) {
	switch s {
	case "basic":
		return KindBasic, nil
	case "identity", "":
		return KindWithIdentityImage, nil
	default:
		return 0, fmt.Errorf("unknown submission kind %q", s)
	}
}

// RequiresImage reports whether submissions of this kind must include an identity image.
func (k SubmissionKind) RequiresImage() bool {
	return k == KindWithIdentityImage
}

// ContactSubmission is the untrusted body of POST /api/contact.
type ContactSubmission struct {
	Name                string `json:"name"`
	Email               string `json:"email"`
	Phone               string `json:"phone"`
	Subject             string `json:"subject"`
	Message             string `json:"message"`
	IdentityImageBase64 string `json:"identityImageBase64,omitempty"`
}

// ContactMessage is a sanitized contact form submission.
// ID and CreatedAt are assigned by the repository on insert.
type ContactMessage struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	Phone            string    `json:"phone"`
	Subject          string    `json:"subject"`
	Message          string    `json:"message"`
	IdentityImageURL string    `json:"identity_image_url,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}
