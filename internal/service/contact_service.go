package service

import (
	"context"

	"github.com/iscbashan/contact/internal/model"
)

// ContactService defines the business logic for contact form submissions.
type ContactService interface {
	// Submit validates, sanitizes and stores a submission, uploading its
	// identity image first when the variant requires one, then sends a
	// best-effort notification. The returned message carries the ID and
	// CreatedAt assigned by the repository.
	//
	// Errors are *ValidationError, *StorageUploadError or *PersistenceError.
	// Notification failures are never returned.
	Submit(ctx context.Context, in *model.ContactSubmission) (*model.ContactMessage, error)
}
