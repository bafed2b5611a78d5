package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/iscbashan/contact/internal/storage"
)

// Violation names one failed field rule.
type Violation struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

// ValidationError is returned when a submission breaks one or more field rules.
// It is the only client-caused error of the pipeline.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.Field + ": " + v.Rule
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Fields returns the names of the offending fields in rule order.
func (e *ValidationError) Fields() []string {
	fields := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		fields[i] = v.Field
	}
	return fields
}

// StorageUploadError is returned when the identity image could not be stored.
type StorageUploadError struct {
	Key string
	Err error
}

func (e *StorageUploadError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("upload identity image: %v", e.Err)
	}
	return fmt.Sprintf("upload identity image %s: %v", e.Key, e.Err)
}

func (e *StorageUploadError) Unwrap() error { return e.Err }

// StatusCode is the blob store's HTTP status, or 0 when the failure happened before a response.
func (e *StorageUploadError) StatusCode() int {
	var upErr *storage.UploadError
	if errors.As(e.Err, &upErr) {
		return upErr.StatusCode
	}
	return 0
}

// PersistenceError is returned when the contact message could not be inserted.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string { return fmt.Sprintf("persist contact message: %v", e.Err) }

func (e *PersistenceError) Unwrap() error { return e.Err }

// NotificationError describes a failed notification. It is logged by the
// notifier and never returned from ContactService.Submit.
type NotificationError struct {
	Err error
}

func (e *NotificationError) Error() string { return fmt.Sprintf("send notification: %v", e.Err) }

func (e *NotificationError) Unwrap() error { return e.Err }
