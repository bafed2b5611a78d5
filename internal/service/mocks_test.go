package service

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/iscbashan/contact/internal/model"
	"github.com/iscbashan/contact/pkg/mailer"
)

// pngDataURL is a data URL whose payload is the 8-byte PNG signature.
const pngDataURL = "data:image/png;base64,iVBORw0KGgo="

// ---------------------------------------------------------------------------
// mockContactRepository: in-memory ContactRepository
// ---------------------------------------------------------------------------

type mockContactRepository struct {
	mu       sync.Mutex
	rows     []model.ContactMessage
	saveFunc func(ctx context.Context, msg *model.ContactMessage) error
}

func (m *mockContactRepository) Save(ctx context.Context, msg *model.ContactMessage) error {
	if m.saveFunc != nil {
		if err := m.saveFunc(ctx, msg); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	msg.ID = fmt.Sprintf("msg-%d", len(m.rows)+1)
	msg.CreatedAt = time.Now().UTC()
	m.rows = append(m.rows, *msg)
	return nil
}

func (m *mockContactRepository) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

// ---------------------------------------------------------------------------
// mockStorage: storage.Storage
// ---------------------------------------------------------------------------

type mockStorage struct {
	saveFunc   func(ctx context.Context, key string, data []byte, contentType string) (string, error)
	deleteFunc func(ctx context.Context, key string) error

	savedKeys   []string
	savedTypes  []string
	savedData   [][]byte
	deletedKeys []string
}

func (m *mockStorage) Save(ctx context.Context, key string, data io.Reader, contentType string) (string, error) {
	b, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}
	if m.saveFunc != nil {
		url, err := m.saveFunc(ctx, key, b, contentType)
		if err != nil {
			return "", err
		}
		m.record(key, b, contentType)
		return url, nil
	}
	m.record(key, b, contentType)
	return "https://blob.example.com/public/" + key, nil
}

func (m *mockStorage) record(key string, b []byte, contentType string) {
	m.savedKeys = append(m.savedKeys, key)
	m.savedTypes = append(m.savedTypes, contentType)
	m.savedData = append(m.savedData, b)
}

func (m *mockStorage) Delete(ctx context.Context, key string) error {
	m.deletedKeys = append(m.deletedKeys, key)
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, key)
	}
	return nil
}

// ---------------------------------------------------------------------------
// mockSender: mailer.Sender
// ---------------------------------------------------------------------------

type mockSender struct {
	configured bool
	sendFunc   func(ctx context.Context, msg mailer.Message) error

	mu   sync.Mutex
	sent []mailer.Message
}

func (m *mockSender) Configured() bool { return m.configured }

func (m *mockSender) Send(ctx context.Context, msg mailer.Message) error {
	m.mu.Lock()
	m.sent = append(m.sent, msg)
	m.mu.Unlock()
	if m.sendFunc != nil {
		return m.sendFunc(ctx, msg)
	}
	return nil
}

func (m *mockSender) sentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

// ---------------------------------------------------------------------------
// recordingNotifier: Notifier
// ---------------------------------------------------------------------------

type recordingNotifier struct {
	notified []*model.ContactMessage
	ctxErr   error
}

func (n *recordingNotifier) Notify(ctx context.Context, msg *model.ContactMessage) {
	n.ctxErr = ctx.Err()
	n.notified = append(n.notified, msg)
}

func validSubmission() *model.ContactSubmission {
	return &model.ContactSubmission{
		Name:                "Jane Doe",
		Email:               "JANE@Example.com ",
		Phone:               "+1 (555) 123-4567 ext",
		Subject:             "Hi",
		Message:             "This is a test message.",
		IdentityImageBase64: pngDataURL,
	}
}
