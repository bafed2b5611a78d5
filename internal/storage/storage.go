package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// Storage は画像ファイルの保存・削除を抽象化するインターフェース。
// Supabase Storage 実装の他、開発用にローカルファイルシステム実装がある。
type Storage interface {
	// Save はファイルを保存し、公開 URL を返す。
	// key はストレージ内の一意パス (例: "identity_1700000000000_<uuid>.png")。
	Save(ctx context.Context, key string, data io.Reader, contentType string) (url string, err error)

	// Delete は key に対応するファイルを削除する。
	Delete(ctx context.Context, key string) error
}

// ErrNotConfigured is returned when the blob store URL or access key is missing.
var ErrNotConfigured = errors.New("storage: not configured")

// UploadError is a non-success response from the blob store.
type UploadError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *UploadError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("storage: upload failed: %s", e.Status)
	}
	return fmt.Sprintf("storage: upload failed: %s: %s", e.Status, e.Body)
}
