package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// maxErrorBody caps how much of a failed response body is kept in UploadError.
const maxErrorBody = 4 << 10

// SupabaseStorage は Supabase Storage の REST API に画像を保存する Storage 実装。
// SDK は使わず raw HTTP で呼び出す。
type SupabaseStorage struct {
	baseURL    string // 例: https://<project>.supabase.co
	apiKey     string
	bucket     string
	httpClient *http.Client
}

// NewSupabaseStorage は SupabaseStorage を生成する。
// baseURL か apiKey が空の場合、Save / Delete は ErrNotConfigured を返す。
func NewSupabaseStorage(baseURL, apiKey, bucket string) *SupabaseStorage {
	return &SupabaseStorage{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		bucket:     bucket,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

var _ Storage = (*SupabaseStorage)(nil)

// Configured reports whether the base URL and access key are set.
func (s *SupabaseStorage) Configured() bool {
	return s.baseURL != "" && s.apiKey != "" && s.bucket != ""
}

// Save uploads data under key and returns the object's public URL.
func (s *SupabaseStorage) Save(ctx context.Context, key string, data io.Reader, contentType string) (string, error) {
	if !s.Configured() {
		return "", ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.objectURL(key), data)
	if err != nil {
		return "", fmt.Errorf("storage: build request: %w", err)
	}
	s.setAuth(req)
	req.Header.Set("Content-Type", contentType)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("storage: upload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", &UploadError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(body)),
		}
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	return s.PublicURL(key), nil
}

// Delete removes the object stored under key. A missing object is not an error.
func (s *SupabaseStorage) Delete(ctx context.Context, key string) error {
	if !s.Configured() {
		return ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, s.objectURL(key), nil)
	if err != nil {
		return fmt.Errorf("storage: build request: %w", err)
	}
	s.setAuth(req)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("storage: delete: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("storage: delete failed: %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	return nil
}

// PublicURL is the unauthenticated URL of an object in a public bucket.
func (s *SupabaseStorage) PublicURL(key string) string {
	return s.baseURL + "/storage/v1/object/public/" + url.PathEscape(s.bucket) + "/" + escapeKey(key)
}

func (s *SupabaseStorage) objectURL(key string) string {
	return s.baseURL + "/storage/v1/object/" + url.PathEscape(s.bucket) + "/" + escapeKey(key)
}

func (s *SupabaseStorage) setAuth(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("apikey", s.apiKey)
}

// escapeKey escapes each path segment of key, keeping the separators.
func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
