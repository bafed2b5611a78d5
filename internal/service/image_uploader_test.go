package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/iscbashan/contact/internal/storage"
)

func TestParseEncodedImage(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		ct      string
		ext     string
		size    int
		wantErr bool
	}{
		{name: "png data url", in: pngDataURL, ct: "image/png", ext: "png", size: 8},
		{name: "jpeg data url", in: "data:image/jpeg;base64,/9j/4AAQ", ct: "image/jpeg", ext: "jpeg", size: 6},
		{name: "charset param", in: "data:image/webp;charset=utf-8;base64,UklGRg==", ct: "image/webp", ext: "webp", size: 4},
		{name: "svg subtype", in: "data:image/svg+xml;base64,PHN2Zy8+", ct: "image/svg+xml", ext: "svg", size: 6},
		{name: "uppercase type", in: "data:image/PNG;base64,iVBORw0KGgo=", ct: "image/png", ext: "png", size: 8},
		{name: "bare base64 defaults to jpeg", in: "iVBORw0KGgo=", ct: "image/jpeg", ext: "jpeg", size: 8},
		{name: "unpadded", in: "data:image/png;base64,iVBORw0KGgo", ct: "image/png", ext: "png", size: 8},
		{name: "wrapped lines", in: "data:image/png;base64,iVBO\nRw0K\r\nGgo=", ct: "image/png", ext: "png", size: 8},
		{name: "empty", in: "", wantErr: true},
		{name: "non-image media type", in: "data:application/pdf;base64,JVBERi0=", wantErr: true},
		{name: "not base64 encoded data url", in: "data:image/png,rawbytes", wantErr: true},
		{name: "garbage", in: "not an image!", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := parseEncodedImage(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", img)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if img.ContentType != tt.ct {
				t.Errorf("content type: expected %q, got %q", tt.ct, img.ContentType)
			}
			if img.Extension() != tt.ext {
				t.Errorf("extension: expected %q, got %q", tt.ext, img.Extension())
			}
			if len(img.Data) != tt.size {
				t.Errorf("size: expected %d, got %d", tt.size, len(img.Data))
			}
		})
	}
}

func newTestUploader(store storage.Storage) *ImageUploader {
	u := NewImageUploader(store)
	u.now = func() time.Time { return time.UnixMilli(1700000000000) }
	u.newID = func() string { return "0b5d1c2e" }
	return u
}

func TestImageUploader_Upload(t *testing.T) {
	store := &mockStorage{}
	u := newTestUploader(store)

	url, key, err := u.Upload(context.Background(), pngDataURL)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if key != "identity_1700000000000_0b5d1c2e.png" {
		t.Errorf("unexpected key %q", key)
	}
	if url != "https://blob.example.com/public/"+key {
		t.Errorf("unexpected url %q", url)
	}
	if len(store.savedTypes) != 1 || store.savedTypes[0] != "image/png" {
		t.Errorf("expected image/png content type, got %v", store.savedTypes)
	}
	if string(store.savedData[0]) != "\x89PNG\r\n\x1a\n" {
		t.Errorf("expected decoded PNG signature, got %q", store.savedData[0])
	}
}

func TestImageUploader_DefaultKeyIsUnique(t *testing.T) {
	store := &mockStorage{}
	u := NewImageUploader(store)

	_, k1, err := u.Upload(context.Background(), pngDataURL)
	if err != nil {
		t.Fatal(err)
	}
	_, k2, err := u.Upload(context.Background(), pngDataURL)
	if err != nil {
		t.Fatal(err)
	}
	if k1 == k2 {
		t.Errorf("expected distinct keys, both were %q", k1)
	}
}

func TestImageUploader_StorageFailure(t *testing.T) {
	store := &mockStorage{
		saveFunc: func(ctx context.Context, key string, data []byte, ct string) (string, error) {
			return "", &storage.UploadError{StatusCode: http.StatusInternalServerError, Status: "500 Internal Server Error"}
		},
	}
	u := newTestUploader(store)

	_, _, err := u.Upload(context.Background(), pngDataURL)
	var upErr *StorageUploadError
	if !errors.As(err, &upErr) {
		t.Fatalf("expected *StorageUploadError, got %v", err)
	}
	if upErr.StatusCode() != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", upErr.StatusCode())
	}
	if upErr.Key == "" {
		t.Error("expected the attempted key on the error")
	}
}

func TestImageUploader_NotConfigured(t *testing.T) {
	u := newTestUploader(storage.NewSupabaseStorage("", "", "identity_images"))

	_, _, err := u.Upload(context.Background(), pngDataURL)
	if !errors.Is(err, storage.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	var upErr *StorageUploadError
	if !errors.As(err, &upErr) {
		t.Fatalf("expected *StorageUploadError, got %T", err)
	}
	if upErr.StatusCode() != 0 {
		t.Errorf("expected no status code, got %d", upErr.StatusCode())
	}
}

func TestImageUploader_NilUploader(t *testing.T) {
	var u *ImageUploader
	if _, _, err := u.Upload(context.Background(), pngDataURL); !errors.Is(err, storage.ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured from nil uploader, got %v", err)
	}
}

func TestImageUploader_InvalidPayload(t *testing.T) {
	store := &mockStorage{}
	u := newTestUploader(store)

	_, _, err := u.Upload(context.Background(), "data:image/png;base64,@@@")
	var upErr *StorageUploadError
	if !errors.As(err, &upErr) {
		t.Fatalf("expected *StorageUploadError, got %v", err)
	}
	if len(store.savedKeys) != 0 {
		t.Error("storage must not be called for an undecodable payload")
	}
}
