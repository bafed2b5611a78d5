package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/iscbashan/contact/internal/storage"
)

const defaultImageContentType = "image/jpeg"

// data:image/<subtype>[;param=value...];base64,<payload>
var dataURLPrefix = regexp.MustCompile(`^data:(image/[A-Za-z0-9.+\-]+)((?:;[A-Za-z0-9.+\-]+=[A-Za-z0-9.+\-]+)*);base64,`)

var errEmptyImage = errors.New("image payload is empty")

// encodedImage is a decoded identity image.
type encodedImage struct {
	ContentType string
	Data        []byte
}

// Extension is the file extension derived from the image subtype ("image/svg+xml" → "svg").
func (img encodedImage) Extension() string {
	_, sub, _ := strings.Cut(img.ContentType, "/")
	sub, _, _ = strings.Cut(sub, "+")
	if sub == "" {
		return "jpg"
	}
	return sub
}

// parseEncodedImage accepts either a base64 data URL with an image media type
// or a bare base64 payload, which is treated as image/jpeg.
func parseEncodedImage(s string) (encodedImage, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return encodedImage{}, errEmptyImage
	}

	img := encodedImage{ContentType: defaultImageContentType}
	payload := s
	if strings.HasPrefix(s, "data:") {
		m := dataURLPrefix.FindStringSubmatch(s)
		if m == nil {
			return encodedImage{}, errors.New("unrecognized image data URL")
		}
		img.ContentType = strings.ToLower(m[1])
		payload = s[len(m[0]):]
	}

	payload = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\r', '\n':
			return -1
		}
		return r
	}, payload)

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(payload)
		if err != nil {
			return encodedImage{}, fmt.Errorf("decode image payload: %w", err)
		}
	}
	if len(data) == 0 {
		return encodedImage{}, errEmptyImage
	}
	img.Data = data
	return img, nil
}

// ImageUploader stores identity images in a blob store.
type ImageUploader struct {
	store  storage.Storage
	prefix string
	now    func() time.Time
	newID  func() string
}

// NewImageUploader creates an ImageUploader writing to store.
func NewImageUploader(store storage.Storage) *ImageUploader {
	return &ImageUploader{
		store:  store,
		prefix: "identity",
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Upload decodes encoded, stores it under a fresh key and returns the public URL and the key.
// Every failure is a *StorageUploadError.
func (u *ImageUploader) Upload(ctx context.Context, encoded string) (url, key string, err error) {
	if u == nil || u.store == nil {
		return "", "", &StorageUploadError{Err: storage.ErrNotConfigured}
	}
	img, err := parseEncodedImage(encoded)
	if err != nil {
		return "", "", &StorageUploadError{Err: err}
	}

	key = u.objectKey(img)
	url, err = u.store.Save(ctx, key, bytes.NewReader(img.Data), img.ContentType)
	if err != nil {
		return "", "", &StorageUploadError{Key: key, Err: err}
	}
	if url == "" {
		return "", "", &StorageUploadError{Key: key, Err: errors.New("storage returned an empty url")}
	}
	return url, key, nil
}

// Delete removes a previously uploaded object.
func (u *ImageUploader) Delete(ctx context.Context, key string) error {
	if u == nil || u.store == nil {
		return storage.ErrNotConfigured
	}
	return u.store.Delete(ctx, key)
}

// objectKey is <prefix>_<unix millis>_<uuid>.<ext>.
func (u *ImageUploader) objectKey(img encodedImage) string {
	return fmt.Sprintf("%s_%d_%s.%s", u.prefix, u.now().UnixMilli(), u.newID(), img.Extension())
}
