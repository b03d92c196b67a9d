// Package media stores uploaded profile pictures in object storage.
package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"
)

// MaxPictureBytes caps a decoded profile picture.
const MaxPictureBytes = 5 << 20

var (
	ErrNotBase64    = errors.New("picture is not base64 encoded")
	ErrNotImage     = errors.New("picture is not an image")
	ErrPictureLarge = errors.New("picture is too large")
)

type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
	Bucket() string
	URL(key string) string
}

type Store struct {
	backend       ObjectStorage
	publicBaseURL string
}

// NewStore wraps backend. A non-empty publicBaseURL (a CDN or reverse proxy)
// replaces the backend address in returned URLs.
func NewStore(backend ObjectStorage, publicBaseURL string) *Store {
	return &Store{backend: backend, publicBaseURL: strings.TrimSuffix(publicBaseURL, "/")}
}

func (s *Store) EnsureBucket(ctx context.Context) error {
	return s.backend.EnsureBucket(ctx)
}

// SaveProfilePicture decodes a base64 payload (bare or data URL), uploads it
// and returns its public URL.
func (s *Store) SaveProfilePicture(ctx context.Context, userID, payload string) (string, error) {
	data, contentType, err := DecodeImage(payload)
	if err != nil {
		return "", err
	}

	key := path.Join("profile-pictures", userID, uuid.NewString()+extensionFor(contentType))
	if err := s.backend.Put(ctx, key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	if s.publicBaseURL != "" {
		return s.publicBaseURL + "/" + s.backend.Bucket() + "/" + key, nil
	}
	return s.backend.URL(key), nil
}

// rasterTypes are the sniffed content types accepted as pictures.
var rasterTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// DecodeImage accepts "data:image/png;base64,..." or bare base64. The content
// type always comes from sniffing the decoded bytes, never from the data URL.
func DecodeImage(payload string) ([]byte, string, error) {
	payload = strings.TrimSpace(payload)
	if rest, ok := strings.CutPrefix(payload, "data:"); ok {
		meta, body, found := strings.Cut(rest, ",")
		if !found || !strings.HasSuffix(meta, ";base64") {
			return nil, "", ErrNotBase64
		}
		payload = body
	}

	if base64.StdEncoding.DecodedLen(len(payload)) > MaxPictureBytes+3 {
		return nil, "", ErrPictureLarge
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", ErrNotBase64
	}
	if len(data) > MaxPictureBytes {
		return nil, "", ErrPictureLarge
	}

	contentType := http.DetectContentType(data)
	if _, ok := rasterTypes[contentType]; !ok {
		return nil, "", ErrNotImage
	}
	return data, contentType, nil
}

func extensionFor(contentType string) string {
	return rasterTypes[contentType]
}
