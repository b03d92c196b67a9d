package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pngHeader is enough for http.DetectContentType to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type fakeBackend struct {
	objects     map[string][]byte
	contentType string
	err         error
}

func (f *fakeBackend) EnsureBucket(context.Context) error { return nil }

func (f *fakeBackend) Put(_ context.Context, key string, r io.Reader, size int64, contentType string) error {
	if f.err != nil {
		return f.err
	}
	data, _ := io.ReadAll(r)
	if int64(len(data)) != size {
		return errors.New("size mismatch")
	}
	if f.objects == nil {
		f.objects = map[string][]byte{}
	}
	f.objects[key] = data
	f.contentType = contentType
	return nil
}

func (f *fakeBackend) Delete(_ context.Context, key string) error {
	delete(f.objects, key)
	return nil
}

func (f *fakeBackend) Bucket() string { return "soma-media" }

func (f *fakeBackend) URL(key string) string { return "http://minio:9000/soma-media/" + key }

func TestDecodeImage_DataURL(t *testing.T) {
	payload := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngHeader)

	data, ct, err := DecodeImage(payload)
	require.NoError(t, err)
	assert.Equal(t, "image/png", ct)
	assert.Equal(t, pngHeader, data)
}

func TestDecodeImage_BareBase64Sniffed(t *testing.T) {
	_, ct, err := DecodeImage(base64.StdEncoding.EncodeToString(pngHeader))
	require.NoError(t, err)
	assert.Equal(t, "image/png", ct)
}

func TestDecodeImage_Rejects(t *testing.T) {
	_, _, err := DecodeImage("not base64 at all!")
	assert.ErrorIs(t, err, ErrNotBase64)

	_, _, err = DecodeImage("data:image/png,rawbytes")
	assert.ErrorIs(t, err, ErrNotBase64)

	_, _, err = DecodeImage(base64.StdEncoding.EncodeToString([]byte("just some text")))
	assert.ErrorIs(t, err, ErrNotImage)

	huge := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{0}, MaxPictureBytes+10))
	_, _, err = DecodeImage(huge)
	assert.ErrorIs(t, err, ErrPictureLarge)
}

func TestDecodeImage_SniffsInsteadOfTrustingDeclaredType(t *testing.T) {
	svg := `<svg xmlns="http://www.w3.org/2000/svg"><script>alert(1)</script></svg>`
	_, _, err := DecodeImage("data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(svg)))
	assert.ErrorIs(t, err, ErrNotImage)

	_, _, err = DecodeImage("data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte(svg)))
	assert.ErrorIs(t, err, ErrNotImage)

	_, ct, err := DecodeImage("data:image/gif;base64," + base64.StdEncoding.EncodeToString(pngHeader))
	require.NoError(t, err)
	assert.Equal(t, "image/png", ct)

	_, ct, err = DecodeImage(base64.StdEncoding.EncodeToString([]byte("GIF89a\x01\x00\x01\x00")))
	require.NoError(t, err)
	assert.Equal(t, "image/gif", ct)
	assert.Equal(t, ".gif", extensionFor(ct))
}

func TestSaveProfilePicture(t *testing.T) {
	backend := &fakeBackend{}
	store := NewStore(backend, "")

	url, err := store.SaveProfilePicture(context.Background(), "user-1",
		"data:image/png;base64,"+base64.StdEncoding.EncodeToString(pngHeader))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(url, "http://minio:9000/soma-media/profile-pictures/user-1/"))
	assert.True(t, strings.HasSuffix(url, ".png"))
	assert.Equal(t, "image/png", backend.contentType)
	assert.Len(t, backend.objects, 1)
}

func TestSaveProfilePicture_PublicBaseURL(t *testing.T) {
	store := NewStore(&fakeBackend{}, "https://cdn.soma.example/")

	url, err := store.SaveProfilePicture(context.Background(), "u", base64.StdEncoding.EncodeToString(pngHeader))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "https://cdn.soma.example/soma-media/profile-pictures/u/"))
}

func TestSaveProfilePicture_UploadError(t *testing.T) {
	store := NewStore(&fakeBackend{err: errors.New("bucket gone")}, "")

	_, err := store.SaveProfilePicture(context.Background(), "u", base64.StdEncoding.EncodeToString(pngHeader))
	assert.ErrorContains(t, err, "bucket gone")
}
