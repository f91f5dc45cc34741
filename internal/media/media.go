// Package media decodes base64 image payloads and stores them on disk.
package media

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var ErrInvalidImage = errors.New("Upload a valid image. The file you uploaded was either not an image or a corrupted image.")

// Image is a decoded upload.
type Image struct {
	Data   []byte
	Format string
}

// Decode accepts either a data URI ("data:image/png;base64,...") or bare
// base64 and checks that the bytes are a png, jpeg or gif image.
func Decode(payload string) (*Image, error) {
	if strings.HasPrefix(payload, "data:") {
		_, encoded, found := strings.Cut(payload, ";base64,")
		if !found {
			return nil, ErrInvalidImage
		}
		payload = encoded
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil {
		return nil, ErrInvalidImage
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, ErrInvalidImage
	}
	return &Image{Data: data, Format: format}, nil
}

// Storage keeps files under Root and serves them under URL.
type Storage struct {
	Root string
	URL  string
}

// Save writes img under dir with a random name and returns the stored
// name relative to Root, using forward slashes.
func (s *Storage) Save(dir string, img *Image) (string, error) {
	ext := img.Format
	if ext == "jpeg" {
		ext = "jpg"
	}
	name := path.Join(dir, uuid.NewString()+"."+ext)

	full := filepath.Join(s.Root, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("media: create %s: %w", filepath.Dir(full), err)
	}
	if err := os.WriteFile(full, img.Data, 0o644); err != nil {
		return "", fmt.Errorf("media: write %s: %w", full, err)
	}
	return name, nil
}

// PublicPath returns the URL path a stored name is served at.
func (s *Storage) PublicPath(name string) string {
	return strings.TrimSuffix(s.URL, "/") + "/" + name
}

// Handler serves stored files under URL.
func (s *Storage) Handler() http.Handler {
	prefix := strings.TrimSuffix(s.URL, "/") + "/"
	return http.StripPrefix(prefix, http.FileServer(http.Dir(s.Root)))
}
