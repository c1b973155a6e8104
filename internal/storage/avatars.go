// Package storage stores uploaded avatar images on local disk and hands
// back the public URL they are served from.
package storage

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const maxAvatarBytes = 5 << 20 // 5 MiB decoded

var (
	ErrInvalidImage  = errors.New("invalid image data")
	ErrImageTooLarge = errors.New("image too large")
)

// AvatarStore writes avatar images under a root directory. Files land at
// avatars/{ownerID}/{unix-ms}.jpg and are served from
// {publicBaseURL}/static/avatars/...
type AvatarStore struct {
	root          string
	publicBaseURL string
}

// NewAvatarStore creates an avatar store rooted at dir.
func NewAvatarStore(dir, publicBaseURL string) (*AvatarStore, error) {
	if err := os.MkdirAll(filepath.Join(dir, "avatars"), 0755); err != nil {
		return nil, err
	}
	return &AvatarStore{
		root:          dir,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}, nil
}

// Root returns the storage root directory, for the static file server.
func (s *AvatarStore) Root() string {
	return s.root
}

// Upload decodes a base64 image (with or without a data-URI prefix), writes
// it owner-scoped, and returns its public URL.
func (s *AvatarStore) Upload(ownerID, base64Image string) (string, error) {
	// Strip data-URI prefix like "data:image/jpeg;base64,"
	if idx := strings.Index(base64Image, ","); idx >= 0 && strings.HasPrefix(base64Image, "data:") {
		base64Image = base64Image[idx+1:]
	}

	data, err := base64.StdEncoding.DecodeString(base64Image)
	if err != nil {
		return "", ErrInvalidImage
	}
	if len(data) == 0 {
		return "", ErrInvalidImage
	}
	if len(data) > maxAvatarBytes {
		return "", ErrImageTooLarge
	}

	rel := filepath.Join("avatars", ownerID, fmt.Sprintf("%d.jpg", time.Now().UnixMilli()))
	path := filepath.Join(s.root, rel)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}

	return s.publicBaseURL + "/static/" + filepath.ToSlash(rel), nil
}
