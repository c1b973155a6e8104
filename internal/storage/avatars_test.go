package storage

import (
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestStore(t *testing.T) *AvatarStore {
	t.Helper()
	store, err := NewAvatarStore(t.TempDir(), "https://hub.example.com/")
	if err != nil {
		t.Fatal(err)
	}
	return store
}

func TestUploadDataURI(t *testing.T) {
	store := newTestStore(t)

	payload := []byte{0xff, 0xd8, 0xff, 0xe0} // jpeg magic
	encoded := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(payload)

	url, err := store.Upload("owner-1", encoded)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(url, "https://hub.example.com/static/avatars/owner-1/") {
		t.Fatalf("unexpected url %q", url)
	}
	if !strings.HasSuffix(url, ".jpg") {
		t.Fatalf("expected .jpg suffix, got %q", url)
	}

	rel := strings.TrimPrefix(url, "https://hub.example.com/static/")
	data, err := os.ReadFile(filepath.Join(store.Root(), filepath.FromSlash(rel)))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != string(payload) {
		t.Fatal("stored bytes differ from upload")
	}
}

func TestUploadBareBase64(t *testing.T) {
	store := newTestStore(t)

	url, err := store.Upload("owner-2", base64.StdEncoding.EncodeToString([]byte("img")))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(url, "/avatars/owner-2/") {
		t.Fatalf("unexpected url %q", url)
	}
}

func TestUploadInvalidBase64(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.Upload("o", "!!! not base64 !!!"); !errors.Is(err, ErrInvalidImage) {
		t.Fatalf("expected ErrInvalidImage, got %v", err)
	}
	if _, err := store.Upload("o", ""); !errors.Is(err, ErrInvalidImage) {
		t.Fatalf("expected ErrInvalidImage for empty payload, got %v", err)
	}
}

func TestUploadTooLarge(t *testing.T) {
	store := newTestStore(t)

	big := make([]byte, maxAvatarBytes+1)
	_, err := store.Upload("o", base64.StdEncoding.EncodeToString(big))
	if !errors.Is(err, ErrImageTooLarge) {
		t.Fatalf("expected ErrImageTooLarge, got %v", err)
	}
}
