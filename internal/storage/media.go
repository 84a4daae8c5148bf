// File: internal/storage/media.go
package storage

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const photoDir = "task_photos"

var ErrInvalidPath = errors.New("path escapes media root")

// MediaStore writes uploaded files under a root directory. Stored names are
// random so uploads never collide or reveal the client's file name.
type MediaStore struct {
	root string
}

func NewMediaStore(root string) (*MediaStore, error) {
	if root == "" {
		root = "media"
	}
	if err := os.MkdirAll(filepath.Join(root, photoDir), 0o755); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}
	return &MediaStore{root: root}, nil
}

func (m *MediaStore) Root() string {
	return m.root
}

// Save copies r to a new file and returns its slash-separated path relative
// to the media root.
func (m *MediaStore) Save(originalName string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if len(ext) > 10 {
		ext = ""
	}
	rel := path.Join(photoDir, uuid.NewString()+ext)

	dst, err := os.OpenFile(m.abs(rel), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create media file: %w", err)
	}
	if _, err := io.Copy(dst, r); err != nil {
		dst.Close()
		os.Remove(m.abs(rel))
		return "", fmt.Errorf("write media file: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(m.abs(rel))
		return "", fmt.Errorf("close media file: %w", err)
	}
	log.Printf("[MediaStore] Stored %s", rel)
	return rel, nil
}

// Delete removes a stored file. Missing files are not an error.
func (m *MediaStore) Delete(rel string) error {
	clean := path.Clean("/" + filepath.ToSlash(rel))
	if clean == "/" || strings.Contains(rel, "..") {
		return ErrInvalidPath
	}
	err := os.Remove(m.abs(strings.TrimPrefix(clean, "/")))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove media file: %w", err)
	}
	return nil
}

func (m *MediaStore) abs(rel string) string {
	return filepath.Join(m.root, filepath.FromSlash(rel))
}
