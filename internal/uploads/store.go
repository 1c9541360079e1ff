package uploads

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrNotImage is returned when an upload is not one of the allowed image types.
var ErrNotImage = errors.New("only image files are allowed")

var allowedExts = map[string]bool{
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".gif":  true,
}

// Store saves profile images to a local directory and serves them back under
// the /uploads/ URL prefix.
type Store struct {
	dir      string
	maxBytes int64
}

// NewStore ensures dir exists and returns a store writing into it.
func NewStore(dir string, maxBytes int64) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{dir: dir, maxBytes: maxBytes}, nil
}

// Dir returns the directory files are stored in, for static file serving.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes an uploaded image under a fresh random name and returns its
// public URL path ("/uploads/<name>"). Rejects non-image extensions and files
// over the size cap.
func (s *Store) Save(file multipart.File, header *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExts[ext] {
		return "", ErrNotImage
	}
	if ct := header.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "image/") {
		return "", ErrNotImage
	}
	if s.maxBytes > 0 && header.Size > s.maxBytes {
		return "", fmt.Errorf("file too large: %d bytes", header.Size)
	}

	name := "profile-" + uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("write upload file: %w", err)
	}
	return "/uploads/" + name, nil
}

// Remove deletes the file behind a previously returned URL path. Best-effort:
// a failure is logged and swallowed so it can never fail the update that
// replaced the image.
func (s *Store) Remove(urlPath string) {
	name := strings.TrimPrefix(urlPath, "/uploads/")
	if name == "" || strings.Contains(name, "/") || strings.Contains(name, "..") {
		return
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to remove old upload", "file", name, "error", err)
	}
}
