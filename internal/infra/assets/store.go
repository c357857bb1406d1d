// Package assets stores article images on the local filesystem under
// generated unique names.
package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// maxExtLen bounds the extension kept from a client filename or URL path.
const maxExtLen = 10

// Store writes assets into a single directory. Files are created once and
// never updated or deleted.
type Store struct {
	dir      string
	maxBytes int64
}

// NewStore creates the directory if needed. maxBytes <= 0 disables the size
// limit for uploads.
func NewStore(dir string, maxBytes int64) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("%w: empty asset directory", ErrAssetStore)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create %s: %v", ErrAssetStore, dir, err)
	}
	return &Store{dir: dir, maxBytes: maxBytes}, nil
}

// Dir returns the asset directory.
func (s *Store) Dir() string {
	return s.dir
}

// StoreUpload writes r under "<uuid><ext>" where ext is filename's extension.
func (s *Store) StoreUpload(ctx context.Context, filename string, r io.Reader) (string, error) {
	return s.save(ctx, Extension(filename), r)
}

// Path resolves a stored asset name to its file, rejecting names that could
// escape the directory.
func (s *Store) Path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(s.dir, name), nil
}

// save streams r into a temp file in the asset directory, then renames it
// into place so readers never observe a partial asset.
func (s *Store) save(ctx context.Context, ext string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := uuid.NewString() + ext

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("%w: create temp file: %v", ErrAssetStore, err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	src := r
	if s.maxBytes > 0 {
		src = io.LimitReader(r, s.maxBytes+1)
	}
	n, err := io.Copy(tmp, src)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", fmt.Errorf("%w: write %s: %v", ErrAssetStore, name, err)
	}
	if s.maxBytes > 0 && n > s.maxBytes {
		return "", fmt.Errorf("%w: exceeds %d bytes", ErrAssetTooLarge, s.maxBytes)
	}

	if err := os.Chmod(tmpName, 0o644); err != nil {
		return "", fmt.Errorf("%w: chmod %s: %v", ErrAssetStore, name, err)
	}
	if err := os.Rename(tmpName, filepath.Join(s.dir, name)); err != nil {
		return "", fmt.Errorf("%w: rename %s: %v", ErrAssetStore, name, err)
	}
	committed = true
	return name, nil
}

// Extension returns the extension of a filename or URL path as written,
// or "" when it is missing or not a plain alphanumeric suffix.
func Extension(name string) string {
	ext := path.Ext(strings.ReplaceAll(name, `\`, "/"))
	if len(ext) < 2 || len(ext) > maxExtLen {
		return ""
	}
	for _, c := range ext[1:] {
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9') {
			return ""
		}
	}
	return ext
}

// IsNotFound reports whether err means the asset file does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, os.ErrNotExist) || errors.Is(err, ErrInvalidName)
}
