// Package storage keeps uploaded files on the local filesystem.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

const (
	stampLayout  = "20060102150405"
	fallbackName = "upload"
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

// LocalFileStore writes uploads under one directory as
// <UTC yyyymmddHHMMSS>_<sanitized name>.
type LocalFileStore struct {
	dir string
	now func() time.Time
}

// NewLocalFileStore creates the directory if needed.
func NewLocalFileStore(dir string) (*LocalFileStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve upload dir: %w", err)
	}
	return &LocalFileStore{dir: abs, now: time.Now}, nil
}

// Save streams content to a new file. Saves within the same second of the
// same name get a numeric suffix instead of overwriting.
func (s *LocalFileStore) Save(ctx context.Context, filename string, content io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	base := s.now().UTC().Format(stampLayout) + "_" + SanitizeFilename(filename)
	f, path, err := s.create(base)
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(f, content); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to write upload: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write upload: %w", err)
	}
	return path, nil
}

func (s *LocalFileStore) create(base string) (*os.File, string, error) {
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	for i := 0; i < 100; i++ {
		name := base
		if i > 0 {
			name = fmt.Sprintf("%s_%d%s", stem, i, ext)
		}
		path := filepath.Join(s.dir, name)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return nil, "", fmt.Errorf("failed to create upload file: %w", err)
		}
		return f, path, nil
	}
	return nil, "", fmt.Errorf("failed to create upload file: too many files named %s", base)
}

// Open returns a stored file. Paths outside the upload directory are rejected.
func (s *LocalFileStore) Open(path string) (io.ReadCloser, error) {
	if err := s.contains(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	return f, nil
}

// Remove deletes a stored file; a file that is already gone is fine.
func (s *LocalFileStore) Remove(path string) error {
	if err := s.contains(path); err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove upload: %w", err)
	}
	return nil
}

func (s *LocalFileStore) contains(path string) error {
	rel, err := filepath.Rel(s.dir, filepath.Clean(path))
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") || filepath.IsAbs(rel) {
		return fmt.Errorf("path %q is outside the upload directory: %w", path, fs.ErrPermission)
	}
	return nil
}

// SanitizeFilename keeps the base name, turns spaces into underscores and
// drops everything but ASCII letters, digits, '.', '_' and '-'.
func SanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeChars.ReplaceAllString(name, "")
	name = strings.Trim(name, "._")
	if name == "" {
		return fallbackName
	}
	return name
}
