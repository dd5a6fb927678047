package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// StorageService persists downloaded documents.
type StorageService interface {
	// Store runs fill against a fresh writer and keeps the result under the
	// name fill returns. It returns the final path.
	Store(ctx context.Context, fill func(w io.Writer) (string, error)) (string, error)
}

// LocalStorage writes documents into a directory on disk.
type LocalStorage struct {
	dir string
}

func NewStorageService(dir string) *LocalStorage {
	return &LocalStorage{dir: dir}
}

// Store writes into a temporary file first so a failed download never
// leaves a partial document under a real name.
func (s *LocalStorage) Store(ctx context.Context, fill func(w io.Writer) (string, error)) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create download dir: %w", err)
	}

	tmpPath := filepath.Join(s.dir, "."+uuid.NewString()+".part")
	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}

	name, fillErr := fill(f)
	closeErr := f.Close()
	if fillErr == nil {
		fillErr = ctx.Err()
	}
	if fillErr != nil || closeErr != nil {
		_ = os.Remove(tmpPath)
		if fillErr != nil {
			return "", fillErr
		}
		return "", fmt.Errorf("close temp file: %w", closeErr)
	}

	target, err := s.freeName(sanitizeName(name))
	if err != nil {
		_ = os.Remove(tmpPath)
		return "", err
	}
	if err := os.Rename(tmpPath, target); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("move download into place: %w", err)
	}
	return target, nil
}

// freeName returns dir/name, or dir/name-N.ext when that is taken.
func (s *LocalStorage) freeName(name string) (string, error) {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	candidate := filepath.Join(s.dir, name)
	for i := 1; i < 1000; i++ {
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate, nil
		}
		candidate = filepath.Join(s.dir, fmt.Sprintf("%s-%d%s", stem, i, ext))
	}
	return "", fmt.Errorf("no free file name for %s", name)
}

func sanitizeName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	switch {
	case name == "." || name == "/" || name == "":
		return "proposal"
	case strings.HasPrefix(name, "."):
		return "proposal" + filepath.Ext(name)
	}
	return name
}
