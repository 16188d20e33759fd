// Package storage holds the temp-file store uploads pass through on their
// way into the ingestion pipeline.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore keeps files under a single directory; refs are file names, and
// path traversal outside the directory is rejected.
type LocalStore struct {
	dir string
}

func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

func (s *LocalStore) path(ref string) (string, error) {
	clean := filepath.Clean(ref)
	if clean == "." || strings.Contains(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid file ref %q", ref)
	}
	return filepath.Join(s.dir, clean), nil
}

func (s *LocalStore) Write(_ context.Context, ref string, content []byte) error {
	p, err := s.path(ref)
	if err != nil {
		return err
	}
	return os.WriteFile(p, content, 0o600)
}

func (s *LocalStore) ReadText(_ context.Context, ref string) (string, error) {
	p, err := s.path(ref)
	if err != nil {
		return "", err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (s *LocalStore) Delete(_ context.Context, ref string) error {
	p, err := s.path(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
