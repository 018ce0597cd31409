package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	domain "github.com/Zhima-Mochi/minishop-cart/internal/domain/cart"
)

// Store keeps the cart snapshot in a single file. Writes go to a temp file in
// the same directory and are renamed over the slot.
type Store struct {
	path string
}

var _ domain.Store = (*Store)(nil)

func New(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("filestore: path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("filestore: %w", err)
	}
	return &Store{path: path}, nil
}

func (s *Store) Path() string { return s.path }

func (s *Store) Read(ctx context.Context) ([]byte, error) {
	_ = ctx
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("filestore: read %s: %w", s.path, err)
	}
	return data, nil
}

func (s *Store) Write(ctx context.Context, data []byte) error {
	_ = ctx
	tmp, err := os.CreateTemp(filepath.Dir(s.path), "."+filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("filestore: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("filestore: write: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("filestore: sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("filestore: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("filestore: rename: %w", err)
	}
	return nil
}
