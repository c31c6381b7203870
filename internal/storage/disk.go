package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// DiskStore keeps proof documents under a local directory.
type DiskStore struct {
	dir string
}

func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskStore{dir: dir}, nil
}

func (s *DiskStore) StoreProof(_ context.Context, filename string, r io.Reader, _ int64) (string, error) {
	if !Allowed(filename) {
		return "", ErrUnsupportedType
	}
	key := NewKey(filename)
	path := filepath.Join(s.dir, key)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", err
	}
	return key, nil
}

func (s *DiskStore) FetchProof(_ context.Context, key string) (io.ReadCloser, error) {
	// keys are generated by NewKey; reject anything path-like
	if key != filepath.Base(key) {
		return nil, ErrNotFound
	}
	f, err := os.Open(filepath.Join(s.dir, key))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	return f, err
}

func (s *DiskStore) DeleteProof(_ context.Context, key string) error {
	if key != filepath.Base(key) {
		return ErrNotFound
	}
	err := os.Remove(filepath.Join(s.dir, key))
	if os.IsNotExist(err) {
		return ErrNotFound
	}
	return err
}
