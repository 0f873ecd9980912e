package httpcache

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// DiskStore keeps entries as files in a directory.
//
// The modification time of a file is its expiry time.
type DiskStore struct {
	Dir string // os.TempDir() if empty
}

func (s *DiskStore) file(key string) string {
	dir := s.Dir
	if dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "signalist-"+key)
}

// Get implements Store.
func (s *DiskStore) Get(_ context.Context, key string) ([]byte, error) {
	file := s.file(key)
	info, err := os.Stat(file)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, err
	}
	if !time.Now().Before(info.ModTime()) {
		os.Remove(file)
		return nil, ErrMiss
	}
	return os.ReadFile(file)
}

// Set implements Store.
func (s *DiskStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	file := s.file(key)
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(file, value, 0o644); err != nil {
		return err
	}
	expires := time.Now().Add(ttl)
	return os.Chtimes(file, expires, expires)
}
