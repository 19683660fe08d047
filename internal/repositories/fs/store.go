// Package fs keeps activity sources and results as files on disk.
package fs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// store is a directory of files with one writer at a time per file.
type store struct {
	base  string
	locks sync.Map // file name -> *sync.Mutex
}

func newStore(base string) (*store, error) {
	if base == "" {
		return nil, errors.New("empty base directory")
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", base, err)
	}
	return &store{base: base}, nil
}

func (s *store) path(name string) string {
	return filepath.Join(s.base, filepath.Base(filepath.Clean(name)))
}

func (s *store) lock(name string) *sync.Mutex {
	m, _ := s.locks.LoadOrStore(filepath.Base(name), &sync.Mutex{})
	return m.(*sync.Mutex)
}

// write replaces the file. Concurrent writers of the same file are
// serialized and the last one wins.
func (s *store) write(name string, data []byte) error {
	mu := s.lock(name)
	mu.Lock()
	defer mu.Unlock()

	if err := os.WriteFile(s.path(name), data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// read returns the file content; a missing file is reported as fs.ErrNotExist.
func (s *store) read(name string) ([]byte, error) {
	mu := s.lock(name)
	mu.Lock()
	defer mu.Unlock()

	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fs.ErrNotExist
		}
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}

func (s *store) entries() ([]os.DirEntry, error) {
	entries, err := os.ReadDir(s.base)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.base, err)
	}
	return entries, nil
}
