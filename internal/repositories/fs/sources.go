package fs

import (
	"context"
	"errors"
	"io/fs"
	"sort"
	"strings"

	"github.com/SAP-F-2025/activity-service/internal/repositories"
)

const sourceExt = ".md"

// SourceStore keeps each activity as <dir>/<name>.md.
type SourceStore struct {
	files *store
}

func NewSourceStore(dir string) (*SourceStore, error) {
	files, err := newStore(dir)
	if err != nil {
		return nil, err
	}
	return &SourceStore{files: files}, nil
}

var _ repositories.SourceRepository = (*SourceStore)(nil)

// List returns activity names in lexical order. Results files kept in the
// same directory are not activities.
func (s *SourceStore) List(ctx context.Context) ([]string, error) {
	entries, err := s.files.entries()
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), sourceExt) || strings.HasSuffix(e.Name(), resultsExt) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), sourceExt))
	}
	sort.Strings(names)
	return names, nil
}

func (s *SourceStore) Get(ctx context.Context, name string) (string, error) {
	data, err := s.files.read(name + sourceExt)
	if errors.Is(err, fs.ErrNotExist) {
		return "", repositories.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (s *SourceStore) Put(ctx context.Context, name, markdown string) error {
	return s.files.write(name+sourceExt, []byte(markdown))
}
