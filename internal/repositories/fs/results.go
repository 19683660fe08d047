package fs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"

	"github.com/SAP-F-2025/activity-service/internal/models"
	"github.com/SAP-F-2025/activity-service/internal/repositories"
)

const (
	resultsExt = ".results.md"
	metaExt    = ".results.json"
)

// ResultStore keeps only the latest results document per activity:
// <dir>/<activity>.results.md plus a JSON sidecar with the record metadata.
type ResultStore struct {
	files *store
}

func NewResultStore(dir string) (*ResultStore, error) {
	files, err := newStore(dir)
	if err != nil {
		return nil, err
	}
	return &ResultStore{files: files}, nil
}

var _ repositories.ResultRepository = (*ResultStore)(nil)

// Save overwrites the activity's results. A failed metadata write leaves the
// markdown in place.
func (s *ResultStore) Save(ctx context.Context, record *models.ResultRecord) error {
	if err := s.files.write(record.ActivityName+resultsExt, []byte(record.Markdown)); err != nil {
		return err
	}

	meta := *record
	meta.Markdown = ""
	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encode results metadata: %w", err)
	}
	return s.files.write(record.ActivityName+metaExt, data)
}

func (s *ResultStore) Latest(ctx context.Context, activity string) (*models.ResultRecord, error) {
	markdown, err := s.files.read(activity + resultsExt)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	record := &models.ResultRecord{ActivityName: activity}
	if data, err := s.files.read(activity + metaExt); err == nil {
		if err := json.Unmarshal(data, record); err != nil {
			return nil, fmt.Errorf("decode results metadata: %w", err)
		}
	}
	record.Markdown = string(markdown)
	return record, nil
}

// List returns at most the single latest record; the file store keeps no
// history.
func (s *ResultStore) List(ctx context.Context, activity string, filters repositories.ResultFilters) ([]*models.ResultRecord, error) {
	record, err := s.Latest(ctx, activity)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if filters.Since != nil && record.CompletedAt.Before(*filters.Since) {
		return nil, nil
	}
	return []*models.ResultRecord{record}, nil
}
