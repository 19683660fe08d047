package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/SAP-F-2025/activity-service/internal/models"
)

// ErrNotFound is returned by every repository when the requested record is
// missing.
var ErrNotFound = errors.New("record not found")

// SourceRepository stores activity markdown sources by name.
type SourceRepository interface {
	List(ctx context.Context) ([]string, error)
	Get(ctx context.Context, name string) (string, error)
	Put(ctx context.Context, name, markdown string) error
}

// ResultRepository stores encoded results documents. Latest returns the most
// recently completed record for an activity.
type ResultRepository interface {
	Save(ctx context.Context, record *models.ResultRecord) error
	Latest(ctx context.Context, activity string) (*models.ResultRecord, error)
	List(ctx context.Context, activity string, filters ResultFilters) ([]*models.ResultRecord, error)
}

type ResultFilters struct {
	Since *time.Time `json:"since"`
	Limit int        `json:"limit"`
}
