package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/SAP-F-2025/activity-service/internal/models"
	"github.com/SAP-F-2025/activity-service/internal/repositories"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ResultPostgreSQL keeps the full history of results documents. It runs on
// any gorm dialect; tests use sqlite.
type ResultPostgreSQL struct {
	db *gorm.DB
}

func NewResultPostgreSQL(db *gorm.DB) repositories.ResultRepository {
	return &ResultPostgreSQL{db: db}
}

func (r *ResultPostgreSQL) Save(ctx context.Context, record *models.ResultRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("failed to save results for %s: %w", record.ActivityName, err)
	}
	return nil
}

func (r *ResultPostgreSQL) Latest(ctx context.Context, activity string) (*models.ResultRecord, error) {
	var record models.ResultRecord
	err := r.db.WithContext(ctx).
		Where("activity_name = ?", activity).
		Order("completed_at DESC, created_at DESC").
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get latest results for %s: %w", activity, err)
	}
	return &record, nil
}

func (r *ResultPostgreSQL) List(ctx context.Context, activity string, filters repositories.ResultFilters) ([]*models.ResultRecord, error) {
	query := r.db.WithContext(ctx).Where("activity_name = ?", activity)
	if filters.Since != nil {
		query = query.Where("completed_at >= ?", *filters.Since)
	}
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}

	var records []*models.ResultRecord
	if err := query.Order("completed_at DESC, created_at DESC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list results for %s: %w", activity, err)
	}
	return records, nil
}
