package services

import (
	"context"

	"github.com/SAP-F-2025/activity-service/internal/events"
	"github.com/SAP-F-2025/activity-service/internal/models"
	"github.com/SAP-F-2025/activity-service/internal/repositories"
)

// ActivityService compiles, stores and checks activity documents
type ActivityService interface {
	Compile(ctx context.Context, markdown string) (*models.Activity, error)
	List(ctx context.Context, query models.ActivityListQuery) ([]models.ActivityInfo, error)
	Get(ctx context.Context, name string) (*models.Activity, error)
	Put(ctx context.Context, name, markdown string) (*models.Activity, error)
	CompileAll(ctx context.Context) ([]models.BatchCompileResult, error)

	// Live validation
	Check(ctx context.Context, name string, req *models.CheckAnswerRequest) (*models.CheckAnswerResponse, error)
	CheckValidation(ctx context.Context, req *models.ValidationCheckRequest) (*models.CheckAnswerResponse, error)
}

// ResultService grades submissions and restores saved progress
type ResultService interface {
	Submit(ctx context.Context, name string, submission *models.Submission) (*models.ResultSummary, error)
	Resume(ctx context.Context, name string) (*models.ResumeResponse, error)
	History(ctx context.Context, name string, filters repositories.ResultFilters) ([]*models.ResultRecord, error)
}

// ExportService renders saved results as spreadsheets
type ExportService interface {
	ExportResultsToExcel(ctx context.Context, name string) ([]byte, error)
	ExportResultsToCSV(ctx context.Context, name string) ([]byte, error)
}

// EventService publishes activity events on the bus
type EventService interface {
	TriggerValidation(ctx context.Context, activity string) (*events.ActivityEvent, error)
	NotifyActivityUpdated(ctx context.Context, name string, activityType models.ActivityType) error
	NotifyResultsSaved(ctx context.Context, summary *models.ResultSummary) error
}

type ServiceManager interface {
	Activity() ActivityService
	Results() ResultService
	Export() ExportService
	Events() EventService
}
