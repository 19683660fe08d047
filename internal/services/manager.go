package services

import (
	"log/slog"

	"github.com/SAP-F-2025/activity-service/internal/activity"
	"github.com/SAP-F-2025/activity-service/internal/cache"
	"github.com/SAP-F-2025/activity-service/internal/events"
	"github.com/SAP-F-2025/activity-service/internal/repositories"
	"github.com/SAP-F-2025/activity-service/internal/validator"
)

// Dependencies are the collaborators shared by every service
type Dependencies struct {
	Compiler  *activity.Compiler
	Sources   repositories.SourceRepository
	Results   repositories.ResultRepository
	Cache     *cache.ActivityCache
	Publisher events.EventPublisher
	Validator *validator.Validator
	Logger    *slog.Logger
}

type serviceManager struct {
	activity ActivityService
	results  ResultService
	export   ExportService
	events   EventService
}

func NewServiceManager(deps Dependencies) ServiceManager {
	eventService := NewEventService(deps.Publisher, deps.Logger)
	activityService := NewActivityService(deps.Compiler, deps.Sources, deps.Cache, eventService, deps.Validator, deps.Logger)
	resultService := NewResultService(activityService, deps.Results, eventService, deps.Logger)

	return &serviceManager{
		activity: activityService,
		results:  resultService,
		export:   NewExportService(activityService, deps.Results, deps.Logger),
		events:   eventService,
	}
}

func (m *serviceManager) Activity() ActivityService { return m.activity }
func (m *serviceManager) Results() ResultService    { return m.results }
func (m *serviceManager) Export() ExportService     { return m.export }
func (m *serviceManager) Events() EventService      { return m.events }
