package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/SAP-F-2025/activity-service/internal/grading"
	"github.com/SAP-F-2025/activity-service/internal/models"
	"github.com/SAP-F-2025/activity-service/internal/repositories"
	"github.com/SAP-F-2025/activity-service/internal/results"
	"github.com/SAP-F-2025/activity-service/internal/validator"
)

type resultService struct {
	activities ActivityService
	repo       repositories.ResultRepository
	events     EventService
	logger     *ServiceLogger
	slog       *slog.Logger
	now        func() time.Time
}

func NewResultService(activities ActivityService, repo repositories.ResultRepository, events EventService, logger *slog.Logger) ResultService {
	return &resultService{
		activities: activities,
		repo:       repo,
		events:     events,
		logger:     NewServiceLogger(logger, "results"),
		slog:       logger,
		now:        time.Now,
	}
}

// Submit regrades the submitted results against a fresh compile of the
// stored source, encodes them and saves the document. The activity carried
// in the submission is never trusted.
func (s *resultService) Submit(ctx context.Context, name string, submission *models.Submission) (summary *models.ResultSummary, err error) {
	defer s.logger.track(ctx, "submit", name, &err, "submitted", len(submission.Results))()

	act, err := s.activities.Get(ctx, name)
	if err != nil {
		return nil, err
	}

	graded := grading.Regrade(act, submission.Results)
	markdown := results.Encode(act, graded)
	correct, total := grading.Summary(graded)

	decoded, err := results.Decode(markdown)
	if err != nil {
		return nil, fmt.Errorf("failed to read back results for %s: %w", name, err)
	}
	answers, err := json.Marshal(decoded.Answers)
	if err != nil {
		return nil, fmt.Errorf("failed to encode answers: %w", err)
	}

	completedAt := submission.CompletedAt
	if completedAt.IsZero() {
		completedAt = s.now().UTC()
	}

	record := &models.ResultRecord{
		ID:           uuid.NewString(),
		ActivityName: name,
		Type:         act.Type,
		Markdown:     markdown,
		Answers:      datatypes.JSON(answers),
		Correct:      correct,
		Total:        total,
		CompletedAt:  completedAt,
	}
	if err = s.repo.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("%w: results for %s: %w", ErrWriteFailed, name, err)
	}

	summary = &models.ResultSummary{
		Activity: name,
		Type:     act.Type,
		Correct:  correct,
		Total:    total,
		Results:  graded,
		Markdown: markdown,
	}
	if perr := s.events.NotifyResultsSaved(ctx, summary); perr != nil {
		s.slog.Warn("Failed to publish results event", "activity", name, "error", perr)
	}
	return summary, nil
}

// Resume reloads the latest saved answers for name and grades them against
// the current source. Answers that no longer fit are reported in Dropped;
// when the activity type itself changed every saved answer is dropped.
func (s *resultService) Resume(ctx context.Context, name string) (resp *models.ResumeResponse, err error) {
	defer s.logger.track(ctx, "resume", name, &err)()

	act, err := s.activities.Get(ctx, name)
	if err != nil {
		return nil, err
	}

	record, err := s.repo.Latest(ctx, name)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrResultsNotFound, name)
		}
		return nil, fmt.Errorf("failed to load results for %s: %w", name, err)
	}

	decoded, err := results.Decode(record.Markdown)
	if err != nil {
		return nil, NewBusinessRuleError("results_document", err.Error(), map[string]interface{}{
			"activity": name,
			"record":   record.ID,
		})
	}

	kept, dropped := grading.Answers{}, []int(nil)
	if decoded.Type == act.Type {
		kept, dropped = grading.Resume(act, decoded.Answers)
	} else {
		for i := range decoded.Answers {
			dropped = append(dropped, i)
		}
		sort.Ints(dropped)
	}

	graded := grading.Evaluate(act, kept)
	correct, total := grading.Summary(graded)
	return &models.ResumeResponse{
		Activity:    act,
		Answers:     kept,
		Results:     graded,
		Dropped:     dropped,
		Correct:     correct,
		Total:       total,
		CompletedAt: record.CompletedAt,
	}, nil
}

func (s *resultService) History(ctx context.Context, name string, filters repositories.ResultFilters) ([]*models.ResultRecord, error) {
	if !validator.IsActivityName(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidActivityName, name)
	}
	records, err := s.repo.List(ctx, name, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list results for %s: %w", name, err)
	}
	return records, nil
}
