package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/SAP-F-2025/activity-service/internal/activity"
	"github.com/SAP-F-2025/activity-service/internal/cache"
	"github.com/SAP-F-2025/activity-service/internal/grading"
	"github.com/SAP-F-2025/activity-service/internal/models"
	"github.com/SAP-F-2025/activity-service/internal/repositories"
	"github.com/SAP-F-2025/activity-service/internal/sections"
	"github.com/SAP-F-2025/activity-service/internal/validation"
	"github.com/SAP-F-2025/activity-service/internal/validator"
)

const batchCompileLimit = 8

type activityService struct {
	compiler  *activity.Compiler
	sources   repositories.SourceRepository
	cache     *cache.ActivityCache
	events    EventService
	validator *validator.Validator
	logger    *ServiceLogger
	slog      *slog.Logger
}

func NewActivityService(
	compiler *activity.Compiler,
	sources repositories.SourceRepository,
	activityCache *cache.ActivityCache,
	events EventService,
	validator *validator.Validator,
	logger *slog.Logger,
) ActivityService {
	return &activityService{
		compiler:  compiler,
		sources:   sources,
		cache:     activityCache,
		events:    events,
		validator: validator,
		logger:    NewServiceLogger(logger, "activity"),
		slog:      logger,
	}
}

// ===== COMPILATION =====

func (s *activityService) Compile(ctx context.Context, markdown string) (act *models.Activity, err error) {
	defer s.logger.track(ctx, "compile", "", &err)()
	return s.compiler.Compile(markdown)
}

// List returns stored activities in name order. The type comes from the
// Type section alone, so broken documents are still listed.
func (s *activityService) List(ctx context.Context, query models.ActivityListQuery) ([]models.ActivityInfo, error) {
	if err := s.validator.Validate(query); err != nil {
		return nil, err
	}
	var want models.ActivityType
	if query.Type != "" {
		want, _ = models.ParseActivityType(query.Type)
	}

	names, err := s.sources.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}

	out := make([]models.ActivityInfo, 0, len(names))
	for _, name := range names {
		markdown, err := s.sources.Get(ctx, name)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("failed to read activity %s: %w", name, err)
		}
		typ := activity.DetectType(sections.Tokenize(markdown))
		if want != "" && typ != want {
			continue
		}
		out = append(out, models.ActivityInfo{Name: name, Type: typ})
	}
	return out, nil
}

// Get compiles the stored source, serving repeated loads of an unchanged
// source from the cache.
func (s *activityService) Get(ctx context.Context, name string) (act *models.Activity, err error) {
	defer s.logger.track(ctx, "get", name, &err)()

	markdown, err := s.source(ctx, name)
	if err != nil {
		return nil, err
	}
	if cached, ok := s.cache.Get(ctx, name, markdown); ok {
		return cached, nil
	}

	act, err = s.compiler.Compile(markdown)
	if err != nil {
		return nil, err
	}
	s.cache.Put(ctx, name, markdown, act)
	return act, nil
}

// Put stores a source only if it compiles.
func (s *activityService) Put(ctx context.Context, name, markdown string) (act *models.Activity, err error) {
	defer s.logger.track(ctx, "put", name, &err)()

	if !validator.IsActivityName(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidActivityName, name)
	}
	act, err = s.compiler.Compile(markdown)
	if err != nil {
		return nil, err
	}
	if err = s.sources.Put(ctx, name, markdown); err != nil {
		return nil, fmt.Errorf("%w: activity %s: %w", ErrWriteFailed, name, err)
	}

	if cerr := s.cache.Invalidate(ctx, name); cerr != nil {
		s.slog.Warn("Failed to invalidate cached activity", "activity", name, "error", cerr)
	}
	s.cache.Put(ctx, name, markdown, act)

	if perr := s.events.NotifyActivityUpdated(ctx, name, act.Type); perr != nil {
		s.slog.Warn("Failed to publish activity update", "activity", name, "error", perr)
	}
	return act, nil
}

// CompileAll compiles every stored source concurrently and reports each
// outcome; one broken document does not fail the batch.
func (s *activityService) CompileAll(ctx context.Context) (out []models.BatchCompileResult, err error) {
	defer s.logger.track(ctx, "compile_all", "", &err)()

	names, err := s.sources.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}

	out = make([]models.BatchCompileResult, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(batchCompileLimit)
	for i, name := range names {
		i, name := i, name // per-iteration copy for the goroutine (go 1.21 loop semantics)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = s.compileStored(gctx, name)
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *activityService) compileStored(ctx context.Context, name string) models.BatchCompileResult {
	result := models.BatchCompileResult{Name: name}
	act, err := s.Get(ctx, name)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.Type = act.Type
	result.OK = true
	return result
}

// ===== LIVE VALIDATION =====

func (s *activityService) Check(ctx context.Context, name string, req *models.CheckAnswerRequest) (*models.CheckAnswerResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	act, err := s.Get(ctx, name)
	if err != nil {
		return nil, err
	}

	verdict, ok := grading.Check(act, req.Index, req.ToAnswer())
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrSlotNotFound, req.Index)
	}
	return &models.CheckAnswerResponse{
		Index:     req.Index,
		Result:    verdict.String(),
		IsCorrect: verdict.Ptr(),
	}, nil
}

func (s *activityService) CheckValidation(ctx context.Context, req *models.ValidationCheckRequest) (*models.CheckAnswerResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	var spec validation.AnswerSpec
	if req.Kind == "" {
		spec = validation.ParseAnswerSpec(req.Correct)
	} else {
		spec = validation.AnswerSpec{
			Answer: req.Correct,
			Spec:   validation.Spec{Kind: validation.Kind(req.Kind), Options: req.Options},
		}
	}

	verdict := validation.Check(spec.Spec, req.Answer, spec.Answer)
	return &models.CheckAnswerResponse{
		Result:    verdict.String(),
		IsCorrect: verdict.Ptr(),
	}, nil
}

func (s *activityService) source(ctx context.Context, name string) (string, error) {
	if !validator.IsActivityName(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidActivityName, name)
	}
	markdown, err := s.sources.Get(ctx, name)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", fmt.Errorf("%w: %s", ErrActivityNotFound, name)
		}
		return "", fmt.Errorf("failed to read activity %s: %w", name, err)
	}
	return markdown, nil
}
