package services

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/SAP-F-2025/activity-service/internal/activity"
	"github.com/SAP-F-2025/activity-service/internal/cache"
	"github.com/SAP-F-2025/activity-service/internal/events"
	"github.com/SAP-F-2025/activity-service/internal/models"
	"github.com/SAP-F-2025/activity-service/internal/repositories"
	"github.com/SAP-F-2025/activity-service/internal/validator"
)

// MockSourceRepository is a mock implementation of SourceRepository
type MockSourceRepository struct {
	mock.Mock
}

func (m *MockSourceRepository) List(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockSourceRepository) Get(ctx context.Context, name string) (string, error) {
	args := m.Called(ctx, name)
	return args.String(0), args.Error(1)
}

func (m *MockSourceRepository) Put(ctx context.Context, name, markdown string) error {
	args := m.Called(ctx, name, markdown)
	return args.Error(0)
}

// MockResultRepository is a mock implementation of ResultRepository
type MockResultRepository struct {
	mock.Mock
}

func (m *MockResultRepository) Save(ctx context.Context, record *models.ResultRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockResultRepository) Latest(ctx context.Context, activity string) (*models.ResultRecord, error) {
	args := m.Called(ctx, activity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ResultRecord), args.Error(1)
}

func (m *MockResultRepository) List(ctx context.Context, activity string, filters repositories.ResultFilters) ([]*models.ResultRecord, error) {
	args := m.Called(ctx, activity, filters)
	return args.Get(0).([]*models.ResultRecord), args.Error(1)
}

type testEnv struct {
	sources   *MockSourceRepository
	results   *MockResultRepository
	publisher *events.MockEventPublisher
	manager   ServiceManager
}

func newTestEnv() *testEnv {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	env := &testEnv{
		sources:   &MockSourceRepository{},
		results:   &MockResultRepository{},
		publisher: events.NewMockEventPublisher(logger),
	}
	env.manager = NewServiceManager(Dependencies{
		Compiler:  activity.NewCompiler(),
		Sources:   env.sources,
		Results:   env.results,
		Cache:     cache.NewActivityCache(cache.NewMemoryCache(), time.Minute),
		Publisher: env.publisher,
		Validator: validator.New(),
		Logger:    logger,
	})
	return env
}

func (e *testEnv) eventTypes() []events.EventType {
	var out []events.EventType
	for _, ev := range e.publisher.GetPublishedEvents() {
		out = append(out, ev.Type)
	}
	return out
}

const quizSource = `__Type__

Multiple Choice

__Practice Question__

What is the capital of France?

A. Paris
B. London
C. Berlin

__Suggested Answers__

- A (Correct)
- B

__Practice Question__

Which are primary colours?

A. Red
B. Green
C. Blue
D. Yellow

__Suggested Answers__

- A
- C
- D
- mode: any
`

const unitsSource = `__Type__

Text Input

__Practice Question__

How heavy is the parcel?

__Correct Answers__

- 5 kg [kind: numeric-with-units] [options: units=kg,g]

__Practice Question__

Explain your reasoning.

__Suggested Answers__

- anything [kind: validate-later]
`

const brokenSource = "__Type__\n\nMultiple Choice\n\n__Content__\n\nNo questions here.\n"
