package services

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/activity-service/internal/activity"
	"github.com/SAP-F-2025/activity-service/internal/events"
	"github.com/SAP-F-2025/activity-service/internal/grading"
	"github.com/SAP-F-2025/activity-service/internal/models"
	"github.com/SAP-F-2025/activity-service/internal/repositories"
	"github.com/SAP-F-2025/activity-service/internal/results"
)

func boolPtr(b bool) *bool { return &b }

func TestResultService_SubmitRegradesAgainstSource(t *testing.T) {
	env := newTestEnv()
	env.sources.On("Get", mock.Anything, "quiz").Return(quizSource, nil)

	var saved *models.ResultRecord
	env.results.On("Save", mock.Anything, mock.MatchedBy(func(r *models.ResultRecord) bool {
		return r.ActivityName == "quiz"
	})).Run(func(args mock.Arguments) {
		saved = args.Get(1).(*models.ResultRecord)
	}).Return(nil)

	completed := time.Date(2025, 5, 1, 9, 30, 0, 0, time.UTC)
	submission := &models.Submission{
		Results: []models.GradedResult{
			{Text: "forged", Selected: "B", Correct: "B", IsCorrect: boolPtr(true)},
			{Selected: "A,C", IsCorrect: boolPtr(false)},
			{Selected: "A", IsCorrect: boolPtr(true)},
		},
		CompletedAt: completed,
	}

	summary, err := env.manager.Results().Submit(context.Background(), "quiz", submission)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Correct)
	assert.Equal(t, 2, summary.Total)
	require.Len(t, summary.Results, 2)
	assert.False(t, *summary.Results[0].IsCorrect)
	assert.Equal(t, "What is the capital of France?", summary.Results[0].Text)
	assert.True(t, *summary.Results[1].IsCorrect)
	assert.True(t, strings.HasPrefix(summary.Markdown, "__Type__"))

	require.NotNil(t, saved)
	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, models.ActivityMultipleChoice, saved.Type)
	assert.Equal(t, summary.Markdown, saved.Markdown)
	assert.Equal(t, completed, saved.CompletedAt)

	var answers map[int]models.Answer
	require.NoError(t, json.Unmarshal(saved.Answers, &answers))
	assert.Equal(t, []string{"B"}, answers[0].Values)
	assert.Equal(t, []string{"A", "C"}, answers[1].Values)

	assert.Equal(t, []events.EventType{events.EventResultsSaved}, env.eventTypes())
}

func TestResultService_SubmitWriteFailure(t *testing.T) {
	env := newTestEnv()
	env.sources.On("Get", mock.Anything, "quiz").Return(quizSource, nil)
	env.results.On("Save", mock.Anything, mock.Anything).Return(assert.AnError)

	_, err := env.manager.Results().Submit(context.Background(), "quiz", &models.Submission{})
	assert.True(t, IsWriteFailed(err))
	assert.ErrorIs(t, err, assert.AnError)
	assert.Empty(t, env.eventTypes())
}

func savedRecord(t *testing.T, source string, answers grading.Answers) *models.ResultRecord {
	t.Helper()
	act, err := activity.NewCompiler().Compile(source)
	require.NoError(t, err)
	graded := grading.Evaluate(act, answers)
	correct, total := grading.Summary(graded)
	return &models.ResultRecord{
		ID:           "rec-1",
		ActivityName: "quiz",
		Type:         act.Type,
		Markdown:     results.Encode(act, graded),
		Correct:      correct,
		Total:        total,
		CompletedAt:  time.Date(2025, 5, 1, 9, 30, 0, 0, time.UTC),
	}
}

func TestResultService_ResumeDropsStaleAnswers(t *testing.T) {
	env := newTestEnv()
	env.sources.On("Get", mock.Anything, "quiz").Return(quizSource, nil)
	record := savedRecord(t, quizSource, grading.Answers{
		0: models.Multi("A"),
		1: models.Multi("Z"),
	})
	env.results.On("Latest", mock.Anything, "quiz").Return(record, nil)

	resp, err := env.manager.Results().Resume(context.Background(), "quiz")
	require.NoError(t, err)

	assert.Equal(t, []int{1}, resp.Dropped)
	require.Contains(t, resp.Answers, 0)
	assert.Equal(t, []string{"A"}, resp.Answers[0].Values)
	assert.NotContains(t, resp.Answers, 1)
	assert.Equal(t, 1, resp.Correct)
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, grading.NoAnswer, resp.Results[1].Selected)
	assert.Equal(t, record.CompletedAt, resp.CompletedAt)
}

func TestResultService_ResumeAfterTypeChange(t *testing.T) {
	env := newTestEnv()
	env.sources.On("Get", mock.Anything, "quiz").Return(unitsSource, nil)
	env.results.On("Latest", mock.Anything, "quiz").Return(savedRecord(t, quizSource, grading.Answers{
		0: models.Multi("A"),
		1: models.Multi("C"),
	}), nil)

	resp, err := env.manager.Results().Resume(context.Background(), "quiz")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, resp.Dropped)
	assert.Empty(t, resp.Answers)
	assert.Equal(t, models.ActivityTextInput, resp.Activity.Type)
}

func TestResultService_ResumeWithoutResults(t *testing.T) {
	env := newTestEnv()
	env.sources.On("Get", mock.Anything, "quiz").Return(quizSource, nil)
	env.results.On("Latest", mock.Anything, "quiz").Return(nil, repositories.ErrNotFound)

	_, err := env.manager.Results().Resume(context.Background(), "quiz")
	assert.ErrorIs(t, err, ErrResultsNotFound)
	assert.True(t, IsNotFound(err))
}

func TestResultService_History(t *testing.T) {
	env := newTestEnv()
	filters := repositories.ResultFilters{Limit: 5}
	env.results.On("List", mock.Anything, "quiz", filters).Return([]*models.ResultRecord{{ID: "a"}, {ID: "b"}}, nil)

	records, err := env.manager.Results().History(context.Background(), "quiz", filters)
	require.NoError(t, err)
	assert.Len(t, records, 2)

	_, err = env.manager.Results().History(context.Background(), "a/b", filters)
	assert.ErrorIs(t, err, ErrInvalidActivityName)
}

func TestExportService_Excel(t *testing.T) {
	env := newTestEnv()
	env.sources.On("Get", mock.Anything, "quiz").Return(quizSource, nil)
	env.results.On("Latest", mock.Anything, "quiz").Return(savedRecord(t, quizSource, grading.Answers{
		0: models.Multi("A"),
	}), nil)

	data, err := env.manager.Export().ExportResultsToExcel(context.Background(), "quiz")
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Summary", "Results"}, f.GetSheetList())

	activityName, err := f.GetCellValue("Summary", "B1")
	require.NoError(t, err)
	assert.Equal(t, "quiz", activityName)
	typeName, err := f.GetCellValue("Summary", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Multiple Choice", typeName)

	rows, err := f.GetRows("Results")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, resultHeaders, rows[0])
	assert.Equal(t, "What is the capital of France?", rows[1][1])
	assert.Equal(t, "Correct", rows[1][4])
	assert.Equal(t, "Incorrect", rows[2][4])
}

func TestExportService_CSV(t *testing.T) {
	env := newTestEnv()
	env.sources.On("Get", mock.Anything, "units").Return(unitsSource, nil)
	env.results.On("Latest", mock.Anything, "units").Return(savedRecord(t, unitsSource, grading.Answers{
		0: models.Single("5kg"),
	}), nil)

	data, err := env.manager.Export().ExportResultsToCSV(context.Background(), "units")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "#,Question,Selected Answer,Correct Answer,Result,Explanation", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "1,How heavy is the parcel?,5kg,5 kg,Correct"), lines[1])
	assert.Contains(t, lines[2], "Pending")
}

func TestExportService_NoResults(t *testing.T) {
	env := newTestEnv()
	env.sources.On("Get", mock.Anything, "quiz").Return(quizSource, nil)
	env.results.On("Latest", mock.Anything, "quiz").Return(nil, repositories.ErrNotFound)

	_, err := env.manager.Export().ExportResultsToCSV(context.Background(), "quiz")
	assert.ErrorIs(t, err, ErrResultsNotFound)
}

func TestEventService_TriggerValidation(t *testing.T) {
	env := newTestEnv()

	event, err := env.manager.Events().TriggerValidation(context.Background(), "quiz")
	require.NoError(t, err)
	assert.Equal(t, events.EventValidate, event.Type)
	assert.Equal(t, "quiz", event.Activity)

	published := env.publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, event.ID, published[0].ID)
}
