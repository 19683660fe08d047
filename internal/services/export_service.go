package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/activity-service/internal/models"
	"github.com/SAP-F-2025/activity-service/internal/repositories"
	"github.com/SAP-F-2025/activity-service/internal/results"
)

var resultHeaders = []string{"#", "Question", "Selected Answer", "Correct Answer", "Result", "Explanation"}

type exportService struct {
	activities ActivityService
	repo       repositories.ResultRepository
	logger     *ServiceLogger
}

func NewExportService(activities ActivityService, repo repositories.ResultRepository, logger *slog.Logger) ExportService {
	return &exportService{
		activities: activities,
		repo:       repo,
		logger:     NewServiceLogger(logger, "export"),
	}
}

// ExportResultsToExcel writes the latest results of an activity to a
// workbook with a Summary sheet and a Results sheet.
func (s *exportService) ExportResultsToExcel(ctx context.Context, name string) (data []byte, err error) {
	defer s.logger.track(ctx, "export_excel", name, &err)()

	record, rows, err := s.latestRows(ctx, name)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	summarySheet := "Summary"
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	summary := [][]interface{}{
		{"Activity", record.ActivityName},
		{"Type", record.Type.DisplayName()},
		{"Correct", record.Correct},
		{"Total", record.Total},
		{"Completed At", record.CompletedAt.Format("2006-01-02 15:04:05")},
	}
	for i, row := range summary {
		if err := f.SetSheetRow(summarySheet, fmt.Sprintf("A%d", i+1), &row); err != nil {
			return nil, fmt.Errorf("failed to write summary: %w", err)
		}
	}

	sheetName := "Results"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)

	for i, header := range resultHeaders {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}
	for rowIndex, row := range rows {
		for colIndex, value := range row {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *exportService) ExportResultsToCSV(ctx context.Context, name string) (data []byte, err error) {
	defer s.logger.track(ctx, "export_csv", name, &err)()

	_, rows, err := s.latestRows(ctx, name)
	if err != nil {
		return nil, err
	}

	var buf strings.Builder
	writer := csv.NewWriter(&buf)
	if err := writer.Write(resultHeaders); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, row := range rows {
		record := make([]string, len(row))
		for i, v := range row {
			record[i] = fmt.Sprint(v)
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return []byte(buf.String()), nil
}

// latestRows decodes the latest saved document into one row per response.
func (s *exportService) latestRows(ctx context.Context, name string) (*models.ResultRecord, [][]interface{}, error) {
	if _, err := s.activities.Get(ctx, name); err != nil {
		return nil, nil, err
	}
	record, err := s.repo.Latest(ctx, name)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: %s", ErrResultsNotFound, name)
		}
		return nil, nil, fmt.Errorf("failed to load results for %s: %w", name, err)
	}
	decoded, err := results.Decode(record.Markdown)
	if err != nil {
		return nil, nil, NewBusinessRuleError("results_document", err.Error(), map[string]interface{}{
			"activity": name,
		})
	}
	if record.Type == "" {
		record.Type = decoded.Type
	}
	if record.Total == 0 {
		record.Correct, record.Total, _ = results.ParseSummary(record.Markdown)
	}

	rows := make([][]interface{}, 0, len(decoded.Results))
	for i, r := range decoded.Results {
		rows = append(rows, []interface{}{
			i + 1,
			r.Text,
			r.Selected,
			r.Correct,
			resultLabel(r.IsCorrect),
			r.Explanation,
		})
	}
	return record, rows, nil
}

func resultLabel(isCorrect *bool) string {
	switch {
	case isCorrect == nil:
		return "Pending"
	case *isCorrect:
		return "Correct"
	default:
		return "Incorrect"
	}
}
