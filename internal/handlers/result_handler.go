package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/activity-service/internal/models"
	"github.com/SAP-F-2025/activity-service/internal/repositories"
	"github.com/SAP-F-2025/activity-service/internal/services"
	"github.com/SAP-F-2025/activity-service/internal/utils"
	"github.com/SAP-F-2025/activity-service/internal/validator"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	maxHistoryLimit = 100
)

type ResultHandler struct {
	BaseHandler
	resultService services.ResultService
	exportService services.ExportService
}

func NewResultHandler(
	resultService services.ResultService,
	exportService services.ExportService,
	validator *validator.Validator,
	logger utils.Logger,
) *ResultHandler {
	return &ResultHandler{
		BaseHandler:   NewBaseHandler(logger, validator),
		resultService: resultService,
		exportService: exportService,
	}
}

// SubmitResults grades and saves a finished activity
// @Router /activities/{name}/results [post]
func (h *ResultHandler) SubmitResults(c *gin.Context) {
	name, ok := h.parseNameParam(c, "name")
	if !ok {
		return
	}
	var submission models.Submission
	if !h.bindJSON(c, &submission) {
		return
	}

	h.LogRequest(c, "Submitting results", "activity", name, "results", len(submission.Results))

	summary, err := h.resultService.Submit(c.Request.Context(), name, &submission)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.respond(c, http.StatusCreated, summary)
}

// ResumeResults reloads the latest saved answers
// @Router /activities/{name}/results [get]
func (h *ResultHandler) ResumeResults(c *gin.Context) {
	name, ok := h.parseNameParam(c, "name")
	if !ok {
		return
	}

	resp, err := h.resultService.Resume(c.Request.Context(), name)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.respond(c, http.StatusOK, resp)
}

// GetHistory lists saved results, newest first
// @Router /activities/{name}/results/history [get]
func (h *ResultHandler) GetHistory(c *gin.Context) {
	name, ok := h.parseNameParam(c, "name")
	if !ok {
		return
	}

	filters := repositories.ResultFilters{Limit: h.parseIntQuery(c, "limit", 20)}
	if filters.Limit > maxHistoryLimit {
		filters.Limit = maxHistoryLimit
	}
	if since := c.Query("since"); since != "" {
		t, err := time.Parse(time.RFC3339, since)
		if err != nil {
			h.RespondWithError(c, http.StatusBadRequest, "Invalid since", err, "since must be an RFC 3339 timestamp")
			return
		}
		filters.Since = &t
	}

	records, err := h.resultService.History(c.Request.Context(), name, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.respond(c, http.StatusOK, gin.H{"results": records, "total": len(records)})
}

// ExportResults downloads the latest results as xlsx, or csv with ?format=csv
// @Router /activities/{name}/results/export [get]
func (h *ResultHandler) ExportResults(c *gin.Context) {
	name, ok := h.parseNameParam(c, "name")
	if !ok {
		return
	}

	var query models.ExportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid query parameters", err, err.Error())
		return
	}
	if err := h.validator.Validate(query); err != nil {
		h.handleServiceError(c, err)
		return
	}

	var (
		data        []byte
		err         error
		contentType = xlsxContentType
		filename    = name + "-results.xlsx"
	)
	if query.Format == "csv" {
		data, err = h.exportService.ExportResultsToCSV(c.Request.Context(), name)
		contentType = "text/csv; charset=utf-8"
		filename = name + "-results.csv"
	} else {
		data, err = h.exportService.ExportResultsToExcel(c.Request.Context(), name)
	}
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, data)
}

func (h *ResultHandler) parseIntQuery(c *gin.Context, param string, defaultValue int) int {
	valueStr := c.Query(param)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil || value < 0 {
		return defaultValue
	}
	return value
}
