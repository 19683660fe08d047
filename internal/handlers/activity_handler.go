package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/activity-service/internal/models"
	"github.com/SAP-F-2025/activity-service/internal/services"
	"github.com/SAP-F-2025/activity-service/internal/utils"
	"github.com/SAP-F-2025/activity-service/internal/validator"
)

type ActivityHandler struct {
	BaseHandler
	activityService services.ActivityService
}

func NewActivityHandler(
	activityService services.ActivityService,
	validator *validator.Validator,
	logger utils.Logger,
) *ActivityHandler {
	return &ActivityHandler{
		BaseHandler:     NewBaseHandler(logger, validator),
		activityService: activityService,
	}
}

// CompileActivity compiles markdown without storing it
// @Router /activities/compile [post]
func (h *ActivityHandler) CompileActivity(c *gin.Context) {
	var req models.CompileRequest
	if !h.bindJSON(c, &req) {
		return
	}

	act, err := h.activityService.Compile(c.Request.Context(), req.Markdown)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.respond(c, http.StatusOK, act)
}

// ListActivities lists stored activities, optionally filtered by ?type=
// @Router /activities [get]
func (h *ActivityHandler) ListActivities(c *gin.Context) {
	var query models.ActivityListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid query parameters", err, err.Error())
		return
	}

	activities, err := h.activityService.List(c.Request.Context(), query)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.respond(c, http.StatusOK, gin.H{"activities": activities, "total": len(activities)})
}

// GetActivity compiles a stored activity
// @Router /activities/{name} [get]
func (h *ActivityHandler) GetActivity(c *gin.Context) {
	name, ok := h.parseNameParam(c, "name")
	if !ok {
		return
	}

	act, err := h.activityService.Get(c.Request.Context(), name)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.respond(c, http.StatusOK, act)
}

// SaveActivity stores markdown under name once it compiles
// @Router /activities/{name} [put]
func (h *ActivityHandler) SaveActivity(c *gin.Context) {
	name, ok := h.parseNameParam(c, "name")
	if !ok {
		return
	}
	var req models.SaveActivityRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Saving activity", "activity", name)

	act, err := h.activityService.Put(c.Request.Context(), name, req.Markdown)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.respond(c, http.StatusOK, act)
}

// CheckAnswer validates one answer against a stored activity
// @Router /activities/{name}/check [post]
func (h *ActivityHandler) CheckAnswer(c *gin.Context) {
	name, ok := h.parseNameParam(c, "name")
	if !ok {
		return
	}
	var req models.CheckAnswerRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.activityService.Check(c.Request.Context(), name, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CheckValidation runs a validation strategy on an ad-hoc answer
// @Router /validation/check [post]
func (h *ActivityHandler) CheckValidation(c *gin.Context) {
	var req models.ValidationCheckRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.activityService.CheckValidation(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CompileAll compiles every stored activity
// @Router /activities/batch/compile [post]
func (h *ActivityHandler) CompileAll(c *gin.Context) {
	h.LogRequest(c, "Compiling all activities")

	out, err := h.activityService.CompileAll(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	failed := 0
	for _, r := range out {
		if !r.OK {
			failed++
		}
	}
	h.respond(c, http.StatusOK, gin.H{"results": out, "total": len(out), "failed": failed})
}
