package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/activity-service/internal/events"
	"github.com/SAP-F-2025/activity-service/internal/models"
	"github.com/SAP-F-2025/activity-service/internal/services"
	"github.com/SAP-F-2025/activity-service/internal/utils"
	"github.com/SAP-F-2025/activity-service/internal/validator"
)

type EventsHandler struct {
	BaseHandler
	eventService services.EventService
	hub          *events.Hub
}

func NewEventsHandler(
	eventService services.EventService,
	hub *events.Hub,
	validator *validator.Validator,
	logger utils.Logger,
) *EventsHandler {
	return &EventsHandler{
		BaseHandler:  NewBaseHandler(logger, validator),
		eventService: eventService,
		hub:          hub,
	}
}

// TriggerValidation asks open activity sessions to validate their answers
// @Router /validate [post]
func (h *EventsHandler) TriggerValidation(c *gin.Context) {
	var req models.ValidateTriggerRequest
	if c.Request.ContentLength != 0 && !h.bindJSON(c, &req) {
		return
	}

	event, err := h.eventService.TriggerValidation(c.Request.Context(), req.Activity)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, SuccessResponse{Message: "Validation triggered", Data: event})
}

// StreamEvents streams activity events as server-sent events. ?activity=
// narrows the stream to one activity.
// @Router /events [get]
func (h *EventsHandler) StreamEvents(c *gin.Context) {
	activity := c.Query("activity")
	if activity != "" && !validator.IsActivityName(activity) {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid activity", nil)
		return
	}

	client := h.hub.Register(activity)
	defer h.hub.Unregister(client)

	h.hub.Serve(c.Writer, c.Request, client)
}
