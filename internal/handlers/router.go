package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/activity-service/internal/events"
	"github.com/SAP-F-2025/activity-service/internal/services"
	"github.com/SAP-F-2025/activity-service/internal/utils"
	"github.com/SAP-F-2025/activity-service/internal/validator"
)

type HandlerManager struct {
	activityHandler *ActivityHandler
	resultHandler   *ResultHandler
	eventsHandler   *EventsHandler
	auth            gin.HandlerFunc
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	hub *events.Hub,
	parser TokenParser,
	validator *validator.Validator,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		activityHandler: NewActivityHandler(serviceManager.Activity(), validator, logger),
		resultHandler:   NewResultHandler(serviceManager.Results(), serviceManager.Export(), validator, logger),
		eventsHandler:   NewEventsHandler(serviceManager.Events(), hub, validator, logger),
		auth:            AuthMiddleware(parser),
	}
}

// SetupRoutes sets up all API routes. Authoring endpoints sit behind the
// auth middleware; learner endpoints are open.
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", HealthCheck)

	v1 := router.Group("/api/v1")
	{
		activities := v1.Group("/activities")
		{
			activities.GET("", hm.activityHandler.ListActivities)
			activities.POST("/compile", hm.activityHandler.CompileActivity)
			activities.POST("/batch/compile", hm.auth, hm.activityHandler.CompileAll)
			activities.GET("/:name", hm.activityHandler.GetActivity)
			activities.PUT("/:name", hm.auth, hm.activityHandler.SaveActivity)
			activities.POST("/:name/check", hm.activityHandler.CheckAnswer)

			// Results
			activities.POST("/:name/results", hm.resultHandler.SubmitResults)
			activities.GET("/:name/results", hm.resultHandler.ResumeResults)
			activities.GET("/:name/results/history", hm.auth, hm.resultHandler.GetHistory)
			activities.GET("/:name/results/export", hm.auth, hm.resultHandler.ExportResults)
		}

		v1.POST("/validation/check", hm.activityHandler.CheckValidation)

		v1.POST("/validate", hm.auth, hm.eventsHandler.TriggerValidation)
		v1.GET("/events", hm.eventsHandler.StreamEvents)
	}
}

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "activity-service",
	})
}
