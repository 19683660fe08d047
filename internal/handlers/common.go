package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gopkg.in/yaml.v3"

	"github.com/SAP-F-2025/activity-service/internal/services"
	"github.com/SAP-F-2025/activity-service/internal/utils"
	"github.com/SAP-F-2025/activity-service/internal/validator"
)

// ===== COMMON RESPONSE STRUCTURES =====

// ErrorResponse represents an error response
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ===== BASE HANDLER STRUCT =====

// BaseHandler provides logging and response helpers for all handlers
type BaseHandler struct {
	logger    utils.Logger
	validator *validator.Validator
}

func NewBaseHandler(logger utils.Logger, validator *validator.Validator) BaseHandler {
	return BaseHandler{logger: logger, validator: validator}
}

// LogRequest logs an incoming request on the request-scoped logger
func (h *BaseHandler) LogRequest(c *gin.Context, message string, additionalFields ...interface{}) {
	fields := append([]interface{}{
		"remote_addr", c.ClientIP(),
		"user_id", h.extractUserID(c),
	}, additionalFields...)
	utils.GetLoggerFromContext(c).Info(message, fields...)
}

// LogError logs error details with context information
func (h *BaseHandler) LogError(c *gin.Context, err error, message string, additionalFields ...interface{}) {
	fields := append([]interface{}{"user_id", h.extractUserID(c)}, additionalFields...)
	utils.GetLoggerFromContext(c).LogError(err, message, fields...)
}

func (h *BaseHandler) extractUserID(c *gin.Context) interface{} {
	if userID, exists := c.Get(userIDKey); exists {
		return userID
	}
	return nil
}

// RespondWithError sends a consistent error response and logs it
func (h *BaseHandler) RespondWithError(c *gin.Context, statusCode int, message string, err error, details ...interface{}) {
	errorResp := ErrorResponse{Message: message}
	if len(details) > 0 {
		errorResp.Details = details[0]
	}

	if err != nil && statusCode >= http.StatusInternalServerError {
		h.LogError(c, err, message, "status_code", statusCode)
	}
	c.AbortWithStatusJSON(statusCode, errorResp)
}

// bindJSON binds and validates the request body. It responds and returns
// false on failure.
func (h *BaseHandler) bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err, err.Error())
		return false
	}
	if err := h.validator.Validate(req); err != nil {
		h.handleServiceError(c, err)
		return false
	}
	return true
}

// respond writes data as JSON, or as YAML when ?format=yaml is set
func (h *BaseHandler) respond(c *gin.Context, statusCode int, data interface{}) {
	if strings.EqualFold(c.Query("format"), "yaml") {
		out, err := yaml.Marshal(data)
		if err != nil {
			h.RespondWithError(c, http.StatusInternalServerError, "Failed to render YAML", err)
			return
		}
		c.Data(statusCode, "application/yaml; charset=utf-8", out)
		return
	}
	c.JSON(statusCode, data)
}

// parseNameParam reads an activity name path parameter
func (h *BaseHandler) parseNameParam(c *gin.Context, param string) (string, bool) {
	name := strings.TrimSpace(c.Param(param))
	if !validator.IsActivityName(name) {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid "+param, nil, "name must start with a letter or digit and contain only letters, digits, '.', '_' or '-'")
		return "", false
	}
	return name, true
}

// handleServiceError maps service errors to HTTP responses
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		h.RespondWithError(c, http.StatusBadRequest, "Validation failed", err, validationErrors)
		return
	}

	var businessRuleError *services.BusinessRuleError
	if errors.As(err, &businessRuleError) {
		h.RespondWithError(c, http.StatusUnprocessableEntity, businessRuleError.Message, err, map[string]interface{}{
			"rule":    businessRuleError.Rule,
			"context": businessRuleError.Context,
		})
		return
	}

	switch {
	case services.IsParseError(err):
		h.RespondWithError(c, http.StatusUnprocessableEntity, "Activity could not be compiled", err, err.Error())
	case errors.Is(err, services.ErrInvalidActivityName), services.IsValidation(err):
		h.RespondWithError(c, http.StatusBadRequest, "Validation failed", err, err.Error())
	case errors.Is(err, services.ErrActivityNotFound):
		h.RespondWithError(c, http.StatusNotFound, "Activity not found", err)
	case errors.Is(err, services.ErrResultsNotFound):
		h.RespondWithError(c, http.StatusNotFound, "No saved results", err)
	case errors.Is(err, services.ErrSlotNotFound):
		h.RespondWithError(c, http.StatusNotFound, "Question not found", err, err.Error())
	case services.IsUnauthorized(err):
		h.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
	case services.IsWriteFailed(err):
		h.RespondWithError(c, http.StatusInternalServerError, "Failed to save", err)
	default:
		h.RespondWithError(c, http.StatusInternalServerError, "Internal server error", err)
	}
}
