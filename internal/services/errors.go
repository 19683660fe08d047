package services

import (
	"errors"
	"fmt"

	"github.com/SAP-F-2025/activity-service/internal/activity"
	apperrors "github.com/SAP-F-2025/activity-service/internal/errors"
)

var (
	ErrNotFound         = errors.New("resource not found")
	ErrUnauthorized     = errors.New("unauthorized access")
	ErrValidationFailed = errors.New("validation failed")

	ErrActivityNotFound    = errors.New("activity not found")
	ErrResultsNotFound     = errors.New("no saved results for activity")
	ErrInvalidActivityName = errors.New("invalid activity name")
	ErrSlotNotFound        = errors.New("question, blank or item index does not exist")

	// ErrWriteFailed wraps storage failures while saving sources or results.
	ErrWriteFailed = errors.New("write failed")
)

type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

type BusinessRuleError struct {
	Rule    string                 `json:"rule"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func (bre *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule violation (%s): %s", bre.Rule, bre.Message)
}

func NewBusinessRuleError(rule, message string, context map[string]interface{}) *BusinessRuleError {
	return &BusinessRuleError{Rule: rule, Message: message, Context: context}
}

// NewValidationError creates a new validation error using the shared type
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrActivityNotFound) ||
		errors.Is(err, ErrResultsNotFound) ||
		errors.Is(err, ErrSlotNotFound)
}

func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsValidation checks if error represents invalid input
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) || errors.Is(err, ErrInvalidActivityName) {
		return true
	}
	var ve apperrors.ValidationErrors
	if errors.As(err, &ve) {
		return true
	}
	var single *apperrors.ValidationError
	return errors.As(err, &single)
}

// IsParseError checks if the markdown could not be compiled at all
func IsParseError(err error) bool {
	var pe *activity.ParseError
	return errors.As(err, &pe)
}

func IsBusinessRule(err error) bool {
	var bre *BusinessRuleError
	return errors.As(err, &bre)
}

func IsWriteFailed(err error) bool {
	return errors.Is(err, ErrWriteFailed)
}
