package models

import (
	"time"

	"github.com/SAP-F-2025/activity-service/internal/validation"
)

// ===== ACTIVITY REQUESTS =====

type CompileRequest struct {
	Markdown string `json:"markdown" validate:"required"`
}

type SaveActivityRequest struct {
	Markdown string `json:"markdown" validate:"required"`
}

// ActivityListQuery filters the stored activity listing.
type ActivityListQuery struct {
	Type string `form:"type" json:"type" validate:"omitempty,activity_type"`
}

// CheckAnswerRequest carries one answer for live validation. Multiple
// choice answers use Answers; everything else uses Answer.
type CheckAnswerRequest struct {
	Index   int      `json:"index" validate:"min=0"`
	Answer  *string  `json:"answer"`
	Answers []string `json:"answers"`
}

// ToAnswer returns the submitted answer; an empty request is an empty
// single answer.
func (r CheckAnswerRequest) ToAnswer() Answer {
	if r.Answers != nil {
		return Multi(r.Answers...)
	}
	if r.Answer != nil {
		return Single(*r.Answer)
	}
	return Single("")
}

// ValidationCheckRequest runs a strategy outside any stored activity. When
// Kind is empty, Correct is read as an answer line with optional
// [kind: x] and [options: k=v,...] suffixes.
type ValidationCheckRequest struct {
	Answer  string             `json:"answer"`
	Correct string             `json:"correct" validate:"required"`
	Kind    string             `json:"kind" validate:"omitempty,validation_kind"`
	Options validation.Options `json:"options"`
}

// ValidateTriggerRequest asks open sessions to validate. An empty Activity
// addresses every session.
type ValidateTriggerRequest struct {
	Activity string `json:"activity" validate:"omitempty,activity_name"`
}

// ExportQuery selects the spreadsheet format of a results export.
type ExportQuery struct {
	Format string `form:"format" json:"format" validate:"omitempty,oneof=xlsx csv"`
}

// ===== RESPONSES =====

type ActivityInfo struct {
	Name string       `json:"name" yaml:"name"`
	Type ActivityType `json:"type" yaml:"type"`
}

type CheckAnswerResponse struct {
	Index     int    `json:"index"`
	Result    string `json:"result"`
	IsCorrect *bool  `json:"isCorrect,omitempty"`
}

type BatchCompileResult struct {
	Name  string       `json:"name" yaml:"name"`
	Type  ActivityType `json:"type,omitempty" yaml:"type,omitempty"`
	OK    bool         `json:"ok" yaml:"ok"`
	Error string       `json:"error,omitempty" yaml:"error,omitempty"`
}

// ResumeResponse is the saved state of an activity reloaded against its
// current source. Dropped lists saved answers that no longer fit.
type ResumeResponse struct {
	Activity    *Activity      `json:"activity"`
	Answers     map[int]Answer `json:"answers"`
	Results     []GradedResult `json:"results"`
	Dropped     []int          `json:"dropped,omitempty"`
	Correct     int            `json:"correct"`
	Total       int            `json:"total"`
	CompletedAt time.Time      `json:"completedAt"`
}
