package models

import (
	"encoding/json"
	"strings"
	"time"

	"gorm.io/datatypes"
)

// Answer is a learner answer: one value for most activities, a set of option
// labels for multiple choice.
type Answer struct {
	Values []string
	Multi  bool
}

func Single(v string) Answer { return Answer{Values: []string{v}} }

func Multi(v ...string) Answer { return Answer{Values: v, Multi: true} }

// Value returns the single value, or the values comma-joined.
func (a Answer) Value() string { return strings.Join(a.Values, ",") }

func (a Answer) IsEmpty() bool {
	for _, v := range a.Values {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func (a Answer) MarshalJSON() ([]byte, error) {
	if a.Multi {
		if a.Values == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(a.Values)
	}
	return json.Marshal(a.Value())
}

func (a *Answer) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*a = Multi(list...)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*a = Single(s)
	return nil
}

// GradedResult is the outcome of one question, blank or item. IsCorrect is
// nil for answers that are deferred to manual review.
type GradedResult struct {
	Text        string `json:"text" yaml:"text"`
	Selected    string `json:"selected" yaml:"selected"`
	Correct     string `json:"correct" yaml:"correct"`
	IsCorrect   *bool  `json:"isCorrect,omitempty" yaml:"isCorrect,omitempty"`
	Explanation string `json:"explanation,omitempty" yaml:"explanation,omitempty"`
}

// Submission is the payload a client posts when an activity is finished.
type Submission struct {
	Results     []GradedResult `json:"results" validate:"dive"`
	Activity    *Activity      `json:"activity"`
	CompletedAt time.Time      `json:"completedAt"`
}

// ResultSummary is returned after grading.
type ResultSummary struct {
	Activity string         `json:"activity"`
	Type     ActivityType   `json:"type"`
	Correct  int            `json:"correct"`
	Total    int            `json:"total"`
	Results  []GradedResult `json:"results"`
	Markdown string         `json:"markdown,omitempty"`
}

// ResultRecord is one persisted results document.
type ResultRecord struct {
	ID           string         `json:"id" gorm:"primaryKey;size:36"`
	ActivityName string         `json:"activity_name" gorm:"not null;size:200;index"`
	Type         ActivityType   `json:"type" gorm:"not null;size:40"`
	Markdown     string         `json:"markdown" gorm:"type:text;not null"`
	Answers      datatypes.JSON `json:"answers"` // map[int]Answer
	Correct      int            `json:"correct"`
	Total        int            `json:"total"`
	CompletedAt  time.Time      `json:"completed_at" gorm:"index"`
	CreatedAt    time.Time      `json:"created_at"`
}

func (ResultRecord) TableName() string { return "activity_results" }
