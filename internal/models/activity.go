package models

import (
	"strings"

	"github.com/SAP-F-2025/activity-service/internal/validation"
)

type ActivityType string

const (
	ActivityFillInBlanks   ActivityType = "fill-in-the-blanks"
	ActivityMultipleChoice ActivityType = "multiple-choice"
	ActivityMatching       ActivityType = "matching"
	ActivityTextInput      ActivityType = "text-input"
	ActivitySortIntoBoxes  ActivityType = "sort-into-boxes"
	ActivitySwipeLeftRight ActivityType = "swipe-left-right"
)

// ActivityTypes lists every activity type in display order.
var ActivityTypes = []ActivityType{
	ActivityFillInBlanks,
	ActivityMultipleChoice,
	ActivityMatching,
	ActivityTextInput,
	ActivitySortIntoBoxes,
	ActivitySwipeLeftRight,
}

var displayNames = map[ActivityType]string{
	ActivityFillInBlanks:   "Fill in the Blanks",
	ActivityMultipleChoice: "Multiple Choice",
	ActivityMatching:       "Matching",
	ActivityTextInput:      "Text Input",
	ActivitySortIntoBoxes:  "Sort into Boxes",
	ActivitySwipeLeftRight: "Swipe Left or Right",
}

// DisplayName is the label authors write in the Type section.
func (t ActivityType) DisplayName() string {
	if name, ok := displayNames[t]; ok {
		return name
	}
	return string(t)
}

func (t ActivityType) IsValid() bool {
	_, ok := displayNames[t]
	return ok
}

// ParseActivityType matches free text against the known types, ignoring
// case, punctuation and spacing, so "Fill in the Blanks", "fill-in-the-blanks"
// and "FILL IN THE BLANKS" are the same type.
func ParseActivityType(s string) (ActivityType, bool) {
	key := typeKey(s)
	if key == "" {
		return "", false
	}
	for _, t := range ActivityTypes {
		if key == typeKey(string(t)) || key == typeKey(displayNames[t]) {
			return t, true
		}
	}
	return "", false
}

func typeKey(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Activity is a compiled activity document. Exactly one payload is set.
// Sort and swipe activities carry Items and Labels at the top level.
type Activity struct {
	Type      ActivityType    `json:"type" yaml:"type"`
	Question  *string         `json:"question" yaml:"question"`
	FIB       *FillInBlanks   `json:"fib,omitempty" yaml:"fib,omitempty"`
	MCQ       *MultipleChoice `json:"mcq,omitempty" yaml:"mcq,omitempty"`
	Matching  *Matching       `json:"matching,omitempty" yaml:"matching,omitempty"`
	TextInput *TextInput      `json:"textInput,omitempty" yaml:"textInput,omitempty"`
	Items     []SortItem      `json:"items,omitempty" yaml:"items,omitempty"`
	Labels    Labels          `json:"labels,omitempty" yaml:"labels,omitempty"`

	// Source is the markdown the document was compiled from.
	Source string `json:"-" yaml:"-"`
}

// PayloadCount returns how many variant payloads are populated.
func (a *Activity) PayloadCount() int {
	n := 0
	if a.FIB != nil {
		n++
	}
	if a.MCQ != nil {
		n++
	}
	if a.Matching != nil {
		n++
	}
	if a.TextInput != nil {
		n++
	}
	if a.Items != nil || a.Labels != nil {
		n++
	}
	return n
}

// SlotCount returns the number of answerable slots: blanks, questions or items.
func (a *Activity) SlotCount() int {
	switch {
	case a.FIB != nil:
		return len(a.FIB.Blanks)
	case a.MCQ != nil:
		return len(a.MCQ.Questions)
	case a.Matching != nil:
		return len(a.Matching.Items)
	case a.TextInput != nil:
		return len(a.TextInput.Questions)
	default:
		return len(a.Items)
	}
}

type Blank struct {
	Index  int    `json:"index" yaml:"index"`
	Answer string `json:"answer" yaml:"answer"`
}

type FillInBlanks struct {
	// Content is rendered HTML; each blank is a placeholder element carrying
	// its index.
	Content string   `json:"content" yaml:"content"`
	Blanks  []Blank  `json:"blanks" yaml:"blanks"`
	Choices []string `json:"choices" yaml:"choices"`
}

type MultiSelectMode string

const (
	MultiSelectAll MultiSelectMode = "all"
	MultiSelectAny MultiSelectMode = "any"
)

type MCQOption struct {
	Label   string `json:"label" yaml:"label"`
	Text    string `json:"text" yaml:"text"`
	Correct bool   `json:"correct" yaml:"correct"`
}

type MCQQuestion struct {
	ID              int             `json:"id" yaml:"id"`
	Text            string          `json:"text" yaml:"text"`
	Options         []MCQOption     `json:"options" yaml:"options"`
	IsMultiSelect   bool            `json:"isMultiSelect" yaml:"isMultiSelect"`
	MultiSelectMode MultiSelectMode `json:"multiSelectMode" yaml:"multiSelectMode"`
}

// CorrectLabels returns the labels of the correct options in option order.
func (q MCQQuestion) CorrectLabels() []string {
	var out []string
	for _, o := range q.Options {
		if o.Correct {
			out = append(out, o.Label)
		}
	}
	return out
}

// Option returns the option with the given label.
func (q MCQQuestion) Option(label string) (MCQOption, bool) {
	for _, o := range q.Options {
		if o.Label == label {
			return o, true
		}
	}
	return MCQOption{}, false
}

type MultipleChoice struct {
	Questions []MCQQuestion `json:"questions" yaml:"questions"`
}

type TextInputQuestion struct {
	ID            int             `json:"id" yaml:"id"`
	Text          string          `json:"text" yaml:"text"`
	CorrectAnswer string          `json:"correctAnswer" yaml:"correctAnswer"`
	Validation    validation.Spec `json:"validation" yaml:"validation"`
}

type TextInput struct {
	Questions []TextInputQuestion `json:"questions" yaml:"questions"`
}

type MatchingItem struct {
	Index  int    `json:"index" yaml:"index"`
	Text   string `json:"text" yaml:"text"`
	Answer string `json:"answer" yaml:"answer"`
}

type Matching struct {
	Items   []MatchingItem `json:"items" yaml:"items"`
	Choices []string       `json:"choices" yaml:"choices"`
}

// SortItem is an item of a sort-into-boxes or swipe activity. Correct is
// first/second for boxes and left/right for swipes.
type SortItem struct {
	Text    string `json:"text" yaml:"text"`
	Correct string `json:"correct" yaml:"correct"`
}

const (
	SideFirst  = "first"
	SideSecond = "second"
	SideLeft   = "left"
	SideRight  = "right"
)

// Labels maps a box or side key to its display label.
type Labels map[string]string
