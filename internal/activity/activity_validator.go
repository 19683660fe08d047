package activity

import (
	"fmt"

	"github.com/SAP-F-2025/activity-service/internal/models"
)

// ActivityValidator checks the structural invariants of a compiled document.
type ActivityValidator struct{}

// NewActivityValidator creates a new activity validator
func NewActivityValidator() *ActivityValidator {
	return &ActivityValidator{}
}

// Validate checks that exactly one payload is set and that it is consistent.
func (v *ActivityValidator) Validate(act *models.Activity) error {
	if act == nil {
		return fmt.Errorf("activity cannot be nil")
	}
	if n := act.PayloadCount(); n != 1 {
		return fmt.Errorf("activity must carry exactly one payload, got %d", n)
	}

	switch {
	case act.FIB != nil:
		return v.validateFillInBlanks(act.FIB)
	case act.MCQ != nil:
		return v.validateMultipleChoice(act.MCQ)
	case act.Matching != nil:
		return v.validateMatching(act.Matching)
	case act.TextInput != nil:
		return v.validateTextInput(act.TextInput)
	default:
		return v.validateSortItems(act.Items)
	}
}

func (v *ActivityValidator) validateFillInBlanks(fib *models.FillInBlanks) error {
	answers := make([]string, len(fib.Blanks))
	for i, b := range fib.Blanks {
		if b.Index != i {
			return fmt.Errorf("blank %d has index %d, indices must be contiguous from 0", i, b.Index)
		}
		answers[i] = b.Answer
	}
	return validatePool(fib.Choices, answers)
}

func (v *ActivityValidator) validateMatching(m *models.Matching) error {
	answers := make([]string, len(m.Items))
	for i, it := range m.Items {
		if it.Index != i {
			return fmt.Errorf("item %d has index %d, indices must be contiguous from 0", i, it.Index)
		}
		answers[i] = it.Answer
	}
	return validatePool(m.Choices, answers)
}

func (v *ActivityValidator) validateMultipleChoice(mcq *models.MultipleChoice) error {
	if len(mcq.Questions) == 0 {
		return fmt.Errorf("must have at least 1 question")
	}
	for i, q := range mcq.Questions {
		if q.ID != i {
			return fmt.Errorf("question %d has id %d", i, q.ID)
		}
		labels := make(map[string]bool, len(q.Options))
		correct := 0
		for _, o := range q.Options {
			if labels[o.Label] {
				return fmt.Errorf("question %d: duplicate option label %q", i, o.Label)
			}
			labels[o.Label] = true
			if o.Correct {
				correct++
			}
		}
		if q.IsMultiSelect != (correct > 1) {
			return fmt.Errorf("question %d: multi-select flag does not match %d correct options", i, correct)
		}
		if q.MultiSelectMode != models.MultiSelectAll && q.MultiSelectMode != models.MultiSelectAny {
			return fmt.Errorf("question %d: invalid multi-select mode %q", i, q.MultiSelectMode)
		}
	}
	return nil
}

func (v *ActivityValidator) validateTextInput(ti *models.TextInput) error {
	if len(ti.Questions) == 0 {
		return fmt.Errorf("must have at least 1 question")
	}
	for i, q := range ti.Questions {
		if q.ID != i {
			return fmt.Errorf("question %d has id %d", i, q.ID)
		}
	}
	return nil
}

func (v *ActivityValidator) validateSortItems(items []models.SortItem) error {
	for i, it := range items {
		switch it.Correct {
		case models.SideFirst, models.SideSecond, models.SideLeft, models.SideRight:
		default:
			return fmt.Errorf("item %d: invalid side %q", i, it.Correct)
		}
	}
	return nil
}

// validatePool checks that pool holds at least as many copies of every
// answer as answers requires.
func validatePool(pool, answers []string) error {
	have := make(map[string]int, len(pool))
	for _, p := range pool {
		have[p]++
	}
	need := make(map[string]int, len(answers))
	for _, a := range answers {
		need[a]++
	}
	for a, n := range need {
		if have[a] < n {
			return fmt.Errorf("choice pool holds %d of %q, %d required", have[a], a, n)
		}
	}
	return nil
}
