package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/activity-service/internal/models"
	"github.com/SAP-F-2025/activity-service/internal/validation"
)

func mcqQuestion(mode models.MultiSelectMode, correct ...string) models.MCQQuestion {
	isCorrect := map[string]bool{}
	for _, c := range correct {
		isCorrect[c] = true
	}
	q := models.MCQQuestion{Text: "Pick", MultiSelectMode: mode, IsMultiSelect: len(correct) > 1}
	for _, l := range []string{"A", "B", "C", "D"} {
		q.Options = append(q.Options, models.MCQOption{Label: l, Text: "opt " + l, Correct: isCorrect[l]})
	}
	return q
}

func TestCheckMCQ_AllMode(t *testing.T) {
	q := mcqQuestion(models.MultiSelectAll, "A", "C")

	assert.True(t, CheckMCQ(q, []string{"C", "A"}))
	assert.True(t, CheckMCQ(q, []string{"a", " c "}))
	assert.False(t, CheckMCQ(q, []string{"A"}))
	assert.False(t, CheckMCQ(q, []string{"A", "B", "C"}))
	assert.False(t, CheckMCQ(q, nil))
}

func TestCheckMCQ_AnyMode(t *testing.T) {
	q := mcqQuestion(models.MultiSelectAny, "A", "C", "D")

	assert.True(t, CheckMCQ(q, []string{"A"}), "a correct subset is accepted")
	assert.True(t, CheckMCQ(q, []string{"C", "D"}))
	assert.True(t, CheckMCQ(q, []string{"A", "C", "D"}))
	assert.False(t, CheckMCQ(q, []string{"A", "B"}), "an incorrect selection mixed in is rejected")
	assert.False(t, CheckMCQ(q, []string{}))
}

func TestLabelSet(t *testing.T) {
	assert.Equal(t, "A,B,C", LabelSet([]string{"c", "A", "b", "a", ""}))
	assert.Equal(t, "", LabelSet(nil))
}

func textInputActivity() *models.Activity {
	return &models.Activity{
		Type: models.ActivityTextInput,
		TextInput: &models.TextInput{Questions: []models.TextInputQuestion{
			{ID: 0, Text: "Capital?", CorrectAnswer: "Rome", Validation: validation.Spec{Kind: validation.KindString}},
			{ID: 1, Text: "Weight?", CorrectAnswer: "5 kg", Validation: validation.Spec{
				Kind: validation.KindNumericWithUnits, Options: validation.Options{"units": []string{"kg"}},
			}},
			{ID: 2, Text: "Why?", CorrectAnswer: "", Validation: validation.Spec{Kind: validation.KindValidateLater}},
		}},
	}
}

func TestEvaluate_TextInput(t *testing.T) {
	act := textInputActivity()
	results := Evaluate(act, Answers{0: models.Single("rome"), 2: models.Single("because")})

	require.Len(t, results, 3)
	assert.Equal(t, "Capital?", results[0].Text)
	assert.Equal(t, "rome", results[0].Selected)
	assert.True(t, *results[0].IsCorrect)

	assert.Equal(t, NoAnswer, results[1].Selected)
	assert.False(t, *results[1].IsCorrect)

	assert.Nil(t, results[2].IsCorrect)

	correct, total := Summary(results)
	assert.Equal(t, 1, correct)
	assert.Equal(t, 2, total, "deferred answers are left out of the total")
}

func TestEvaluate_FillInBlanks(t *testing.T) {
	act := &models.Activity{FIB: &models.FillInBlanks{
		Blanks:  []models.Blank{{Index: 0, Answer: "blue"}, {Index: 1, Answer: "green"}},
		Choices: []string{"green", "red", "blue"},
	}}
	results := Evaluate(act, Answers{0: models.Single("blue"), 1: models.Single("red")})

	require.Len(t, results, 2)
	assert.Equal(t, "Blank 1", results[0].Text)
	assert.True(t, *results[0].IsCorrect)
	assert.False(t, *results[1].IsCorrect)
}

func TestCheck_OutOfRange(t *testing.T) {
	act := textInputActivity()
	_, ok := Check(act, 3, models.Single("x"))
	assert.False(t, ok)
	_, ok = Check(act, -1, models.Single("x"))
	assert.False(t, ok)

	v, ok := Check(act, 1, models.Single("5KG"))
	assert.True(t, ok)
	assert.Equal(t, validation.Correct, v)
}

func TestRegrade(t *testing.T) {
	act := &models.Activity{MCQ: &models.MultipleChoice{Questions: []models.MCQQuestion{
		mcqQuestion(models.MultiSelectAll, "B"),
		mcqQuestion(models.MultiSelectAll, "A", "C"),
	}}}
	yes := true
	submitted := []models.GradedResult{
		{Text: "tampered", Selected: "B", Correct: "A", IsCorrect: &yes},
		{Selected: "C,A"},
		{Selected: "A"},
	}

	results := Regrade(act, submitted)
	require.Len(t, results, 2, "results beyond the activity are dropped")
	assert.Equal(t, "Pick", results[0].Text)
	assert.Equal(t, "B", results[0].Correct)
	assert.True(t, *results[0].IsCorrect)
	assert.Equal(t, "A,C", results[1].Correct)
	assert.True(t, *results[1].IsCorrect)
}

func TestRegrade_Sorting(t *testing.T) {
	act := &models.Activity{
		Items:  []models.SortItem{{Text: "Apple", Correct: models.SideFirst}, {Text: "Carrot", Correct: models.SideSecond}},
		Labels: models.Labels{},
	}
	results := Regrade(act, []models.GradedResult{{Selected: "first"}, {Selected: NoAnswer}})

	assert.True(t, *results[0].IsCorrect)
	assert.False(t, *results[1].IsCorrect)
}

func TestRegrade_TextInputDeferred(t *testing.T) {
	results := Regrade(textInputActivity(), []models.GradedResult{
		{Selected: "Rome"}, {Selected: "5"}, {Selected: NoAnswer},
	})

	assert.True(t, *results[0].IsCorrect)
	assert.True(t, *results[1].IsCorrect)
	assert.Nil(t, results[2].IsCorrect)
}

func TestResume_DropsStaleAnswers(t *testing.T) {
	act := &models.Activity{MCQ: &models.MultipleChoice{Questions: []models.MCQQuestion{
		mcqQuestion(models.MultiSelectAll, "A"),
		mcqQuestion(models.MultiSelectAll, "B"),
	}}}
	kept, dropped := Resume(act, Answers{
		0: models.Multi("A"),
		1: models.Multi("B", "Z"),
		5: models.Multi("A"),
	})

	assert.Equal(t, Answers{0: models.Multi("A")}, kept)
	assert.Equal(t, []int{1, 5}, dropped)
}

func TestSummary_Empty(t *testing.T) {
	correct, total := Summary(nil)
	assert.Zero(t, correct)
	assert.Zero(t, total)
}

func TestCheck_MCQCommaSeparatedSingleAnswer(t *testing.T) {
	act := &models.Activity{
		Type: models.ActivityMultipleChoice,
		MCQ:  &models.MultipleChoice{Questions: []models.MCQQuestion{mcqQuestion(models.MultiSelectAll, "A", "C")}},
	}

	single, ok := Check(act, 0, models.Single("A, C"))
	require.True(t, ok)
	multi, _ := Check(act, 0, models.Multi("A", "C"))
	assert.Equal(t, validation.Correct, single)
	assert.Equal(t, multi, single)

	wrong, _ := Check(act, 0, models.Single("A,B"))
	assert.Equal(t, validation.Incorrect, wrong)
}

func TestSplitLabels(t *testing.T) {
	assert.Equal(t, []string{"A", "C"}, SplitLabels(" A, ,C "))
	assert.Nil(t, SplitLabels(""))
}
