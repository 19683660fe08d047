// Package grading checks learner answers against a compiled activity. Live
// answer checks and results grading both go through here so the two paths
// cannot drift apart.
package grading

import (
	"sort"
	"strconv"
	"strings"

	"github.com/SAP-F-2025/activity-service/internal/models"
	"github.com/SAP-F-2025/activity-service/internal/validation"
)

// NoAnswer is the placeholder shown for a slot the learner left empty.
const NoAnswer = "No answer selected"

// Answers maps a zero-based question, blank or item index to the answer.
type Answers map[int]models.Answer

// SplitLabels reads a comma-separated label list, dropping empty entries.
func SplitLabels(value string) []string {
	var labels []string
	for _, l := range strings.Split(value, ",") {
		if l = strings.TrimSpace(l); l != "" {
			labels = append(labels, l)
		}
	}
	return labels
}

// CheckMCQ grades a set of selected labels. In "all" mode the selection must
// equal the correct set; in "any" mode it must be non-empty and contain only
// correct labels. A selected value may itself be a comma-separated list.
func CheckMCQ(q models.MCQQuestion, selected []string) bool {
	correct := map[string]bool{}
	for _, l := range q.CorrectLabels() {
		correct[l] = true
	}
	chosen := map[string]bool{}
	for _, s := range selected {
		for _, l := range SplitLabels(s) {
			chosen[strings.ToUpper(l)] = true
		}
	}
	if len(chosen) == 0 {
		return false
	}
	for l := range chosen {
		if !correct[l] {
			return false
		}
	}
	if q.MultiSelectMode == models.MultiSelectAny {
		return true
	}
	return len(chosen) == len(correct)
}

// CheckTextInput runs the question's validation strategy.
func CheckTextInput(q models.TextInputQuestion, answer string) validation.Verdict {
	return validation.Check(q.Validation, answer, q.CorrectAnswer)
}

// CheckExact is the rule for blanks, matching and sorting: exact equality
// after trimming.
func CheckExact(selected, correct string) bool {
	return strings.TrimSpace(selected) == strings.TrimSpace(correct)
}

// LabelSet renders labels as a sorted, comma-joined set.
func LabelSet(labels []string) string {
	set := map[string]bool{}
	for _, l := range labels {
		if l = strings.ToUpper(strings.TrimSpace(l)); l != "" {
			set[l] = true
		}
	}
	out := make([]string, 0, len(set))
	for l := range set {
		out = append(out, l)
	}
	sort.Strings(out)
	return strings.Join(out, ",")
}

// Check grades the answer for slot index. ok is false when the index does not
// exist in the activity.
func Check(act *models.Activity, index int, answer models.Answer) (validation.Verdict, bool) {
	if index < 0 || index >= act.SlotCount() {
		return validation.Incorrect, false
	}
	var correct bool
	switch {
	case act.MCQ != nil:
		correct = CheckMCQ(act.MCQ.Questions[index], answer.Values)
	case act.TextInput != nil:
		return CheckTextInput(act.TextInput.Questions[index], answer.Value()), true
	case act.FIB != nil:
		correct = CheckExact(answer.Value(), act.FIB.Blanks[index].Answer)
	case act.Matching != nil:
		correct = CheckExact(answer.Value(), act.Matching.Items[index].Answer)
	default:
		correct = CheckExact(answer.Value(), act.Items[index].Correct)
	}
	if correct {
		return validation.Correct, true
	}
	return validation.Incorrect, true
}

// Evaluate grades answers for every slot of act, in slot order. Missing
// answers are graded incorrect, except deferred text-input questions.
func Evaluate(act *models.Activity, answers Answers) []models.GradedResult {
	n := act.SlotCount()
	results := make([]models.GradedResult, 0, n)
	for i := 0; i < n; i++ {
		text, correct := slot(act, i)
		answer, has := answers[i]
		r := models.GradedResult{Text: text, Correct: correct, Selected: NoAnswer}
		if has && !answer.IsEmpty() {
			r.Selected = display(act, answer)
		}

		var verdict validation.Verdict
		switch {
		case act.TextInput != nil && act.TextInput.Questions[i].Validation.Kind == validation.KindValidateLater:
			verdict = validation.Deferred
		case !has || answer.IsEmpty():
			verdict = validation.Incorrect
		default:
			verdict, _ = Check(act, i, answer)
		}
		r.IsCorrect = verdict.Ptr()
		results = append(results, r)
	}
	return results
}

// Regrade recomputes IsCorrect for submitted results against a freshly
// compiled activity. Multiple choice compares label sets (subsets in "any"
// mode), text input reruns validation by index and everything else compares
// strings exactly. Results past the end of the activity are dropped.
func Regrade(act *models.Activity, results []models.GradedResult) []models.GradedResult {
	n := act.SlotCount()
	if len(results) > n {
		results = results[:n]
	}
	out := make([]models.GradedResult, len(results))
	for i, r := range results {
		text, correct := slot(act, i)
		r.Text = text
		r.Correct = correct

		selected := strings.TrimSpace(r.Selected)
		var verdict validation.Verdict
		switch {
		case act.TextInput != nil:
			verdict = CheckTextInput(act.TextInput.Questions[i], selected)
			if verdict != validation.Deferred && (selected == "" || selected == NoAnswer) {
				verdict = validation.Incorrect
			}
		case selected == "" || selected == NoAnswer:
			verdict = validation.Incorrect
		case act.MCQ != nil:
			verdict = boolVerdict(CheckMCQ(act.MCQ.Questions[i], strings.Split(selected, ",")))
		default:
			verdict = boolVerdict(CheckExact(selected, correct))
		}
		r.IsCorrect = verdict.Ptr()
		out[i] = r
	}
	return out
}

// Resume keeps the persisted answers that still fit act and reports the
// indices it dropped: indices past the end of the activity and multiple
// choice selections naming options that no longer exist.
func Resume(act *models.Activity, answers Answers) (kept Answers, dropped []int) {
	kept = Answers{}
	n := act.SlotCount()
	for i, a := range answers {
		if i < 0 || i >= n {
			dropped = append(dropped, i)
			continue
		}
		if act.MCQ != nil && !knownLabels(act.MCQ.Questions[i], a.Values) {
			dropped = append(dropped, i)
			continue
		}
		kept[i] = a
	}
	sort.Ints(dropped)
	return kept, dropped
}

// Summary counts correct results and the gradable total. Deferred results
// count toward neither.
func Summary(results []models.GradedResult) (correct, total int) {
	for _, r := range results {
		if r.IsCorrect == nil {
			continue
		}
		total++
		if *r.IsCorrect {
			correct++
		}
	}
	return correct, total
}

// slot returns the display text and the authoritative answer of slot i.
func slot(act *models.Activity, i int) (text, correct string) {
	switch {
	case act.MCQ != nil:
		q := act.MCQ.Questions[i]
		return q.Text, LabelSet(q.CorrectLabels())
	case act.TextInput != nil:
		q := act.TextInput.Questions[i]
		return q.Text, q.CorrectAnswer
	case act.FIB != nil:
		b := act.FIB.Blanks[i]
		return "Blank " + strconv.Itoa(b.Index+1), b.Answer
	case act.Matching != nil:
		it := act.Matching.Items[i]
		return it.Text, it.Answer
	default:
		it := act.Items[i]
		return it.Text, it.Correct
	}
}

func display(act *models.Activity, a models.Answer) string {
	if act.MCQ != nil {
		return LabelSet(a.Values)
	}
	return strings.TrimSpace(a.Value())
}

func knownLabels(q models.MCQQuestion, labels []string) bool {
	for _, l := range labels {
		if l = strings.TrimSpace(l); l == "" {
			continue
		}
		if _, ok := q.Option(strings.ToUpper(l)); !ok {
			return false
		}
	}
	return true
}

func boolVerdict(ok bool) validation.Verdict {
	if ok {
		return validation.Correct
	}
	return validation.Incorrect
}
