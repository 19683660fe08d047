package activity

import (
	"regexp"
	"strings"

	"github.com/SAP-F-2025/activity-service/internal/models"
	"github.com/SAP-F-2025/activity-service/internal/prng"
	"github.com/SAP-F-2025/activity-service/internal/sections"
	"github.com/SAP-F-2025/activity-service/internal/validation"
)

var (
	optionLineRe   = regexp.MustCompile(`^\s*(?:[-*]\s+)?([A-Za-z])[.)]\s+(.*\S)\s*$`)
	answerLetterRe = regexp.MustCompile(`^([A-Za-z])(?:[\s.):,-]|$)`)
	correctMarkRe  = regexp.MustCompile(`(?i)\bcorrect\b`)
	modeItemRe     = regexp.MustCompile(`(?i)^mode\s*:\s*(any|all)\s*$`)
	listMarkerRe   = regexp.MustCompile(`^\s*(?:[-*+]|\d+[.)])\s+`)
)

// questionBlock is a Practice Question section together with the answer
// section that follows it.
type questionBlock struct {
	question sections.Section
	answers  *sections.Section
}

// questionBlocks pairs every Practice Question with the next Suggested
// Answers or Correct Answers section before the following question.
func questionBlocks(doc *sections.Document) []questionBlock {
	var blocks []questionBlock
	for _, s := range doc.Sections {
		s := s // per-iteration copy; &s is retained below (go 1.21 loop semantics)
		switch s.Name {
		case sections.NamePracticeQuestion:
			blocks = append(blocks, questionBlock{question: s})
		case sections.NameSuggestedAnswers, sections.NameCorrectAnswers:
			if n := len(blocks); n > 0 && blocks[n-1].answers == nil {
				blocks[n-1].answers = &s
			}
		}
	}
	return blocks
}

func (c *Compiler) buildMultipleChoice(src *source) (*models.Activity, error) {
	questions := []models.MCQQuestion{}
	for _, block := range questionBlocks(src.doc) {
		q, ok := parseMCQ(block)
		if !ok {
			continue
		}
		q.ID = len(questions)
		questions = append(questions, q)
	}
	if len(questions) == 0 {
		return nil, &ParseError{Type: models.ActivityMultipleChoice, Reason: "no questions found"}
	}
	return &models.Activity{
		Question: c.contentPrompt(src),
		MCQ:      &models.MultipleChoice{Questions: questions},
	}, nil
}

// parseMCQ reads option lines ("A. text") out of the question body and marks
// the options named by the answer section as correct.
func parseMCQ(block questionBlock) (models.MCQQuestion, bool) {
	q := models.MCQQuestion{MultiSelectMode: models.MultiSelectAll}

	var body []string
	seen := map[string]bool{}
	for _, line := range strings.Split(block.question.Raw, "\n") {
		m := optionLineRe.FindStringSubmatch(line)
		if m == nil {
			body = append(body, line)
			continue
		}
		label := strings.ToUpper(m[1])
		if seen[label] {
			continue
		}
		seen[label] = true
		q.Options = append(q.Options, models.MCQOption{Label: label, Text: m[2]})
	}
	q.Text = strings.TrimSpace(strings.Join(body, "\n"))
	if len(q.Options) == 0 {
		return q, false
	}

	if block.answers != nil {
		correct, mode := parseMCQAnswers(*block.answers)
		if mode != "" {
			q.MultiSelectMode = mode
		}
		count := 0
		for i := range q.Options {
			if correct[q.Options[i].Label] {
				q.Options[i].Correct = true
				count++
			}
		}
		q.IsMultiSelect = count > 1
	}

	parts := []string{q.Text}
	for _, o := range q.Options {
		parts = append(parts, o.Text, o.Label)
	}
	prng.Shuffle(prng.New(prng.ContentSeed(parts...)), q.Options)
	return q, true
}

// parseMCQAnswers returns the set of correct labels. In a Suggested Answers
// section, items annotated "correct" win over bare letters when any item is
// annotated; a Correct Answers section marks every listed letter.
func parseMCQAnswers(s sections.Section) (map[string]bool, models.MultiSelectMode) {
	var mode models.MultiSelectMode
	listed := map[string]bool{}
	annotated := map[string]bool{}

	for _, item := range answerItems(s) {
		if m := modeItemRe.FindStringSubmatch(item); m != nil {
			mode = models.MultiSelectMode(strings.ToLower(m[1]))
			continue
		}
		m := answerLetterRe.FindStringSubmatch(item)
		if m == nil {
			continue
		}
		label := strings.ToUpper(m[1])
		listed[label] = true
		if correctMarkRe.MatchString(item[len(m[1]):]) {
			annotated[label] = true
		}
	}

	if s.Name == sections.NameSuggestedAnswers && len(annotated) > 0 {
		return annotated, mode
	}
	return listed, mode
}

// answerItems returns list items, or the non-empty lines when the section
// holds no list.
func answerItems(s sections.Section) []string {
	if items := s.Items(); len(items) > 0 {
		return items
	}
	var out []string
	for _, line := range strings.Split(s.Raw, "\n") {
		line = strings.TrimSpace(listMarkerRe.ReplaceAllString(line, ""))
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

func (c *Compiler) buildTextInput(src *source) (*models.Activity, error) {
	questions := []models.TextInputQuestion{}
	for _, block := range questionBlocks(src.doc) {
		text := strings.TrimSpace(block.question.Raw)
		var line string
		if block.answers != nil {
			if items := answerItems(*block.answers); len(items) > 0 {
				line = items[0]
			}
		}
		if text == "" && line == "" {
			continue
		}
		spec := validation.ParseAnswerSpec(line)
		questions = append(questions, models.TextInputQuestion{
			ID:            len(questions),
			Text:          text,
			CorrectAnswer: spec.Answer,
			Validation:    spec.Spec,
		})
	}
	if len(questions) == 0 {
		return nil, &ParseError{Type: models.ActivityTextInput, Reason: "no questions found"}
	}
	return &models.Activity{
		Question:  c.contentPrompt(src),
		TextInput: &models.TextInput{Questions: questions},
	}, nil
}
