// Package results converts graded results to and from the activity markdown
// dialect. An encoded results file is itself a valid activity source: the
// defining sections of the activity are echoed after the responses.
package results

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/SAP-F-2025/activity-service/internal/activity"
	"github.com/SAP-F-2025/activity-service/internal/grading"
	"github.com/SAP-F-2025/activity-service/internal/models"
	"github.com/SAP-F-2025/activity-service/internal/sections"
)

const (
	MarkCorrect   = "✓"
	MarkIncorrect = "✗"
	MarkPending   = "pending"
)

// Decoded is the content recovered from a results document.
type Decoded struct {
	Type    models.ActivityType
	Answers grading.Answers
	Results []models.GradedResult
}

var (
	entryRe       = regexp.MustCompile(`^(\d+)\.\s*(.*)$`)
	selectedRe    = regexp.MustCompile(`^Selected Answer:\s*(.*)$`)
	correctRe     = regexp.MustCompile(`^Correct Answer:\s*(.*)$`)
	resultRe      = regexp.MustCompile(`^Result:\s*(.*)$`)
	explanationRe = regexp.MustCompile(`^Explanation:\s*(.*)$`)
	summaryRe     = regexp.MustCompile(`^(\d+)/(\d+) correct`)
	whitespaceRe  = regexp.MustCompile(`\s+`)
)

// echoSkip lists sections that describe a run rather than the activity.
var echoSkip = map[sections.Name]bool{
	sections.NameType:      true,
	sections.NameSummary:   true,
	sections.NameResponses: true,
}

// Encode renders results as a results document for act.
func Encode(act *models.Activity, results []models.GradedResult) string {
	var b strings.Builder

	writeSection(&b, sections.NameType, act.Type.DisplayName())

	correct, total := grading.Summary(results)
	writeSection(&b, sections.NameSummary, fmt.Sprintf("%d/%d correct", correct, total))

	entries := make([]string, 0, len(results))
	for i, r := range results {
		entries = append(entries, encodeEntry(i, r))
	}
	writeSection(&b, sections.NameResponses, strings.Join(entries, "\n\n"))

	if act.Source != "" {
		for _, s := range sections.Tokenize(act.Source).Sections {
			if !echoSkip[s.Name] {
				writeSection(&b, s.Name, s.Raw)
			}
		}
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

func writeSection(b *strings.Builder, name sections.Name, body string) {
	b.WriteString(name.Marker())
	b.WriteString("\n\n")
	if body = strings.TrimSpace(body); body != "" {
		b.WriteString(body)
		b.WriteString("\n\n")
	}
}

func encodeEntry(i int, r models.GradedResult) string {
	selected := oneLine(r.Selected)
	if selected == "" {
		selected = grading.NoAnswer
	}
	lines := []string{
		fmt.Sprintf("%d. %s", i+1, oneLine(r.Text)),
		"   Selected Answer: " + selected,
		"   Correct Answer: " + oneLine(r.Correct),
		"   Result: " + mark(r.IsCorrect),
	}
	if e := oneLine(r.Explanation); e != "" {
		lines = append(lines, "   Explanation: "+e)
	}
	return strings.Join(lines, "\n")
}

func mark(isCorrect *bool) string {
	switch {
	case isCorrect == nil:
		return MarkPending
	case *isCorrect:
		return MarkCorrect
	default:
		return MarkIncorrect
	}
}

func oneLine(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// Decode reads the type and the numbered responses of a results document.
// Multiple choice selections come back as label lists; a "No answer
// selected" value is treated as absent.
func Decode(markdown string) (*Decoded, error) {
	doc := sections.Tokenize(markdown)
	if _, ok := doc.Lookup(sections.NameType); !ok {
		return nil, fmt.Errorf("results document has no %s section", sections.NameType.Marker())
	}
	out := &Decoded{Type: activity.DetectType(doc), Answers: grading.Answers{}}

	var current *models.GradedResult
	index := -1
	flush := func() {
		if current != nil {
			out.Results = append(out.Results, *current)
		}
	}

	for _, line := range strings.Split(doc.Get(sections.NameResponses).Raw, "\n") {
		line = strings.TrimSpace(line)
		if m := entryRe.FindStringSubmatch(line); m != nil {
			n, err := strconv.Atoi(m[1])
			if err != nil || n < 1 {
				return nil, fmt.Errorf("invalid response number %q", m[1])
			}
			flush()
			index = n - 1
			current = &models.GradedResult{Text: m[2]}
			continue
		}
		if current == nil {
			continue
		}
		switch {
		case selectedRe.MatchString(line):
			current.Selected = selectedRe.FindStringSubmatch(line)[1]
			if a, ok := decodeAnswer(out.Type, current.Selected); ok {
				out.Answers[index] = a
			}
		case correctRe.MatchString(line):
			current.Correct = correctRe.FindStringSubmatch(line)[1]
		case resultRe.MatchString(line):
			current.IsCorrect = parseMark(resultRe.FindStringSubmatch(line)[1])
		case explanationRe.MatchString(line):
			current.Explanation = explanationRe.FindStringSubmatch(line)[1]
		}
	}
	flush()
	return out, nil
}

func decodeAnswer(typ models.ActivityType, value string) (models.Answer, bool) {
	value = strings.TrimSpace(value)
	if value == "" || value == grading.NoAnswer {
		return models.Answer{}, false
	}
	if typ != models.ActivityMultipleChoice {
		return models.Single(value), true
	}
	return models.Multi(grading.SplitLabels(value)...), true
}

func parseMark(s string) *bool {
	var v bool
	switch strings.TrimSpace(s) {
	case MarkCorrect:
		v = true
	case MarkIncorrect:
		v = false
	default:
		return nil
	}
	return &v
}

// ParseSummary reads the "n/total correct" line of a results document.
func ParseSummary(markdown string) (correct, total int, ok bool) {
	doc := sections.Tokenize(markdown)
	m := summaryRe.FindStringSubmatch(doc.Get(sections.NameSummary).Raw)
	if m == nil {
		return 0, 0, false
	}
	correct, _ = strconv.Atoi(m[1])
	total, _ = strconv.Atoi(m[2])
	return correct, total, true
}
