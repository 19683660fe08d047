package activity

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/SAP-F-2025/activity-service/internal/models"
	"github.com/SAP-F-2025/activity-service/internal/prng"
	"github.com/SAP-F-2025/activity-service/internal/sections"
)

var (
	blankRe     = regexp.MustCompile(`\[\[blank:([^\]]*)\]\]`)
	quoteLineRe = regexp.MustCompile(`^\s*>\s?`)
	spacesRe    = regexp.MustCompile(`[ \t]{2,}`)
)

// BlankPlaceholder is the markup that replaces the blank with the given index
// in rendered fill-in-the-blanks content.
func BlankPlaceholder(index int) string {
	return fmt.Sprintf(`<span class="blank" data-index="%d"></span>`, index)
}

// splitQuoted separates block-quote lines, the content, from the plain
// lines around them, which form the prompt. Quote markers are stripped from
// the content, and blank lines between quote lines are kept as paragraph
// breaks. Without any quote line the whole text is content.
func splitQuoted(raw string) (prompt string, content []string) {
	lines := strings.Split(raw, "\n")
	first, last := -1, -1
	for i, line := range lines {
		if quoteLineRe.MatchString(line) {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	if first < 0 {
		if strings.TrimSpace(raw) == "" {
			return "", nil
		}
		return "", lines
	}

	var plain []string
	for i, line := range lines {
		switch {
		case quoteLineRe.MatchString(line):
			content = append(content, quoteLineRe.ReplaceAllString(line, ""))
		case strings.TrimSpace(line) == "":
			if i > first && i < last {
				content = append(content, "")
			} else {
				plain = append(plain, "")
			}
		default:
			plain = append(plain, line)
		}
	}
	return strings.TrimSpace(strings.Join(plain, "\n")), content
}

func (c *Compiler) buildFillInBlanks(src *source) (*models.Activity, error) {
	prompt, content := splitQuoted(src.doc.Get(sections.NameMarkdownWithBlanks).Raw)

	blanks := []models.Blank{}
	body := blankRe.ReplaceAllStringFunc(strings.Join(content, "\n"), func(token string) string {
		answer := strings.TrimSpace(blankRe.FindStringSubmatch(token)[1])
		idx := len(blanks)
		blanks = append(blanks, models.Blank{Index: idx, Answer: answer})
		return BlankPlaceholder(idx)
	})

	required := make([]string, len(blanks))
	for i, b := range blanks {
		required[i] = b.Answer
	}

	question := c.prompt(prompt)
	if question == nil {
		question = c.contentPrompt(src)
	}

	return &models.Activity{
		Question: question,
		FIB: &models.FillInBlanks{
			Content: c.render(body),
			Blanks:  blanks,
			Choices: choicePool(src, required),
		},
	}, nil
}

func (c *Compiler) buildMatching(src *source) (*models.Activity, error) {
	prompt, content := splitQuoted(src.doc.Get(sections.NameMarkdownWithBlanks).Raw)

	items := []models.MatchingItem{}
	for _, line := range content {
		m := blankRe.FindStringSubmatchIndex(line)
		if m == nil {
			continue
		}
		text := line[:m[0]] + line[m[1]:]
		text = strings.TrimSpace(spacesRe.ReplaceAllString(text, " "))
		items = append(items, models.MatchingItem{
			Index:  len(items),
			Text:   text,
			Answer: strings.TrimSpace(line[m[2]:m[3]]),
		})
	}

	required := make([]string, len(items))
	for i, it := range items {
		required[i] = it.Answer
	}

	question := c.prompt(prompt)
	if question == nil {
		question = c.contentPrompt(src)
	}

	return &models.Activity{
		Question: question,
		Matching: &models.Matching{
			Items:   items,
			Choices: choicePool(src, required),
		},
	}, nil
}

// choicePool starts from the suggested answers, appends the copies of
// required answers the suggestions lack, and shuffles the result with the
// source length seed.
func choicePool(src *source, required []string) []string {
	pool := []string{}
	for _, s := range src.doc.Get(sections.NameSuggestedAnswers).Items() {
		if s = strings.TrimSpace(s); s != "" {
			pool = append(pool, s)
		}
	}
	pool = fillPool(pool, required)
	prng.Shuffle(prng.New(prng.LengthSeed(src.markdown)), pool)
	return pool
}

// fillPool appends, in first-need order, every required answer that pool
// holds fewer copies of than required asks for.
func fillPool(pool, required []string) []string {
	have := make(map[string]int, len(pool))
	for _, p := range pool {
		have[p]++
	}
	need := make(map[string]int, len(required))
	var order []string
	for _, r := range required {
		if need[r] == 0 {
			order = append(order, r)
		}
		need[r]++
	}
	for _, r := range order {
		for i := have[r]; i < need[r]; i++ {
			pool = append(pool, r)
		}
	}
	return pool
}
