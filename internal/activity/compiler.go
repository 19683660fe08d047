// Package activity compiles activity markdown into typed activity documents.
package activity

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/SAP-F-2025/activity-service/internal/models"
	"github.com/SAP-F-2025/activity-service/internal/sections"
)

// ParseError reports an activity that cannot be rendered at all.
type ParseError struct {
	Type   models.ActivityType
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse %s activity: %s", e.Type, e.Reason)
}

// source is the input threaded through a builder: the original markdown and
// its tokenized sections.
type source struct {
	markdown string
	doc      *sections.Document
}

type builder func(c *Compiler, src *source) (*models.Activity, error)

var builders = map[models.ActivityType]builder{
	models.ActivityFillInBlanks:   (*Compiler).buildFillInBlanks,
	models.ActivityMultipleChoice: (*Compiler).buildMultipleChoice,
	models.ActivityMatching:       (*Compiler).buildMatching,
	models.ActivityTextInput:      (*Compiler).buildTextInput,
	models.ActivitySortIntoBoxes:  (*Compiler).buildSortIntoBoxes,
	models.ActivitySwipeLeftRight: (*Compiler).buildSwipeLeftRight,
}

// Compiler turns activity markdown into models.Activity values. It holds no
// per-document state and is safe for concurrent use.
type Compiler struct {
	md        goldmark.Markdown
	validator *ActivityValidator
}

func NewCompiler() *Compiler {
	return &Compiler{
		md:        goldmark.New(goldmark.WithRendererOptions(html.WithUnsafe())),
		validator: NewActivityValidator(),
	}
}

// DetectType reads the Type section. Unknown or missing types fall back to
// swipe-left-right.
func DetectType(doc *sections.Document) models.ActivityType {
	for _, line := range strings.Split(doc.Get(sections.NameType).Text(), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if t, ok := models.ParseActivityType(line); ok {
			return t
		}
		break
	}
	return models.ActivitySwipeLeftRight
}

// Compile builds a fresh activity document from markdown.
func (c *Compiler) Compile(markdown string) (*models.Activity, error) {
	src := &source{markdown: markdown, doc: sections.Tokenize(markdown)}
	typ := DetectType(src.doc)

	act, err := builders[typ](c, src)
	if err != nil {
		return nil, err
	}
	act.Type = typ
	act.Source = markdown

	if err := c.validator.Validate(act); err != nil {
		return nil, fmt.Errorf("compiled %s activity is inconsistent: %w", typ, err)
	}
	return act, nil
}

// render converts markdown to HTML. Author HTML passes through untouched.
func (c *Compiler) render(markdown string) string {
	var buf bytes.Buffer
	if err := c.md.Convert([]byte(markdown), &buf); err != nil {
		return markdown
	}
	return strings.TrimSpace(buf.String())
}

// prompt renders text as the optional question of a document.
func (c *Compiler) prompt(text string) *string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	rendered := c.render(text)
	return &rendered
}

// contentPrompt uses the Content section as the question.
func (c *Compiler) contentPrompt(src *source) *string {
	return c.prompt(src.doc.Get(sections.NameContent).Raw)
}
