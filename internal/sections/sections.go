// Package sections splits an activity markdown document into named sections.
//
// A section starts at a line that reads exactly __Name__ and runs until the
// next such line or the end of the document. Every section keeps the block
// tokens of its body and the raw body text, so that builders can work on
// either without re-lexing.
package sections

import (
	"regexp"
	"strings"
)

// Name identifies a section. Names compare case-sensitively.
type Name string

const (
	NameType               Name = "Type"
	NamePracticeQuestion   Name = "Practice Question"
	NameSuggestedAnswers   Name = "Suggested Answers"
	NameCorrectAnswers     Name = "Correct Answers"
	NameMarkdownWithBlanks Name = "Markdown With Blanks"
	NameLabels             Name = "Labels"
	NameFirstBoxItems      Name = "First Box Items"
	NameSecondBoxItems     Name = "Second Box Items"
	NameLeftLabelItems     Name = "Left Label Items"
	NameRightLabelItems    Name = "Right Label Items"
	NameContent            Name = "Content"
	NameResponses          Name = "Responses"
	NameSummary            Name = "Summary"
)

var knownNames = map[Name]bool{
	NameType: true, NamePracticeQuestion: true, NameSuggestedAnswers: true,
	NameCorrectAnswers: true, NameMarkdownWithBlanks: true, NameLabels: true,
	NameFirstBoxItems: true, NameSecondBoxItems: true, NameLeftLabelItems: true,
	NameRightLabelItems: true, NameContent: true, NameResponses: true, NameSummary: true,
}

// Known reports whether n is one of the names the activity dialect defines.
func (n Name) Known() bool { return knownNames[n] }

// Marker renders the marker line that opens a section called n.
func (n Name) Marker() string { return "__" + string(n) + "__" }

// Section is one named region of the document.
type Section struct {
	Name   Name
	Tokens []Token
	// Raw is the body between the marker and the next marker, trimmed.
	Raw string
}

// Text returns the raw text of the section's tokens joined by blank lines.
func (s Section) Text() string { return Text(s.Tokens) }

// Items returns the literal list items of the section.
func (s Section) Items() []string { return ListItems(s.Tokens) }

// Document is the tokenized form of an activity source, sections in source
// order. A name may appear more than once.
type Document struct {
	Preamble []Token
	Sections []Section
}

// Lookup returns the first section called name.
func (d *Document) Lookup(name Name) (Section, bool) {
	for _, s := range d.Sections {
		if s.Name == name {
			return s, true
		}
	}
	return Section{}, false
}

// Get is Lookup without the presence flag; a missing section is empty.
func (d *Document) Get(name Name) Section {
	s, _ := d.Lookup(name)
	return s
}

// All returns every section called name, in order.
func (d *Document) All(name Name) []Section {
	var out []Section
	for _, s := range d.Sections {
		if s.Name == name {
			out = append(out, s)
		}
	}
	return out
}

var markerRe = regexp.MustCompile(`^__(.+)__$`)

// ParseMarker reports whether line is a section marker and returns its name.
func ParseMarker(line string) (Name, bool) {
	m := markerRe.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return "", false
	}
	name := strings.TrimSpace(m[1])
	if name == "" {
		return "", false
	}
	return Name(name), true
}

// Tokenize lexes markdown and walks the blocks through the section state
// machine.
func Tokenize(markdown string) *Document {
	src := []byte(isolateMarkers(markdown))
	blocks := newLexer().lex(src)

	w := walker{doc: &Document{}, src: src}
	for _, b := range blocks {
		w.step(b)
	}
	w.flush(len(src))
	return w.doc
}

type state int

const (
	statePreamble state = iota
	stateSection
)

// walker is the explicit state machine behind Tokenize: it starts in the
// preamble and every marker paragraph closes the current section and opens
// a new one.
type walker struct {
	doc *Document
	src []byte

	state     state
	current   Name
	bodyStart int
	buf       []Token
}

func (w *walker) step(b block) {
	if b.Kind == KindParagraph {
		if name, ok := ParseMarker(b.Text); ok {
			w.flush(b.start)
			w.state = stateSection
			w.current = name
			w.bodyStart = b.stop
			return
		}
	}
	w.buf = append(w.buf, b.Token)
}

func (w *walker) flush(end int) {
	switch w.state {
	case statePreamble:
		w.doc.Preamble = append(w.doc.Preamble, w.buf...)
	case stateSection:
		if end < w.bodyStart {
			end = w.bodyStart
		}
		w.doc.Sections = append(w.doc.Sections, Section{
			Name:   w.current,
			Tokens: w.buf,
			Raw:    strings.TrimSpace(string(w.src[w.bodyStart:end])),
		})
	}
	w.buf = nil
}

var fenceRe = regexp.MustCompile("^ {0,3}(`{3,}|~{3,})")

// isolateMarkers surrounds marker lines with blank lines so that a marker
// written directly above or below other text still lexes as its own
// paragraph. Lines inside fenced code are left untouched.
func isolateMarkers(markdown string) string {
	lines := strings.Split(strings.ReplaceAll(markdown, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines)+8)
	fence := ""
	for i, line := range lines {
		if m := fenceRe.FindStringSubmatch(line); m != nil {
			switch {
			case fence == "":
				fence = m[1]
			case m[1][0] == fence[0] && len(m[1]) >= len(fence) && strings.TrimSpace(line[len(m[0]):]) == "":
				fence = ""
			}
			out = append(out, line)
			continue
		}
		if fence != "" {
			out = append(out, line)
			continue
		}
		if _, ok := ParseMarker(line); !ok {
			out = append(out, line)
			continue
		}
		if len(out) > 0 && strings.TrimSpace(out[len(out)-1]) != "" {
			out = append(out, "")
		}
		out = append(out, strings.TrimSpace(line))
		if i+1 < len(lines) && strings.TrimSpace(lines[i+1]) != "" {
			out = append(out, "")
		}
	}
	return strings.Join(out, "\n")
}

var looseItemRe = regexp.MustCompile(`^\s*[-*]\s+(.*\S)\s*$`)

// ListItems extracts literal list items from tokens. Real list tokens
// contribute their items; paragraph lines starting with "- " or "* " count as
// items too.
func ListItems(tokens []Token) []string {
	var items []string
	for _, t := range tokens {
		switch t.Kind {
		case KindList:
			items = append(items, t.Items...)
		case KindParagraph:
			for _, line := range strings.Split(t.Text, "\n") {
				if m := looseItemRe.FindStringSubmatch(line); m != nil {
					items = append(items, m[1])
				}
			}
		}
	}
	return items
}

// Text joins the raw text of tokens with blank lines.
func Text(tokens []Token) string {
	parts := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if s := strings.TrimSpace(t.Text); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n\n")
}
