package sections

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// TokenKind classifies a top-level markdown block.
type TokenKind string

const (
	KindParagraph     TokenKind = "paragraph"
	KindList          TokenKind = "list"
	KindBlockquote    TokenKind = "blockquote"
	KindHeading       TokenKind = "heading"
	KindCodeBlock     TokenKind = "code"
	KindHTMLBlock     TokenKind = "html"
	KindThematicBreak TokenKind = "hr"
	KindOther         TokenKind = "other"
)

// Token is one top-level block of the source document. Text is the raw
// markdown of the block, quote and list markers included. Items is only set
// for list tokens.
type Token struct {
	Kind  TokenKind
	Text  string
	Items []string
}

// lexer turns markdown into top-level block tokens. The zero value is not
// usable; use newLexer.
type lexer struct {
	md goldmark.Markdown
}

func newLexer() *lexer {
	return &lexer{md: goldmark.New()}
}

type block struct {
	Token
	start int
	stop  int
}

func (l *lexer) lex(src []byte) []block {
	root := l.md.Parser().Parse(text.NewReader(src))

	var out []block
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		start, stop, ok := span(n)
		if !ok {
			if n.Kind() == ast.KindThematicBreak {
				out = append(out, block{Token: Token{Kind: KindThematicBreak, Text: "---"}})
			}
			continue
		}
		start, stop = expandToLines(src, start, stop)
		tok := Token{
			Kind: kindOf(n),
			Text: strings.TrimRight(string(src[start:stop]), "\n"),
		}
		if list, isList := n.(*ast.List); isList {
			tok.Items = listItems(list, src)
		}
		if code, isCode := n.(*ast.FencedCodeBlock); isCode {
			tok.Text = strings.TrimRight(string(linesOf(code, src)), "\n")
		}
		out = append(out, block{Token: tok, start: start, stop: stop})
	}
	return out
}

func kindOf(n ast.Node) TokenKind {
	switch n.Kind() {
	case ast.KindParagraph, ast.KindTextBlock:
		return KindParagraph
	case ast.KindList:
		return KindList
	case ast.KindBlockquote:
		return KindBlockquote
	case ast.KindHeading:
		return KindHeading
	case ast.KindFencedCodeBlock, ast.KindCodeBlock:
		return KindCodeBlock
	case ast.KindHTMLBlock:
		return KindHTMLBlock
	case ast.KindThematicBreak:
		return KindThematicBreak
	default:
		return KindOther
	}
}

// span returns the byte range covered by the line segments of n and its
// block descendants.
func span(n ast.Node) (int, int, bool) {
	start, stop := -1, -1
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if c.Type() == ast.TypeInline {
			return ast.WalkSkipChildren, nil
		}
		lines := c.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			if start < 0 || seg.Start < start {
				start = seg.Start
			}
			if seg.Stop > stop {
				stop = seg.Stop
			}
		}
		if h, ok := c.(*ast.HTMLBlock); ok && h.HasClosure() {
			if h.ClosureLine.Stop > stop {
				stop = h.ClosureLine.Stop
			}
		}
		return ast.WalkContinue, nil
	})
	return start, stop, start >= 0
}

func expandToLines(src []byte, start, stop int) (int, int) {
	if i := bytes.LastIndexByte(src[:start], '\n'); i >= 0 {
		start = i + 1
	} else {
		start = 0
	}
	if stop > 0 && src[stop-1] == '\n' {
		return start, stop
	}
	if i := bytes.IndexByte(src[stop:], '\n'); i >= 0 {
		return start, stop + i + 1
	}
	return start, len(src)
}

func linesOf(n ast.Node, src []byte) []byte {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(src))
	}
	return buf.Bytes()
}

func listItems(list *ast.List, src []byte) []string {
	var items []string
	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		var parts []string
		for c := item.FirstChild(); c != nil; c = c.NextSibling() {
			if c.Kind() != ast.KindTextBlock && c.Kind() != ast.KindParagraph {
				continue
			}
			for _, line := range strings.Split(string(linesOf(c, src)), "\n") {
				if line = strings.TrimSpace(line); line != "" {
					parts = append(parts, line)
				}
			}
		}
		if text := strings.Join(parts, " "); text != "" {
			items = append(items, text)
		}
	}
	return items
}
