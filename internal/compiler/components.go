package compiler

import (
	"bytes"
	"fmt"
	"regexp"

	"github.com/yuin/goldmark/ast"
)

var (
	// componentTagRe matches an opening, closing, or self-closing embedded
	// component tag. Components are distinguished from HTML by a capitalized name.
	componentTagRe = regexp.MustCompile(`<(/?)([A-Z][A-Za-z0-9.]*)(?:\s[^<>]*?)?\s*(/?)>`)
	// strayComponentRe finds component-looking tags goldmark could not parse as HTML.
	strayComponentRe = regexp.MustCompile(`</?[A-Z][A-Za-z0-9.]*`)
	// selfClosingRe matches self-closing component tags in rendered HTML.
	selfClosingRe = regexp.MustCompile(`<([A-Z][A-Za-z0-9.]*)((?:\s[^<>]*?)?)\s*/>`)
)

type openTag struct {
	name string
	line int
}

// componentChecker verifies that embedded components in a parsed body are
// well formed: every tag parses, and opening and closing tags balance.
type componentChecker struct {
	source     string
	body       []byte
	lineOffset int
	stack      []openTag
}

func checkComponents(source string, body []byte, lineOffset int, root ast.Node) error {
	c := &componentChecker{source: source, body: body, lineOffset: lineOffset}
	var failure error
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		var err error
		switch n := n.(type) {
		case *ast.CodeSpan, *ast.CodeBlock, *ast.FencedCodeBlock:
			return ast.WalkSkipChildren, nil
		case *ast.HTMLBlock:
			lines := n.Lines()
			for i := 0; i < lines.Len() && err == nil; i++ {
				seg := lines.At(i)
				err = c.scan(seg.Value(body), seg.Start)
			}
			if err == nil && n.HasClosure() {
				err = c.scan(n.ClosureLine.Value(body), n.ClosureLine.Start)
			}
		case *ast.RawHTML:
			for i := 0; i < n.Segments.Len() && err == nil; i++ {
				seg := n.Segments.At(i)
				err = c.scan(seg.Value(body), seg.Start)
			}
		case *ast.Text:
			err = c.stray(n)
		}
		if err != nil {
			failure = err
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	if failure != nil {
		return failure
	}
	if len(c.stack) > 0 {
		top := c.stack[len(c.stack)-1]
		return c.fail(top.line, fmt.Sprintf("unterminated component <%s>", top.name))
	}
	return nil
}

// scan processes every component tag in raw HTML starting at body offset start.
func (c *componentChecker) scan(raw []byte, start int) error {
	for _, m := range componentTagRe.FindAllSubmatchIndex(raw, -1) {
		closing := m[3] > m[2]
		name := string(raw[m[4]:m[5]])
		selfClosing := m[7] > m[6]
		line := c.line(start + m[0])

		switch {
		case selfClosing:
		case !closing:
			c.stack = append(c.stack, openTag{name: name, line: line})
		case len(c.stack) == 0:
			return c.fail(line, fmt.Sprintf("unexpected closing tag </%s>", name))
		default:
			top := c.stack[len(c.stack)-1]
			if top.name != name {
				return c.fail(line, fmt.Sprintf("closing tag </%s> does not match <%s> opened on line %d", name, top.name, top.line))
			}
			c.stack = c.stack[:len(c.stack)-1]
		}
	}
	return nil
}

// stray rejects text that starts a component tag goldmark did not accept as
// raw HTML, e.g. a tag missing its closing bracket.
func (c *componentChecker) stray(n *ast.Text) error {
	seg := n.Segment
	val := seg.Value(c.body)
	loc := strayComponentRe.FindIndex(val)
	if loc == nil {
		return nil
	}
	at := seg.Start + loc[0]
	if at > 0 && c.body[at-1] == '\\' {
		return nil
	}
	return c.fail(c.line(at), fmt.Sprintf("malformed component tag %q", string(val[loc[0]:loc[1]])))
}

func (c *componentChecker) line(offset int) int {
	if offset > len(c.body) {
		offset = len(c.body)
	}
	return c.lineOffset + 1 + bytes.Count(c.body[:offset], []byte("\n"))
}

func (c *componentChecker) fail(line int, reason string) error {
	return &ParseError{Source: c.source, Line: line, Reason: reason}
}

// expandSelfClosing rewrites <Name ... /> to <Name ...></Name> so the HTML
// parser, which ignores the self-closing flag on non-void elements, keeps
// following content outside the component.
func expandSelfClosing(htmlSrc []byte) []byte {
	return selfClosingRe.ReplaceAll(htmlSrc, []byte("<$1$2></$1>"))
}
