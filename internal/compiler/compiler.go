// Package compiler turns a raw document (front-matter + Markdown with
// embedded components) into a compiled post.
package compiler

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"

	"github.com/adyingdeath/blog/internal/checksum"
	"github.com/adyingdeath/blog/internal/codeblock"
	"github.com/adyingdeath/blog/internal/models"
	"github.com/adyingdeath/blog/internal/rendertree"
	"github.com/adyingdeath/blog/internal/toc"
)

// Compiler compiles documents. It is safe for concurrent use.
type Compiler struct {
	md          goldmark.Markdown
	placeholder string
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithSummaryPlaceholder sets the summary used when a document declares none.
func WithSummaryPlaceholder(s string) Option {
	return func(c *Compiler) {
		c.placeholder = s
	}
}

// New creates a Compiler with GFM, footnotes, heading ids and raw HTML
// pass-through for embedded components.
func New(opts ...Option) *Compiler {
	c := &Compiler{
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				extension.Footnote,
			),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(), // ids feed the table of contents
			),
			goldmark.WithRendererOptions(
				html.WithUnsafe(), // embedded components are raw HTML to goldmark
			),
		),
		placeholder: DefaultSummary,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile validates the front-matter of data, parses its body into an
// annotated render tree and attaches the normalized path derived from source.
// It returns a *ValidationError or *ParseError for content problems.
func (c *Compiler) Compile(source string, data []byte) (*models.Post, error) {
	path, err := NormalizePath(source)
	if err != nil {
		return nil, &ParseError{Source: source, Reason: err.Error(), Err: err}
	}

	raw, body, lineOffset, err := splitFrontMatter(source, data)
	if err != nil {
		return nil, err
	}
	fm, err := validateFrontMatter(source, raw, body, c.placeholder)
	if err != nil {
		return nil, err
	}

	tree, err := c.parseBody(source, body, lineOffset)
	if err != nil {
		return nil, err
	}
	annotated := codeblock.Annotate(tree).(*rendertree.Element)

	return &models.Post{
		Path:        path,
		Source:      source,
		FrontMatter: fm,
		Tree:        annotated,
		TOC:         toc.Extract(annotated),
		CodeBlocks:  codeblock.Collect(annotated),
		Checksum:    checksum.Sum(data),
	}, nil
}

func (c *Compiler) parseBody(source string, body []byte, lineOffset int) (*rendertree.Element, error) {
	doc := c.md.Parser().Parse(text.NewReader(body))
	if err := checkComponents(source, body, lineOffset, doc); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := c.md.Renderer().Render(&buf, body, doc); err != nil {
		return nil, fmt.Errorf("compiler: render %s: %w", source, err)
	}
	tree, err := rendertree.FromHTML(bytes.NewReader(expandSelfClosing(buf.Bytes())))
	if err != nil {
		return nil, &ParseError{Source: source, Reason: "unreadable body markup", Err: err}
	}
	return tree, nil
}
