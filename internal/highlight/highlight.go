// Package highlight renders annotated code blocks as styled HTML.
package highlight

import (
	"fmt"
	"html"
	"io"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/adyingdeath/blog/internal/codeblock"
)

// DefaultStyle is the chroma style used when none is configured.
const DefaultStyle = "dracula"

// Highlighter maps {rawText, language} pairs to styled HTML.
type Highlighter struct {
	style     *chroma.Style
	formatter *chromahtml.Formatter
}

// New returns a Highlighter for the named chroma style. An unknown style is
// an error: without it no block could be rendered.
func New(style string) (*Highlighter, error) {
	if style == "" {
		style = DefaultStyle
	}
	s, ok := styles.Registry[style]
	if !ok {
		return nil, fmt.Errorf("highlight: unknown style %q", style)
	}
	return &Highlighter{
		style: s,
		formatter: chromahtml.New(
			chromahtml.WithClasses(false), // inline styles keep fragments self-contained
			chromahtml.TabWidth(4),
		),
	}, nil
}

// Render writes the highlighted form of a. Absent languages render as
// plaintext; unknown languages fall back to chroma's plain lexer. If
// tokenizing fails the block is written escaped without styling.
func (h *Highlighter) Render(w io.Writer, a codeblock.Annotation) error {
	lexer := lexers.Get(a.LanguageOrDefault())
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	it, err := lexer.Tokenise(nil, a.RawText)
	if err != nil {
		return plain(w, a)
	}
	return h.formatter.Format(w, h.style, it)
}

func plain(w io.Writer, a codeblock.Annotation) error {
	_, err := fmt.Fprintf(w, `<pre data-language="%s"><code>%s</code></pre>`,
		html.EscapeString(a.LanguageOrDefault()), html.EscapeString(a.RawText))
	return err
}
