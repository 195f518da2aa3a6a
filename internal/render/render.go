// Package render turns compiled posts into HTML fragments.
package render

import (
	"fmt"
	"io"

	"github.com/adyingdeath/blog/internal/codeblock"
	"github.com/adyingdeath/blog/internal/highlight"
	"github.com/adyingdeath/blog/internal/models"
	"github.com/adyingdeath/blog/internal/rendertree"
)

// PostRenderer renders post bodies, replacing code blocks with highlighted markup.
type PostRenderer struct {
	tree rendertree.Renderer
}

// New returns a PostRenderer using hl for every annotated pre element.
func New(hl *highlight.Highlighter) *PostRenderer {
	return &PostRenderer{tree: rendertree.Renderer{
		Overrides: map[string]rendertree.RenderFunc{
			"pre": func(w io.Writer, el *rendertree.Element) error {
				a, ok := codeblock.Read(el)
				if !ok {
					a = codeblock.Extract(el)
				}
				return hl.Render(w, a)
			},
		},
	}}
}

// Body writes the HTML of p's body.
func (r *PostRenderer) Body(w io.Writer, p *models.Post) error {
	if p.Tree == nil {
		return fmt.Errorf("render: post %s has no tree", p.Path)
	}
	return r.tree.Render(w, p.Tree)
}

// BodyString returns the HTML of p's body.
func (r *PostRenderer) BodyString(p *models.Post) (string, error) {
	if p.Tree == nil {
		return "", fmt.Errorf("render: post %s has no tree", p.Path)
	}
	return r.tree.RenderString(p.Tree)
}
