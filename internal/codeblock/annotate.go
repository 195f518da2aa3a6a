// Package codeblock annotates preformatted blocks in a render tree with
// their raw text and declared language.
package codeblock

import (
	"strings"

	"github.com/adyingdeath/blog/internal/rendertree"
)

const (
	preTag         = "pre"
	codeTag        = "code"
	languagePrefix = "language-"

	// DefaultLanguage is what consumers use when a block declares none.
	DefaultLanguage = "plaintext"
)

// Annotation is the derived data attached to each preformatted block.
type Annotation struct {
	RawText  string `json:"raw_text"`
	Language string `json:"language,omitempty"` // empty when undeclared
}

// LanguageOrDefault returns Language, or DefaultLanguage when it is absent.
func (a Annotation) LanguageOrDefault() string {
	if a.Language == "" {
		return DefaultLanguage
	}
	return a.Language
}

// Annotate returns a copy of tree in which every pre element carries the
// rawText property and, when declared, the language property. The input is
// not modified. Running Annotate on its own output yields identical values.
func Annotate(tree rendertree.Node) rendertree.Node {
	switch n := tree.(type) {
	case *rendertree.Text:
		return &rendertree.Text{Value: n.Value}
	case *rendertree.Element:
		out := &rendertree.Element{
			Tag:      n.Tag,
			Props:    n.Props.Clone(),
			Children: make([]rendertree.Node, len(n.Children)),
		}
		for i, c := range n.Children {
			out.Children[i] = Annotate(c)
		}
		if out.Tag == preTag {
			a := Extract(out)
			out.Props[rendertree.PropRawText] = rendertree.String(a.RawText)
			if a.Language != "" {
				out.Props[rendertree.PropLanguage] = rendertree.String(a.Language)
			} else {
				delete(out.Props, rendertree.PropLanguage)
			}
		}
		return out
	default:
		return tree
	}
}

// Extract computes the annotation of a single pre element from its content.
func Extract(pre *rendertree.Element) Annotation {
	return Annotation{
		RawText:  rendertree.TextContent(pre),
		Language: language(pre),
	}
}

// Read returns the annotation already stored on pre. ok is false when the
// element has not been annotated.
func Read(pre *rendertree.Element) (a Annotation, ok bool) {
	raw, ok := pre.Props.Get(rendertree.PropRawText)
	if !ok {
		return Annotation{}, false
	}
	a.RawText = raw.String()
	if lang, ok := pre.Props.Get(rendertree.PropLanguage); ok {
		a.Language = lang.String()
	}
	return a, true
}

// Collect returns the annotations of every pre element of an annotated tree,
// in document order.
func Collect(tree rendertree.Node) []Annotation {
	var out []Annotation
	for _, pre := range rendertree.FindAll(tree, preTag) {
		if a, ok := Read(pre); ok {
			out = append(out, a)
		}
	}
	return out
}

// language looks at the first code child of pre for a className token list
// and returns the first language-<tag> token with its prefix stripped.
func language(pre *rendertree.Element) string {
	var code *rendertree.Element
	for _, c := range pre.Children {
		if el, ok := c.(*rendertree.Element); ok && el.Tag == codeTag {
			code = el
			break
		}
	}
	if code == nil {
		return ""
	}
	v, ok := code.Props.Get(rendertree.PropClassName)
	if !ok {
		return ""
	}
	tokens, ok := v.Tokens()
	if !ok {
		return ""
	}
	for _, tok := range tokens {
		if strings.HasPrefix(tok, languagePrefix) {
			return strings.TrimPrefix(tok, languagePrefix)
		}
	}
	return ""
}
