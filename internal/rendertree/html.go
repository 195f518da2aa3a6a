package rendertree

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Property names with special meaning in the tree.
const (
	PropClassName = "className"
	PropRawText   = "rawText"
	PropLanguage  = "language"
)

// FromHTML parses an HTML fragment into a tree under a synthetic root.
// The class attribute becomes the className token list; every other
// attribute is kept as a string. Comments and doctypes are dropped.
func FromHTML(r io.Reader) (*Element, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(r, ctx)
	if err != nil {
		return nil, fmt.Errorf("rendertree: parse html: %w", err)
	}
	root := Root()
	for _, n := range nodes {
		if c := convert(n); c != nil {
			root.Children = append(root.Children, c)
		}
	}
	return root, nil
}

func convert(n *html.Node) Node {
	switch n.Type {
	case html.TextNode:
		return &Text{Value: n.Data}
	case html.ElementNode:
		el := &Element{Tag: n.Data, Props: make(Properties, len(n.Attr))}
		for _, a := range n.Attr {
			if a.Key == "class" {
				el.Props[PropClassName] = List(strings.Fields(a.Val)...)
				continue
			}
			el.Props[a.Key] = String(a.Val)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if cn := convert(c); cn != nil {
				el.Children = append(el.Children, cn)
			}
		}
		return el
	default:
		return nil
	}
}

// RenderFunc writes the HTML for a single element. It replaces the default
// serialization of that element and its children.
type RenderFunc func(w io.Writer, el *Element) error

// Renderer serializes trees to HTML.
type Renderer struct {
	// Overrides maps tag names to custom element renderers.
	Overrides map[string]RenderFunc
}

var voidElements = map[string]struct{}{
	"area": {}, "base": {}, "br": {}, "col": {}, "embed": {}, "hr": {}, "img": {},
	"input": {}, "link": {}, "meta": {}, "source": {}, "track": {}, "wbr": {},
}

var rawTextElements = map[string]struct{}{"script": {}, "style": {}}

// Render writes n as HTML.
func (r *Renderer) Render(w io.Writer, n Node) error {
	bw := bufio.NewWriter(w)
	if err := r.render(bw, n, false); err != nil {
		return err
	}
	return bw.Flush()
}

// RenderString renders n into a string.
func (r *Renderer) RenderString(n Node) (string, error) {
	var b strings.Builder
	if err := r.Render(&b, n); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (r *Renderer) render(w *bufio.Writer, n Node, raw bool) error {
	switch n := n.(type) {
	case *Text:
		if raw {
			_, err := w.WriteString(n.Value)
			return err
		}
		_, err := w.WriteString(html.EscapeString(n.Value))
		return err
	case *Element:
		if n.Tag == RootTag {
			return r.renderChildren(w, n, false)
		}
		if fn, ok := r.Overrides[n.Tag]; ok && fn != nil {
			return fn(w, n)
		}
		w.WriteByte('<')
		w.WriteString(n.Tag)
		writeAttrs(w, n.Props)
		w.WriteByte('>')
		if _, void := voidElements[n.Tag]; void {
			return nil
		}
		_, isRaw := rawTextElements[n.Tag]
		if err := r.renderChildren(w, n, isRaw); err != nil {
			return err
		}
		w.WriteString("</")
		w.WriteString(n.Tag)
		_, err := w.WriteString(">")
		return err
	default:
		return fmt.Errorf("rendertree: unknown node type %T", n)
	}
}

func (r *Renderer) renderChildren(w *bufio.Writer, el *Element, raw bool) error {
	for _, c := range el.Children {
		if err := r.render(w, c, raw); err != nil {
			return err
		}
	}
	return nil
}

func writeAttrs(w *bufio.Writer, props Properties) {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		name, ok := attrName(k)
		if !ok {
			continue
		}
		w.WriteByte(' ')
		w.WriteString(name)
		w.WriteString(`="`)
		w.WriteString(html.EscapeString(props[k].String()))
		w.WriteByte('"')
	}
}

// attrName maps a property name to its HTML attribute name. rawText
// duplicates the element's content and is never serialized.
func attrName(prop string) (string, bool) {
	switch prop {
	case PropClassName:
		return "class", true
	case PropLanguage:
		return "data-language", true
	case PropRawText:
		return "", false
	default:
		return prop, true
	}
}
