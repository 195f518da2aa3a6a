// Package rendertree models a parsed document body as a tree of typed nodes
// ready for presentation.
package rendertree

import (
	"slices"
	"strings"
)

// Node is either an *Element or a *Text.
type Node interface {
	isNode()
}

// Element is a generic element with a tag name, properties, and ordered children.
type Element struct {
	Tag      string
	Props    Properties
	Children []Node
}

// Text is a text leaf.
type Text struct {
	Value string
}

func (*Element) isNode() {}
func (*Text) isNode()    {}

// Value is a property value: a single string or a list of tokens.
type Value struct {
	str    string
	tokens []string
	list   bool
}

// String returns a scalar Value.
func String(s string) Value {
	return Value{str: s}
}

// List returns a token-list Value.
func List(tokens ...string) Value {
	return Value{tokens: slices.Clone(tokens), list: true}
}

// Tokens returns the tokens of a list value. ok is false for scalar values.
func (v Value) Tokens() (tokens []string, ok bool) {
	if !v.list {
		return nil, false
	}
	return v.tokens, true
}

// IsList reports whether v holds a token list.
func (v Value) IsList() bool { return v.list }

// String returns the scalar value, or the tokens joined by spaces for lists.
func (v Value) String() string {
	if v.list {
		return strings.Join(v.tokens, " ")
	}
	return v.str
}

// Equal reports whether two values hold the same shape and content.
func (v Value) Equal(o Value) bool {
	if v.list != o.list {
		return false
	}
	if v.list {
		return slices.Equal(v.tokens, o.tokens)
	}
	return v.str == o.str
}

// Properties maps property names to values.
type Properties map[string]Value

// Clone returns a shallow copy of p. Values are immutable so sharing them is safe.
func (p Properties) Clone() Properties {
	if p == nil {
		return Properties{}
	}
	out := make(Properties, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Get returns the named property.
func (p Properties) Get(name string) (Value, bool) {
	v, ok := p[name]
	return v, ok
}

// Root returns the conventional root element wrapping a document body.
func Root(children ...Node) *Element {
	return &Element{Tag: RootTag, Props: Properties{}, Children: children}
}

// RootTag is the tag of the synthetic root element. It is never serialized.
const RootTag = "#root"

// El is a convenience constructor used when building trees by hand.
func El(tag string, props Properties, children ...Node) *Element {
	if props == nil {
		props = Properties{}
	}
	return &Element{Tag: tag, Props: props, Children: children}
}

// T is a convenience constructor for text leaves.
func T(s string) *Text {
	return &Text{Value: s}
}

// TextContent flattens all descendant text of n into one string.
func TextContent(n Node) string {
	var b strings.Builder
	appendText(&b, n)
	return b.String()
}

func appendText(b *strings.Builder, n Node) {
	switch n := n.(type) {
	case *Text:
		b.WriteString(n.Value)
	case *Element:
		for _, c := range n.Children {
			appendText(b, c)
		}
	}
}

// Walk visits n and its descendants in pre-order. Returning false from fn
// skips the children of the current element.
func Walk(n Node, fn func(Node) bool) {
	if !fn(n) {
		return
	}
	if el, ok := n.(*Element); ok {
		for _, c := range el.Children {
			Walk(c, fn)
		}
	}
}

// FindAll returns every element with the given tag, in pre-order.
func FindAll(n Node, tag string) []*Element {
	var out []*Element
	Walk(n, func(n Node) bool {
		if el, ok := n.(*Element); ok && el.Tag == tag {
			out = append(out, el)
		}
		return true
	})
	return out
}
