// Package toc builds a post's table of contents and decides which headings
// are active for a given scroll position.
package toc

import (
	"slices"
	"strings"

	"github.com/adyingdeath/blog/internal/models"
	"github.com/adyingdeath/blog/internal/rendertree"
)

var headingDepth = map[string]int{"h1": 1, "h2": 2, "h3": 3, "h4": 4, "h5": 5, "h6": 6}

// Extract returns one entry per heading element carrying an id, in document order.
func Extract(tree rendertree.Node) []models.TOCEntry {
	var out []models.TOCEntry
	rendertree.Walk(tree, func(n rendertree.Node) bool {
		el, ok := n.(*rendertree.Element)
		if !ok {
			return true
		}
		depth, ok := headingDepth[el.Tag]
		if !ok {
			return true
		}
		id, ok := el.Props.Get("id")
		if !ok || id.String() == "" {
			return false
		}
		out = append(out, models.TOCEntry{
			Depth: depth,
			Value: strings.TrimSpace(rendertree.TextContent(el)),
			URL:   "#" + id.String(),
		})
		return false
	})
	return out
}

// HeadingPosition is a heading's id and its top edge relative to the viewport.
type HeadingPosition struct {
	ID  string  `json:"id"`
	Top float64 `json:"top"`
}

// Active returns the ids of the headings to highlight: the last heading at or
// above the viewport top (or the first heading when none is), followed by every
// heading whose top lies strictly inside the viewport. Ids are not repeated.
func Active(positions []HeadingPosition, viewportHeight float64) []string {
	if len(positions) == 0 {
		return nil
	}
	sorted := slices.Clone(positions)
	slices.SortStableFunc(sorted, func(a, b HeadingPosition) int {
		switch {
		case a.Top < b.Top:
			return -1
		case a.Top > b.Top:
			return 1
		}
		return 0
	})

	main := sorted[0]
	for _, h := range sorted {
		if h.Top <= 0 {
			main = h
		}
	}

	active := []string{main.ID}
	for _, h := range sorted {
		if h.Top > 0 && h.Top < viewportHeight && !slices.Contains(active, h.ID) {
			active = append(active, h.ID)
		}
	}
	return active
}
