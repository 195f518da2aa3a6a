// Package models defines the domain types for the blog.
package models

import (
	"time"

	"github.com/adyingdeath/blog/internal/codeblock"
	"github.com/adyingdeath/blog/internal/rendertree"
)

// FrontMatter is the validated, defaulted metadata of a document.
type FrontMatter struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Date    string `json:"date"`
	// Content is the raw source body without the front-matter block.
	Content string `json:"-"`
	// Published is Date parsed as an ISO-8601 date or timestamp.
	Published time.Time `json:"-"`
}

// TOCEntry is one heading in a post's table of contents.
type TOCEntry struct {
	Depth int    `json:"depth"`
	Value string `json:"value"`
	URL   string `json:"url"`
}

// Post is a compiled document.
type Post struct {
	// Path is the normalized, slash-joined identifier used for routing.
	Path string `json:"path"`
	// Source is the location of the document relative to the content root.
	Source      string                 `json:"source"`
	FrontMatter FrontMatter            `json:"front_matter"`
	Tree        *rendertree.Element    `json:"-"`
	TOC         []TOCEntry             `json:"toc"`
	CodeBlocks  []codeblock.Annotation `json:"code_blocks"`
	Checksum    string                 `json:"checksum"`
}

// SourceFile is a raw document discovered in the content directory.
type SourceFile struct {
	// Path is relative to the content root, slash separated.
	Path      string
	Checksum  string
	UpdatedAt time.Time
}

// Project is one portfolio entry.
type Project struct {
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Href        string `json:"href,omitempty" yaml:"href"`
	ImgSrc      string `json:"img_src,omitempty" yaml:"img_src"`
}

// PostSummary is the listing view of a post.
type PostSummary struct {
	Path    string `json:"path"`
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Date    string `json:"date"`
}

// Summarize returns the listing view of p.
func (p *Post) Summarize() PostSummary {
	return PostSummary{
		Path:    p.Path,
		Title:   p.FrontMatter.Title,
		Summary: p.FrontMatter.Summary,
		Date:    p.FrontMatter.Date,
	}
}

// Summaries returns the listing view of every post, in order.
func Summaries(posts []*Post) []PostSummary {
	out := make([]PostSummary, len(posts))
	for i, p := range posts {
		out[i] = p.Summarize()
	}
	return out
}
