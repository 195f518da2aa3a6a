// Package sitemap produces the sitemaps.org document for the site.
package sitemap

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/adyingdeath/blog/internal/models"
)

// Namespace is the sitemaps.org schema namespace.
const Namespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// Change frequencies.
const (
	Daily   = "daily"
	Weekly  = "weekly"
	Monthly = "monthly"
)

// Entry is one <url> element.
type Entry struct {
	Loc        string  `xml:"loc"`
	LastMod    string  `xml:"lastmod,omitempty"`
	ChangeFreq string  `xml:"changefreq,omitempty"`
	Priority   float64 `xml:"priority"`
}

type urlSet struct {
	XMLName xml.Name `xml:"urlset"`
	XMLNS   string   `xml:"xmlns,attr"`
	URLs    []Entry  `xml:"url"`
}

type page struct {
	path     string
	freq     string
	priority float64
}

var staticPages = []page{
	{"", Monthly, 1},
	{"/about", Monthly, 0.8},
	{"/projects", Monthly, 0.8},
	{"/blog", Daily, 0.9},
}

// Entries returns the static pages followed by one entry per post, in the
// order given. Static pages carry now as their last modification.
func Entries(baseURL string, posts []*models.Post, now time.Time) []Entry {
	base := strings.TrimRight(baseURL, "/")
	out := make([]Entry, 0, len(staticPages)+len(posts))
	for _, p := range staticPages {
		out = append(out, Entry{
			Loc:        base + p.path,
			LastMod:    now.UTC().Format(time.RFC3339),
			ChangeFreq: p.freq,
			Priority:   p.priority,
		})
	}
	for _, p := range posts {
		e := Entry{
			Loc:        fmt.Sprintf("%s/blog/%s", base, p.Path),
			ChangeFreq: Weekly,
			Priority:   0.7,
		}
		if !p.FrontMatter.Published.IsZero() {
			e.LastMod = p.FrontMatter.Published.UTC().Format(time.RFC3339)
		}
		out = append(out, e)
	}
	return out
}

// Write encodes entries as an indented sitemap document.
func Write(w io.Writer, entries []Entry) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(urlSet{XMLNS: Namespace, URLs: entries}); err != nil {
		return fmt.Errorf("sitemap: encode: %w", err)
	}
	return enc.Close()
}
