// Package site holds the build context: everything a build produced, shared
// read-only with the HTTP, output and MCP layers.
package site

import (
	"sync/atomic"
	"time"

	"github.com/adyingdeath/blog/internal/listing"
	"github.com/adyingdeath/blog/internal/models"
	"github.com/adyingdeath/blog/internal/registry"
	"github.com/adyingdeath/blog/internal/sitemap"
)

// Settings are the presentation knobs of a site.
type Settings struct {
	BaseURL      string
	PageSize     int
	RecentCount  int
	FeaturedPath string
}

// Site is the immutable result of one build.
type Site struct {
	settings      Settings
	registry      *registry.Registry
	chronological []*models.Post
	projects      []models.Project
	report        *registry.Report
	builtAt       time.Time
}

// New assembles a Site from a built registry.
func New(reg *registry.Registry, report *registry.Report, projects []models.Project, s Settings) *Site {
	if s.PageSize <= 0 {
		s.PageSize = listing.DefaultPageSize
	}
	if projects == nil {
		projects = []models.Project{}
	}
	if report == nil {
		report = &registry.Report{}
	}
	return &Site{
		settings:      s,
		registry:      reg,
		chronological: listing.Chronological(reg.Posts()),
		projects:      projects,
		report:        report,
		builtAt:       time.Now(),
	}
}

// Settings returns the settings the site was built with.
func (s *Site) Settings() Settings { return s.settings }

// Registry returns the underlying registry.
func (s *Site) Registry() *registry.Registry { return s.registry }

// Report returns the report of the build that produced s.
func (s *Site) Report() *registry.Report { return s.report }

// BuiltAt returns when s was assembled.
func (s *Site) BuiltAt() time.Time { return s.builtAt }

// Projects returns the portfolio entries.
func (s *Site) Projects() []models.Project { return s.projects }

// Post returns the post at path.
func (s *Site) Post(path string) (*models.Post, error) {
	return s.registry.Lookup(path)
}

// Chronological returns every post, most recent first. Callers must not
// modify the slice.
func (s *Site) Chronological() []*models.Post { return s.chronological }

// Page returns the 1-indexed listing page.
func (s *Site) Page(n int) (listing.Page, error) {
	return listing.Paginate(s.chronological, n, s.settings.PageSize)
}

// Home is the featured post and the recent posts that follow it.
type Home struct {
	Featured *models.Post   `json:"featured"`
	Recent   []*models.Post `json:"recent"`
}

// Home returns the home page selection.
func (s *Site) Home() Home {
	f := listing.Featured(s.chronological, s.settings.FeaturedPath)
	return Home{
		Featured: f,
		Recent:   listing.Recent(s.chronological, f, s.settings.RecentCount),
	}
}

// Sitemap returns the sitemap entries for the site.
func (s *Site) Sitemap() []sitemap.Entry {
	return sitemap.Entries(s.settings.BaseURL, s.chronological, s.builtAt)
}

// Holder publishes the current Site. Readers always see a complete site.
type Holder struct {
	current atomic.Pointer[Site]
}

// NewHolder returns a Holder serving s.
func NewHolder(s *Site) *Holder {
	h := &Holder{}
	h.current.Store(s)
	return h
}

// Load returns the current site.
func (h *Holder) Load() *Site { return h.current.Load() }

// Store replaces the current site.
func (h *Holder) Store(s *Site) { h.current.Store(s) }
