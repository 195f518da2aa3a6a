// Package registry builds and holds the read-only set of compiled posts.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/adyingdeath/blog/internal/apperr"
	"github.com/adyingdeath/blog/internal/compiler"
	"github.com/adyingdeath/blog/internal/models"
	"github.com/adyingdeath/blog/internal/storage"
)

// Registry is the ordered, immutable list of compiled posts. It is safe for
// concurrent reads.
type Registry struct {
	posts  []*models.Post
	byPath map[string]*models.Post
}

// Posts returns the posts ordered by path. The slice is a copy.
func (r *Registry) Posts() []*models.Post {
	return slices.Clone(r.posts)
}

// Len returns the number of posts.
func (r *Registry) Len() int { return len(r.posts) }

// Lookup returns the post with the given path. The query is normalized the
// same way stored paths are, minus extension handling, so "/2024/café/"
// finds "2024/café" in either Unicode form.
func (r *Registry) Lookup(path string) (*models.Post, error) {
	key, err := compiler.NormalizeKey(path)
	if err != nil {
		return nil, fmt.Errorf("post %q: %w", path, apperr.ErrNotFound)
	}
	p, ok := r.byPath[key]
	if !ok {
		return nil, fmt.Errorf("post %q: %w", path, apperr.ErrNotFound)
	}
	return p, nil
}

// FromPosts assembles a registry from already compiled posts. Posts sharing a
// path are rejected with a *DuplicatePathError.
func FromPosts(posts []*models.Post) (*Registry, error) {
	kept, dups := dedupe(posts)
	if len(dups) > 0 {
		errs := make([]error, len(dups))
		for i, d := range dups {
			errs[i] = d
		}
		return nil, errors.Join(errs...)
	}
	return newRegistry(kept), nil
}

func newRegistry(posts []*models.Post) *Registry {
	slices.SortFunc(posts, func(a, b *models.Post) int {
		return strings.Compare(a.Path, b.Path)
	})
	byPath := make(map[string]*models.Post, len(posts))
	for _, p := range posts {
		byPath[p.Path] = p
	}
	return &Registry{posts: posts, byPath: byPath}
}

// dedupe splits posts into those with a unique path and one error per
// colliding path.
func dedupe(posts []*models.Post) ([]*models.Post, []*DuplicatePathError) {
	groups := make(map[string][]*models.Post, len(posts))
	for _, p := range posts {
		groups[p.Path] = append(groups[p.Path], p)
	}

	var (
		kept []*models.Post
		dups []*DuplicatePathError
	)
	for _, p := range posts {
		g := groups[p.Path]
		if len(g) == 1 {
			kept = append(kept, p)
			continue
		}
		if g[0] != p {
			continue
		}
		sources := make([]string, len(g))
		for i, q := range g {
			sources[i] = q.Source
		}
		slices.Sort(sources)
		dups = append(dups, &DuplicatePathError{Path: p.Path, Sources: sources})
	}
	slices.SortFunc(dups, func(a, b *DuplicatePathError) int {
		return strings.Compare(a.Path, b.Path)
	})
	return kept, dups
}

// Report summarizes one build pass.
type Report struct {
	BuildID  string        `json:"build_id"`
	Started  time.Time     `json:"started"`
	Duration time.Duration `json:"duration"`
	Scanned  int           `json:"scanned"`
	Compiled int           `json:"compiled"`
	Failures []Failure     `json:"failures"`
}

// Err joins every per-document failure, or returns nil when there are none.
func (r *Report) Err() error {
	errs := make([]error, 0, len(r.Failures))
	for _, f := range r.Failures {
		errs = append(errs, f.Err)
	}
	return errors.Join(errs...)
}

type buildOptions struct {
	dir     string
	workers int
}

// Option configures Build.
type Option func(*buildOptions)

// WithDir restricts discovery to dir under the source root.
func WithDir(dir string) Option {
	return func(o *buildOptions) {
		o.dir = dir
	}
}

// WithWorkers bounds the number of documents compiled at once.
func WithWorkers(n int) Option {
	return func(o *buildOptions) {
		if n > 0 {
			o.workers = n
		}
	}
}

// Build discovers every document in src, compiles each independently and
// returns the registry of those that succeeded. Per-document failures are
// collected in the report; only listing or reading the source aborts the
// build.
func Build(ctx context.Context, src storage.Source, c *compiler.Compiler, logger *slog.Logger, opts ...Option) (*Registry, *Report, error) {
	o := buildOptions{workers: runtime.GOMAXPROCS(0)}
	for _, opt := range opts {
		opt(&o)
	}

	report := &Report{
		BuildID: uuid.NewString(),
		Started: time.Now(),
	}
	logger = logger.With(slog.String("build_id", report.BuildID))

	files, err := src.List(o.dir)
	if err != nil {
		return nil, nil, fmt.Errorf("list sources: %w", err)
	}
	report.Scanned = len(files)

	// Workers fill their own slot; discovery order is restored below.
	posts := make([]*models.Post, len(files))
	errs := make([]error, len(files))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)
	for i, f := range files {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			data, err := src.Read(f.Path)
			if err != nil {
				return fmt.Errorf("read %s: %w", f.Path, err)
			}
			posts[i], errs[i] = c.Compile(f.Path, data)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	compiled := make([]*models.Post, 0, len(files))
	for i, f := range files {
		if errs[i] != nil {
			logger.Warn("build: compile failed", slog.String("path", f.Path), slog.String("error", errs[i].Error()))
			report.Failures = append(report.Failures, newFailure(f.Path, errs[i]))
			continue
		}
		logger.Debug("build: compiled", slog.String("path", f.Path), slog.String("post", posts[i].Path))
		compiled = append(compiled, posts[i])
	}

	kept, dups := dedupe(compiled)
	for _, d := range dups {
		logger.Warn("build: duplicate path", slog.String("post", d.Path), slog.Any("sources", d.Sources))
		for _, s := range d.Sources {
			report.Failures = append(report.Failures, newFailure(s, d))
		}
	}
	slices.SortStableFunc(report.Failures, func(a, b Failure) int {
		return strings.Compare(a.Source, b.Source)
	})

	reg := newRegistry(kept)
	report.Compiled = reg.Len()
	report.Duration = time.Since(report.Started)

	logger.Info("build: finished",
		slog.Int("scanned", report.Scanned),
		slog.Int("compiled", report.Compiled),
		slog.Int("failed", len(report.Failures)),
		slog.Duration("duration", report.Duration))

	return reg, report, nil
}
