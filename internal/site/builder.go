package site

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/adyingdeath/blog/internal/compiler"
	"github.com/adyingdeath/blog/internal/metrics"
	"github.com/adyingdeath/blog/internal/projects"
	"github.com/adyingdeath/blog/internal/registry"
	"github.com/adyingdeath/blog/internal/storage"
)

// Builder runs complete builds from a content source.
type Builder struct {
	source       storage.Source
	compiler     *compiler.Compiler
	projectsFile string
	settings     Settings
	workers      int
	recorder     metrics.Recorder
	logger       *slog.Logger
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithProjectsFile sets the YAML file holding portfolio entries.
func WithProjectsFile(path string) BuilderOption {
	return func(b *Builder) {
		b.projectsFile = path
	}
}

// WithSettings sets the presentation settings of built sites.
func WithSettings(s Settings) BuilderOption {
	return func(b *Builder) {
		b.settings = s
	}
}

// WithWorkers bounds build parallelism.
func WithWorkers(n int) BuilderOption {
	return func(b *Builder) {
		b.workers = n
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) BuilderOption {
	return func(b *Builder) {
		b.recorder = r
	}
}

// NewBuilder returns a Builder reading documents from source.
func NewBuilder(source storage.Source, c *compiler.Compiler, logger *slog.Logger, opts ...BuilderOption) *Builder {
	b := &Builder{
		source:   source,
		compiler: c,
		recorder: metrics.NoopRecorder{},
		logger:   logger,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build compiles every document and assembles a new Site. Document failures
// are recorded in the site's report; the error is reserved for
// infrastructure failures.
func (b *Builder) Build(ctx context.Context) (*Site, error) {
	reg, report, err := registry.Build(ctx, b.source, b.compiler, b.logger, registry.WithWorkers(b.workers))
	if err != nil {
		b.recorder.ObserveBuild(0, metrics.OutcomeFailed)
		return nil, fmt.Errorf("build registry: %w", err)
	}

	projs, err := projects.Load(b.projectsFile)
	if err != nil {
		b.recorder.ObserveBuild(report.Duration, metrics.OutcomeFailed)
		return nil, err
	}

	outcome := metrics.OutcomeSuccess
	if len(report.Failures) > 0 {
		outcome = metrics.OutcomePartial
	}
	b.recorder.ObserveBuild(report.Duration, outcome)
	b.recorder.AddDocuments(report.Compiled, len(report.Failures))
	b.recorder.SetPosts(reg.Len())

	return New(reg, report, projs, b.settings), nil
}
