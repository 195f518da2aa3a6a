// Package output writes a built site as static files.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/adyingdeath/blog/internal/models"
	"github.com/adyingdeath/blog/internal/render"
	"github.com/adyingdeath/blog/internal/site"
	"github.com/adyingdeath/blog/internal/sitemap"
	"github.com/adyingdeath/blog/internal/storage"
)

// File names inside the output directory.
const (
	PostsIndexFile = "posts.json"
	PostsDir       = "posts"
	ProjectsFile   = "projects.json"
	SitemapFile    = "sitemap.xml"
)

// PostDocument is the per-post JSON written next to its HTML fragment.
type PostDocument struct {
	models.PostSummary
	TOC []models.TOCEntry `json:"toc"`
}

// Writer writes sites to a Sink.
type Writer struct {
	sink     storage.Sink
	renderer *render.PostRenderer
	logger   *slog.Logger
}

// NewWriter returns a Writer.
func NewWriter(sink storage.Sink, renderer *render.PostRenderer, logger *slog.Logger) *Writer {
	return &Writer{sink: sink, renderer: renderer, logger: logger}
}

// Write emits the post index, one HTML fragment and one JSON document per
// post, the projects list and the sitemap. It returns the number of files
// written.
func (w *Writer) Write(s *site.Site) (int, error) {
	written := 0
	posts := s.Chronological()

	if err := w.writeJSON(PostsIndexFile, models.Summaries(posts)); err != nil {
		return written, err
	}
	written++

	for _, p := range posts {
		html, err := w.renderer.BodyString(p)
		if err != nil {
			return written, fmt.Errorf("output: render %s: %w", p.Path, err)
		}
		if err := w.sink.Write(PostsDir+"/"+p.Path+".html", []byte(html)); err != nil {
			return written, fmt.Errorf("output: %w", err)
		}
		doc := PostDocument{PostSummary: p.Summarize(), TOC: p.TOC}
		if err := w.writeJSON(PostsDir+"/"+p.Path+".json", doc); err != nil {
			return written, err
		}
		written += 2
		w.logger.Debug("output: wrote post", slog.String("path", p.Path))
	}

	if err := w.writeJSON(ProjectsFile, s.Projects()); err != nil {
		return written, err
	}
	written++

	var buf bytes.Buffer
	if err := sitemap.Write(&buf, s.Sitemap()); err != nil {
		return written, err
	}
	if err := w.sink.Write(SitemapFile, buf.Bytes()); err != nil {
		return written, fmt.Errorf("output: %w", err)
	}
	written++

	w.logger.Info("output: site written", slog.Int("files", written), slog.Int("posts", len(posts)))
	return written, nil
}

func (w *Writer) writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("output: encode %s: %w", path, err)
	}
	if err := w.sink.Write(path, append(data, '\n')); err != nil {
		return fmt.Errorf("output: %w", err)
	}
	return nil
}
