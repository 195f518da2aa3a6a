package api

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/adyingdeath/blog/internal/apperr"
	"github.com/adyingdeath/blog/internal/checksum"
	"github.com/adyingdeath/blog/internal/models"
	"github.com/adyingdeath/blog/internal/render"
	"github.com/adyingdeath/blog/internal/site"
	"github.com/adyingdeath/blog/internal/sitemap"
)

// RebuildFunc rebuilds the site and publishes the result.
type RebuildFunc func(ctx context.Context) (*site.Site, error)

// Handler holds API route handlers.
type Handler struct {
	sites    *site.Holder
	renderer *render.PostRenderer
	rebuild  RebuildFunc
}

// NewHandler creates a new Handler. rebuild may be nil, in which case the
// rebuild route reports 503.
func NewHandler(sites *site.Holder, renderer *render.PostRenderer, rebuild RebuildFunc) *Handler {
	return &Handler{sites: sites, renderer: renderer, rebuild: rebuild}
}

// postPath extracts the post path from the URL (everything after /api/posts/).
// Supports encoded slashes (e.g. 2024%2Fhello).
func postPath(r *http.Request) string {
	raw := strings.Trim(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// ListPosts handles GET /api/posts.
//
//	@Summary		List posts, most recent first
//	@Tags			posts
//	@Produce		json
//	@Param			page	query		int	false	"1-indexed page"
//	@Success		200		{object}	PostListResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Router			/posts [get]
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	n := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("page must be an integer"))
			return
		}
		n = v
	}

	page, err := h.sites.Load().Page(n)
	if err != nil {
		if errors.Is(err, apperr.ErrPageOutOfRange) {
			writeJSON(w, http.StatusNotFound, errorBody(err.Error()))
		} else {
			slog.Error("list posts failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, PostListResponse{
		Posts:      models.Summaries(page.Posts),
		Page:       page.Number,
		TotalPages: page.TotalPages,
		Total:      page.Total,
	})
}

// GetPost handles GET /api/posts/*.
//
//	@Summary		Get a single post by path
//	@Tags			posts
//	@Produce		json
//	@Param			path	path		string	true	"Normalized post path"
//	@Success		200		{object}	PostDetail
//	@Success		304
//	@Failure		404		{object}	errResponse
//	@Router			/posts/{path} [get]
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	path := postPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	post, err := h.sites.Load().Post(path)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("get post failed", slog.String("path", path), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}

	etag := checksum.ETag(post.Checksum)
	w.Header().Set("ETag", etag)
	if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	html, err := h.renderer.BodyString(post)
	if err != nil {
		slog.Error("render post failed", slog.String("path", path), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, PostDetail{
		PostSummary: post.Summarize(),
		HTML:        html,
		TOC:         post.TOC,
		CodeBlocks:  post.CodeBlocks,
		Checksum:    post.Checksum,
	})
}

// Home handles GET /api/home.
//
//	@Summary		Featured and recent posts
//	@Tags			posts
//	@Produce		json
//	@Success		200		{object}	HomeResponse
//	@Router			/home [get]
func (h *Handler) Home(w http.ResponseWriter, _ *http.Request) {
	home := h.sites.Load().Home()
	resp := HomeResponse{Recent: models.Summaries(home.Recent)}
	if home.Featured != nil {
		s := home.Featured.Summarize()
		resp.Featured = &s
	}
	writeJSON(w, http.StatusOK, resp)
}

// Projects handles GET /api/projects.
//
//	@Summary		Portfolio entries
//	@Tags			projects
//	@Produce		json
//	@Success		200		{object}	ProjectsResponse
//	@Router			/projects [get]
func (h *Handler) Projects(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, ProjectsResponse{Projects: h.sites.Load().Projects()})
}

// BuildReport handles GET /api/build.
//
//	@Summary		Report of the build serving requests
//	@Tags			admin
//	@Produce		json
//	@Success		200		{object}	registry.Report
//	@Security		BearerAuth
//	@Router			/build [get]
func (h *Handler) BuildReport(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.sites.Load().Report())
}

// Rebuild handles POST /api/rebuild.
//
//	@Summary		Rebuild the site from source
//	@Tags			admin
//	@Produce		json
//	@Success		200		{object}	registry.Report
//	@Failure		500		{object}	errResponse
//	@Failure		503		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/rebuild [post]
func (h *Handler) Rebuild(w http.ResponseWriter, r *http.Request) {
	if h.rebuild == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody("rebuild not available"))
		return
	}
	s, err := h.rebuild(r.Context())
	if err != nil {
		slog.Error("rebuild failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("rebuild failed"))
		return
	}
	writeJSON(w, http.StatusOK, s.Report())
}

// Sitemap handles GET /sitemap.xml.
func (h *Handler) Sitemap(w http.ResponseWriter, _ *http.Request) {
	var buf bytes.Buffer
	if err := sitemap.Write(&buf, h.sites.Load().Sitemap()); err != nil {
		slog.Error("sitemap failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
