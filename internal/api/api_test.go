package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/adyingdeath/blog/internal/compiler"
	"github.com/adyingdeath/blog/internal/highlight"
	"github.com/adyingdeath/blog/internal/render"
	"github.com/adyingdeath/blog/internal/site"
	"github.com/adyingdeath/blog/internal/testutil"
)

type env struct {
	dir     string
	holder  *site.Holder
	builder *site.Builder
	router  http.Handler
	handler *Handler
}

// testEnv builds a site from a temp content dir and mounts the router.
// An empty token means auth disabled.
func testEnv(t *testing.T, token string, seed func(dir string)) *env {
	t.Helper()
	return testEnvWithSSE(t, token, seed, nil)
}

func testEnvWithSSE(t *testing.T, token string, seed func(dir string), sseHandler http.Handler) *env {
	t.Helper()
	dir, store := testutil.TestContent(t)
	if seed != nil {
		seed(dir)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	b := site.NewBuilder(store, compiler.New(), logger,
		site.WithSettings(site.Settings{BaseURL: "https://example.com", PageSize: 2, RecentCount: 2}),
	)
	s, err := b.Build(context.Background())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	holder := site.NewHolder(s)

	hl, err := highlight.New("")
	if err != nil {
		t.Fatal(err)
	}
	rebuild := func(ctx context.Context) (*site.Site, error) {
		s, err := b.Build(ctx)
		if err != nil {
			return nil, err
		}
		holder.Store(s)
		return s, nil
	}
	h := NewHandler(holder, render.New(hl), rebuild)
	return &env{
		dir:     dir,
		holder:  holder,
		builder: b,
		handler: h,
		router:  NewRouter(h, token != "", token, sseHandler),
	}
}

func seedPosts(t *testing.T, dates ...string) func(string) {
	return func(dir string) {
		for i, d := range dates {
			testutil.WriteFile(t, dir, fmt.Sprintf("p%d.md", i), testutil.Doc(fmt.Sprintf("Post %d", i), d, "Body.\n"))
		}
	}
}

func do(t *testing.T, h http.Handler, method, target string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestListPosts(t *testing.T) {
	e := testEnv(t, "", seedPosts(t, "2024-01-01", "2024-06-01", "2023-12-31"))

	w := do(t, e.router, http.MethodGet, "/posts", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp PostListResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Total != 3 || resp.TotalPages != 2 || len(resp.Posts) != 2 {
		t.Fatalf("resp = %+v", resp)
	}
	if resp.Posts[0].Date != "2024-06-01" || resp.Posts[1].Date != "2024-01-01" {
		t.Errorf("order = %+v", resp.Posts)
	}

	w = do(t, e.router, http.MethodGet, "/posts?page=2", nil)
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Posts) != 1 || resp.Posts[0].Date != "2023-12-31" {
		t.Errorf("page 2 = %+v", resp.Posts)
	}
}

func TestListPosts_BadPage(t *testing.T) {
	e := testEnv(t, "", seedPosts(t, "2024-01-01"))
	if w := do(t, e.router, http.MethodGet, "/posts?page=9", nil); w.Code != http.StatusNotFound {
		t.Errorf("out of range status = %d", w.Code)
	}
	if w := do(t, e.router, http.MethodGet, "/posts?page=x", nil); w.Code != http.StatusBadRequest {
		t.Errorf("non-integer status = %d", w.Code)
	}
}

func TestGetPost(t *testing.T) {
	e := testEnv(t, "", func(dir string) {
		testutil.WritePost(t, dir, "2024/hello.mdx", "Hello", "2024-06-01")
	})

	w := do(t, e.router, http.MethodGet, "/posts/2024/hello", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	etag := w.Header().Get("ETag")
	if etag == "" || !strings.HasPrefix(etag, `"`) {
		t.Errorf("etag = %q", etag)
	}
	var detail PostDetail
	if err := json.NewDecoder(w.Body).Decode(&detail); err != nil {
		t.Fatal(err)
	}
	if detail.Title != "Hello" || detail.Path != "2024/hello" {
		t.Errorf("detail = %+v", detail.PostSummary)
	}
	if !strings.Contains(detail.HTML, "Body of Hello.") {
		t.Errorf("html = %q", detail.HTML)
	}
	if len(detail.CodeBlocks) != 1 || detail.CodeBlocks[0].Language != "go" {
		t.Errorf("code blocks = %+v", detail.CodeBlocks)
	}

	w = do(t, e.router, http.MethodGet, "/posts/2024%2Fhello", map[string]string{"If-None-Match": etag})
	if w.Code != http.StatusNotModified {
		t.Errorf("conditional status = %d, want 304", w.Code)
	}
}

func TestGetPost_NotFound(t *testing.T) {
	e := testEnv(t, "", nil)
	if w := do(t, e.router, http.MethodGet, "/posts/missing", nil); w.Code != http.StatusNotFound {
		t.Errorf("status = %d", w.Code)
	}
}

func TestHome(t *testing.T) {
	e := testEnv(t, "", seedPosts(t, "2024-01-01", "2024-06-01", "2023-12-31", "2022-01-01"))
	w := do(t, e.router, http.MethodGet, "/home", nil)
	var resp HomeResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Featured == nil || resp.Featured.Date != "2024-06-01" {
		t.Fatalf("featured = %+v", resp.Featured)
	}
	if len(resp.Recent) != 2 || resp.Recent[0].Date != "2024-01-01" {
		t.Errorf("recent = %+v", resp.Recent)
	}
}

func TestHome_Empty(t *testing.T) {
	e := testEnv(t, "", nil)
	w := do(t, e.router, http.MethodGet, "/home", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"featured":null`) {
		t.Errorf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestProjects(t *testing.T) {
	e := testEnv(t, "", nil)
	w := do(t, e.router, http.MethodGet, "/projects", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"projects":[]`) {
		t.Errorf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestSitemap(t *testing.T) {
	e := testEnv(t, "", func(dir string) {
		testutil.WritePost(t, dir, "hello.md", "Hello", "2024-06-01")
	})
	w := httptest.NewRecorder()
	e.handler.Sitemap(w, httptest.NewRequest(http.MethodGet, "/sitemap.xml", nil))
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/xml") {
		t.Errorf("content type = %q", ct)
	}
	if !strings.Contains(w.Body.String(), "<loc>https://example.com/blog/hello</loc>") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestRebuild(t *testing.T) {
	e := testEnv(t, "", nil)
	if e.holder.Load().Registry().Len() != 0 {
		t.Fatal("precondition: empty site")
	}
	testutil.WritePost(t, e.dir, "new.md", "New", "2024-01-01")

	w := do(t, e.router, http.MethodPost, "/rebuild", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if e.holder.Load().Registry().Len() != 1 {
		t.Error("rebuild did not publish new site")
	}
	if w := do(t, e.router, http.MethodGet, "/posts/new", nil); w.Code != http.StatusOK {
		t.Errorf("new post status = %d", w.Code)
	}
}

func TestRebuild_Unavailable(t *testing.T) {
	e := testEnv(t, "", nil)
	h := NewHandler(e.holder, e.handler.renderer, nil)
	w := httptest.NewRecorder()
	h.Rebuild(w, httptest.NewRequest(http.MethodPost, "/rebuild", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d", w.Code)
	}
}

func TestRebuild_Failure(t *testing.T) {
	e := testEnv(t, "", nil)
	h := NewHandler(e.holder, e.handler.renderer, func(context.Context) (*site.Site, error) {
		return nil, errors.New("disk gone")
	})
	w := httptest.NewRecorder()
	h.Rebuild(w, httptest.NewRequest(http.MethodPost, "/rebuild", nil))
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d", w.Code)
	}
}

func TestBuildReport(t *testing.T) {
	e := testEnv(t, "", func(dir string) {
		testutil.WriteFile(t, dir, "bad.md", "---\ntitle: x\n---\nno date\n")
	})
	w := do(t, e.router, http.MethodGet, "/build", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"source":"bad.md"`) {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	e := testEnv(t, "secret", nil)
	w := do(t, e.router, http.MethodGet, "/build", map[string]string{"Authorization": "Bearer secret"})
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	e := testEnv(t, "secret", nil)
	if w := do(t, e.router, http.MethodGet, "/build", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
	if w := do(t, e.router, http.MethodPost, "/rebuild", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("rebuild status = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_WrongToken(t *testing.T) {
	e := testEnv(t, "secret", nil)
	w := do(t, e.router, http.MethodGet, "/build", map[string]string{"Authorization": "Bearer wrong"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_PublicRoutesOpen(t *testing.T) {
	e := testEnv(t, "secret", nil)
	if w := do(t, e.router, http.MethodGet, "/posts", nil); w.Code != http.StatusOK {
		t.Errorf("public route status = %d, want 200", w.Code)
	}
}

func TestSSEEvents_AuthProtected(t *testing.T) {
	sseHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
	})
	e := testEnvWithSSE(t, "tok", nil, sseHandler)

	if w := do(t, e.router, http.MethodGet, "/events", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("SSE without token = %d, want 401", w.Code)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("SSE with valid token = %d, want 200", w.Code)
	}
}
