package mcpserver

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/adyingdeath/blog/internal/compiler"
	"github.com/adyingdeath/blog/internal/models"
	"github.com/adyingdeath/blog/internal/site"
	"github.com/adyingdeath/blog/internal/testutil"
)

func testServer(t *testing.T, seed func(dir string)) *Server {
	t.Helper()

	dir, store := testutil.TestContent(t)
	if seed != nil {
		seed(dir)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := site.NewBuilder(store, compiler.New(), logger,
		site.WithSettings(site.Settings{PageSize: 2}),
	).Build(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	return New(site.NewHolder(s), "test")
}

func seed(t *testing.T) func(string) {
	return func(dir string) {
		testutil.WritePost(t, dir, "a.md", "A", "2024-01-01")
		testutil.WritePost(t, dir, "b.md", "B", "2024-02-01")
		testutil.WritePost(t, dir, "c.md", "C", "2024-03-01")
	}
}

func callTool(t *testing.T, srv *Server, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper, so call the handlers.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "list_posts":
		result, err = srv.listPosts(ctx, req)
	case "read_post":
		result, err = srv.readPost(ctx, req)
	case "recent_posts":
		result, err = srv.recentPosts(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestListPosts(t *testing.T) {
	srv := testServer(t, seed(t))

	r := callTool(t, srv, "list_posts", map[string]any{})
	var got postListResult
	if err := json.Unmarshal([]byte(resultText(r)), &got); err != nil {
		t.Fatalf("decode %q: %v", resultText(r), err)
	}
	if got.TotalPages != 2 || len(got.Posts) != 2 || got.Posts[0].Path != "c" {
		t.Errorf("page 1 = %+v", got)
	}

	r = callTool(t, srv, "list_posts", map[string]any{"page": 2})
	if err := json.Unmarshal([]byte(resultText(r)), &got); err != nil {
		t.Fatal(err)
	}
	if len(got.Posts) != 1 || got.Posts[0].Path != "a" {
		t.Errorf("page 2 = %+v", got)
	}

	r = callTool(t, srv, "list_posts", map[string]any{"page": 5})
	if !r.IsError {
		t.Error("expected error for out of range page")
	}
}

func TestReadPost(t *testing.T) {
	srv := testServer(t, seed(t))
	r := callTool(t, srv, "read_post", map[string]any{"path": "b"})
	if r.IsError {
		t.Fatalf("read_post error: %s", resultText(r))
	}
	var got readPostResult
	if err := json.Unmarshal([]byte(resultText(r)), &got); err != nil {
		t.Fatal(err)
	}
	if got.Title != "B" || !strings.Contains(got.Content, "Body of B.") {
		t.Errorf("post = %+v", got)
	}
}

func TestReadPostMissing(t *testing.T) {
	srv := testServer(t, nil)
	r := callTool(t, srv, "read_post", map[string]any{"path": "nope"})
	if !r.IsError {
		t.Error("expected error for missing post")
	}
	r = callTool(t, srv, "read_post", map[string]any{})
	if !r.IsError {
		t.Error("expected error for missing path argument")
	}
}

func TestRecentPosts(t *testing.T) {
	srv := testServer(t, seed(t))
	r := callTool(t, srv, "recent_posts", map[string]any{"count": 1})
	var got []models.PostSummary
	if err := json.Unmarshal([]byte(resultText(r)), &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Path != "c" || got[1].Path != "b" {
		t.Errorf("recent = %+v", got)
	}

	empty := testServer(t, nil)
	if text := resultText(callTool(t, empty, "recent_posts", map[string]any{})); text != "no posts" {
		t.Errorf("empty recent = %q", text)
	}
}

func TestPostFormatResource(t *testing.T) {
	srv := testServer(t, nil)
	contents, err := srv.readPostFormatResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatal(err)
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok || tc.URI != PostFormatURI || !strings.Contains(tc.Text, "title:") {
		t.Errorf("resource = %+v", contents[0])
	}
}
