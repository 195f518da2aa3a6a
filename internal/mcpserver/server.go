// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes read-only blog tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/adyingdeath/blog/internal/apperr"
	"github.com/adyingdeath/blog/internal/listing"
	"github.com/adyingdeath/blog/internal/models"
	"github.com/adyingdeath/blog/internal/site"
)

const defaultRecent = 3

// Server wraps the MCP server with blog tools.
type Server struct {
	mcp   *server.MCPServer
	sites *site.Holder
}

// New creates a new MCP server with all blog tools registered.
func New(sites *site.Holder, version string) *Server {
	s := &Server{sites: sites}

	s.mcp = server.NewMCPServer(
		"blog",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_posts",
		mcp.WithDescription("List posts, most recent first, one page at a time."),
		mcp.WithNumber("page", mcp.Description("1-indexed page number (default 1)")),
	), s.listPosts)

	s.mcp.AddTool(mcp.NewTool("read_post",
		mcp.WithDescription("Read a post's front-matter and raw Markdown body."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Normalized post path (e.g. 2024/hello)")),
	), s.readPost)

	s.mcp.AddTool(mcp.NewTool("recent_posts",
		mcp.WithDescription("The featured post followed by the most recent others."),
		mcp.WithNumber("count", mcp.Description("How many recent posts to return after the featured one (default 3)")),
	), s.recentPosts)

	s.mcp.AddResource(
		mcp.NewResource(PostFormatURI, "Post Format",
			mcp.WithResourceDescription("Front-matter schema and body conventions of blog posts."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readPostFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

type postListResult struct {
	Posts      []models.PostSummary `json:"posts"`
	Page       int                  `json:"page"`
	TotalPages int                  `json:"total_pages"`
}

type readPostResult struct {
	models.PostSummary
	Content string `json:"content"`
}

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}

func (s *Server) listPosts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	page, err := s.sites.Load().Page(req.GetInt("page", 1))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(postListResult{
		Posts:      models.Summaries(page.Posts),
		Page:       page.Number,
		TotalPages: page.TotalPages,
	}), nil
}

func (s *Server) readPost(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	post, err := s.sites.Load().Post(path)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(readPostResult{
		PostSummary: post.Summarize(),
		Content:     post.FrontMatter.Content,
	}), nil
}

func (s *Server) recentPosts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	n := req.GetInt("count", defaultRecent)
	if n < 0 {
		return mcp.NewToolResultError("count must not be negative"), nil
	}
	st := s.sites.Load()
	chrono := st.Chronological()
	featured := listing.Featured(chrono, st.Settings().FeaturedPath)
	if featured == nil {
		return mcp.NewToolResultText("no posts"), nil
	}
	posts := append([]*models.Post{featured}, listing.Recent(chrono, featured, n)...)
	return jsonResult(models.Summaries(posts)), nil
}

func (s *Server) readPostFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      PostFormatURI,
			MIMEType: "text/markdown",
			Text:     PostFormat,
		},
	}, nil
}
