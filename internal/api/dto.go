package api

import (
	"github.com/adyingdeath/blog/internal/codeblock"
	"github.com/adyingdeath/blog/internal/models"
)

// PostListResponse is one listing page.
type PostListResponse struct {
	Posts      []models.PostSummary `json:"posts" validate:"required"`
	Page       int                  `json:"page" example:"1" validate:"required"`
	TotalPages int                  `json:"total_pages" example:"3" validate:"required"`
	Total      int                  `json:"total" example:"25" validate:"required"`
}

// PostDetail is the full view of a single post.
type PostDetail struct {
	models.PostSummary
	HTML       string                 `json:"html" validate:"required"`
	TOC        []models.TOCEntry      `json:"toc" validate:"required"`
	CodeBlocks []codeblock.Annotation `json:"code_blocks" validate:"required"`
	Checksum   string                 `json:"checksum" validate:"required"`
}

// HomeResponse is the featured post and the recent posts after it.
type HomeResponse struct {
	Featured *models.PostSummary `json:"featured"`
	Recent   []models.PostSummary `json:"recent" validate:"required"`
}

// ProjectsResponse wraps the portfolio entries.
type ProjectsResponse struct {
	Projects []models.Project `json:"projects" validate:"required"`
}
