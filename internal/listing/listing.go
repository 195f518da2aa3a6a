// Package listing derives ordered views of compiled posts: the
// reverse-chronological listing, fixed-size pages and the featured/recent
// selection used by the home page.
package listing

import (
	"fmt"
	"slices"

	"github.com/adyingdeath/blog/internal/apperr"
	"github.com/adyingdeath/blog/internal/models"
)

// DefaultPageSize is the number of posts per listing page.
const DefaultPageSize = 10

// Chronological returns a copy of posts ordered most recent first. Posts with
// equal dates keep their relative order.
func Chronological(posts []*models.Post) []*models.Post {
	out := slices.Clone(posts)
	slices.SortStableFunc(out, func(a, b *models.Post) int {
		return b.FrontMatter.Published.Compare(a.FrontMatter.Published)
	})
	return out
}

// Page is one slice of a listing.
type Page struct {
	Number     int            `json:"page"`
	Size       int            `json:"size"`
	TotalPages int            `json:"total_pages"`
	Total      int            `json:"total"`
	Posts      []*models.Post `json:"posts"`
}

// HasNext reports whether a page follows p.
func (p Page) HasNext() bool { return p.Number < p.TotalPages }

// HasPrev reports whether a page precedes p.
func (p Page) HasPrev() bool { return p.Number > 1 }

// TotalPages returns the number of pages needed for total items. An empty
// listing still has one (empty) page.
func TotalPages(total, size int) int {
	if size <= 0 {
		size = DefaultPageSize
	}
	if total == 0 {
		return 1
	}
	return (total + size - 1) / size
}

// Paginate returns the 1-indexed page of posts. The last page may be partial.
// A page outside [1, TotalPages] yields an empty page and
// apperr.ErrPageOutOfRange.
func Paginate(posts []*models.Post, page, size int) (Page, error) {
	if size <= 0 {
		size = DefaultPageSize
	}
	p := Page{
		Number:     page,
		Size:       size,
		Total:      len(posts),
		TotalPages: TotalPages(len(posts), size),
		Posts:      []*models.Post{},
	}
	if page < 1 || page > p.TotalPages {
		return p, fmt.Errorf("page %d of %d: %w", page, p.TotalPages, apperr.ErrPageOutOfRange)
	}
	start := (page - 1) * size
	end := min(start+size, len(posts))
	if start < end {
		p.Posts = slices.Clone(posts[start:end])
	}
	return p, nil
}

// Featured picks the featured post from a chronological listing: the post at
// override when set and present, else the most recent one. It returns nil for
// an empty listing.
func Featured(chronological []*models.Post, override string) *models.Post {
	if override != "" {
		for _, p := range chronological {
			if p.Path == override {
				return p
			}
		}
	}
	if len(chronological) == 0 {
		return nil
	}
	return chronological[0]
}

// Recent returns up to n posts from a chronological listing, skipping the
// featured post by path. A non-positive n yields an empty slice.
func Recent(chronological []*models.Post, featured *models.Post, n int) []*models.Post {
	n = max(n, 0)
	out := make([]*models.Post, 0, n)
	for _, p := range chronological {
		if len(out) >= n {
			break
		}
		if featured != nil && p.Path == featured.Path {
			continue
		}
		out = append(out, p)
	}
	return out
}
