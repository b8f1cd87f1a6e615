// Package v1 implements the read-only v1 status API.
package v1

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/groupnom/overture-import/domain/store"
	"github.com/groupnom/overture-import/infrastructure/api/jsonapi"
)

// DefaultPageSize is the default number of items per page.
const DefaultPageSize = 20

// MaxPageSize is the maximum allowed page size.
const MaxPageSize = 100

// PaginationParams holds pagination parameters parsed from query strings.
type PaginationParams struct {
	page     int
	pageSize int
}

// ParsePagination reads page and page_size from the request. Missing or
// invalid values fall back to page 1 and DefaultPageSize; page_size is
// capped at MaxPageSize.
func ParsePagination(r *http.Request) PaginationParams {
	params := PaginationParams{page: 1, pageSize: DefaultPageSize}

	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		if page, err := strconv.Atoi(pageStr); err == nil && page >= 1 {
			params.page = page
		}
	}
	if sizeStr := r.URL.Query().Get("page_size"); sizeStr != "" {
		if size, err := strconv.Atoi(sizeStr); err == nil && size >= 1 {
			params.pageSize = min(size, MaxPageSize)
		}
	}
	return params
}

// Page returns the page number (1-indexed).
func (p PaginationParams) Page() int { return p.page }

// PageSize returns the page size.
func (p PaginationParams) PageSize() int { return p.pageSize }

// Offset returns the offset for database queries.
func (p PaginationParams) Offset() int {
	return (p.page - 1) * p.pageSize
}

// Options returns store options for database pagination.
func (p PaginationParams) Options() []store.Option {
	return []store.Option{store.WithLimit(p.pageSize), store.WithOffset(p.Offset())}
}

func (p PaginationParams) totalPages(totalCount int64) int {
	return (int(totalCount) + p.pageSize - 1) / p.pageSize
}

// PaginationMeta builds a JSON:API meta object from pagination params and total count.
func PaginationMeta(params PaginationParams, totalCount int64) *jsonapi.Meta {
	return &jsonapi.Meta{
		"page":        params.Page(),
		"page_size":   params.PageSize(),
		"total_count": totalCount,
		"total_pages": params.totalPages(totalCount),
	}
}

// PaginationLinks builds JSON:API links from the request, params, and total count.
func PaginationLinks(r *http.Request, params PaginationParams, totalCount int64) *jsonapi.Links {
	totalPages := params.totalPages(totalCount)

	buildURL := func(page int) string {
		q := r.URL.Query()
		q.Set("page", strconv.Itoa(page))
		q.Set("page_size", strconv.Itoa(params.PageSize()))
		return fmt.Sprintf("%s?%s", r.URL.Path, q.Encode())
	}

	links := jsonapi.Links{
		Self:  buildURL(params.Page()),
		First: buildURL(1),
	}
	if totalPages > 0 {
		links.Last = buildURL(totalPages)
	}
	if params.Page() > 1 {
		links.Prev = buildURL(params.Page() - 1)
	}
	if params.Page() < totalPages {
		links.Next = buildURL(params.Page() + 1)
	}
	return &links
}
