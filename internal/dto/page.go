package dto

import "blogapi/internal/query"

// PageResponse is the paged listing envelope. Page is one-based.
type PageResponse[T any] struct {
	Page  int   `json:"page"`
	Pages int   `json:"pages"`
	Size  int   `json:"size"`
	Total int64 `json:"total"`
	Items []T   `json:"items"`
}

// NewPageResponse assembles a page envelope from a zero-based page
// request and its results.
func NewPageResponse[T any](page query.PageRequest, total int64, items []T) PageResponse[T] {
	return PageResponse[T]{
		Page:  page.Page + 1,
		Pages: query.Pages(total, page.Size),
		Size:  page.Size,
		Total: total,
		Items: items,
	}
}
