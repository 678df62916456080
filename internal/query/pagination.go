package query

import (
	"errors"
	"fmt"
	"strings"
)

// ErrBadRequest marks pagination input the caller must reject with a
// 400 response.
var ErrBadRequest = errors.New("bad request")

// DefaultPageSize is used when the caller sends no size
const DefaultPageSize = 20

// PageRequest is a validated, zero-based page window with an optional
// sort column.
type PageRequest struct {
	Page   int
	Size   int
	SortBy string
	Desc   bool
}

// Offset returns the row offset of the window
func (p PageRequest) Offset() int {
	return p.Page * p.Size
}

// OrderClause returns an ORDER BY fragment, or "" when no sort column
// was accepted.
func (p PageRequest) OrderClause() string {
	if p.SortBy == "" {
		return ""
	}
	direction := "ASC"
	if p.Desc {
		direction = "DESC"
	}
	return fmt.Sprintf("ORDER BY %s %s", p.SortBy, direction)
}

// BuildPageRequest validates one-based page input and converts it to a
// zero-based window. A sortBy naming a column outside allowedColumns
// is dropped without error and the default order applies.
func BuildPageRequest(page, size int, sortBy, sort string, allowedColumns []string) (PageRequest, error) {
	if page < 1 {
		return PageRequest{}, fmt.Errorf("%w: page must be greater than or equal to 1", ErrBadRequest)
	}
	if size < 1 {
		return PageRequest{}, fmt.Errorf("%w: size must be greater than or equal to 1", ErrBadRequest)
	}

	req := PageRequest{
		Page: page - 1,
		Size: size,
		Desc: strings.EqualFold(sort, "desc"),
	}

	for _, col := range allowedColumns {
		if col == sortBy {
			req.SortBy = sortBy
			break
		}
	}

	return req, nil
}

// Pages returns the page count for a total row count. A zero total
// yields one empty page.
func Pages(total int64, size int) int {
	if size < 1 {
		return 1
	}
	pages := int((total + int64(size) - 1) / int64(size))
	if pages < 1 {
		return 1
	}
	return pages
}
