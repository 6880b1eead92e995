// Package query holds paging and sorting inputs shared by repository filters.
package query

import "github.com/orris-inc/warden/internal/shared/constants"

type PageFilter struct {
	Page     int
	PageSize int
}

func (f PageFilter) Offset() int {
	if f.Page <= 0 {
		return 0
	}
	return (f.Page - 1) * f.Limit()
}

func (f PageFilter) Limit() int {
	if f.PageSize <= 0 {
		return constants.DefaultPageSize
	}
	if f.PageSize > constants.MaxPageSize {
		return constants.MaxPageSize
	}
	return f.PageSize
}

// CurrentPage normalises Page to at least 1.
func (f PageFilter) CurrentPage() int {
	if f.Page <= 0 {
		return 1
	}
	return f.Page
}
