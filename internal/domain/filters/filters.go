package filters

import "math"

const DefaultPageSize = 10

// Pagination describes one page of an upstream result set.
type Pagination struct {
	Current      int `json:"current"`
	Total        int `json:"total"`
	TotalResults int `json:"totalResults"`
}

// TotalPages is ceil(totalCount / pageSize). Non-positive page sizes fall back
// to DefaultPageSize.
func TotalPages(totalCount, pageSize int) int {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if totalCount <= 0 {
		return 0
	}
	return (totalCount + pageSize - 1) / pageSize
}

func NewPagination(page, totalCount, pageSize int) Pagination {
	return Pagination{
		Current:      page,
		Total:        TotalPages(totalCount, pageSize),
		TotalResults: totalCount,
	}
}

// Filters holds page/limit pairs for stored collections.
type Filters struct {
	Page     int
	PageSize int
}

func (f Filters) Limit() int {
	return f.PageSize
}

// Offset saturates at math.MaxInt instead of overflowing on huge pages.
func (f Filters) Offset() int {
	if f.Page <= 1 || f.PageSize <= 0 {
		return 0
	}
	if f.Page-1 > math.MaxInt/f.PageSize {
		return math.MaxInt
	}
	return (f.Page - 1) * f.PageSize
}

// ListPagination is the envelope used for paged user listings.
type ListPagination struct {
	Current int  `json:"current"`
	Pages   int  `json:"pages"`
	Total   int  `json:"total"`
	HasNext bool `json:"hasNext"`
	HasPrev bool `json:"hasPrev"`
}

func NewListPagination(f Filters, total int) ListPagination {
	return ListPagination{
		Current: f.Page,
		Pages:   TotalPages(total, f.PageSize),
		Total:   total,
		HasNext: f.Offset() < total-f.PageSize,
		HasPrev: f.Page > 1,
	}
}
