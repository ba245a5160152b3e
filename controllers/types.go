package controllers

import "math"

// StandardResponse is the envelope for every JSON success body. Meta carries
// per-session status counts, Pagination the admin listing position.
type StandardResponse struct {
	Success    bool            `json:"success"`
	Data       interface{}     `json:"data,omitempty"`
	Meta       interface{}     `json:"meta,omitempty"`
	Pagination *PaginationMeta `json:"pagination,omitempty"`
	Message    string          `json:"message,omitempty"`
}

type PaginationMeta struct {
	CurrentPage int   `json:"currentPage"`
	PageSize    int   `json:"pageSize"`
	TotalItems  int64 `json:"totalItems"`
	TotalPages  int   `json:"totalPages"`
	HasNext     bool  `json:"hasNext"`
}

func newPagination(page, pageSize int, total int64) *PaginationMeta {
	if pageSize < 1 {
		pageSize = 1
	}
	pages := int(math.Ceil(float64(total) / float64(pageSize)))
	return &PaginationMeta{
		CurrentPage: page,
		PageSize:    pageSize,
		TotalItems:  total,
		TotalPages:  pages,
		HasNext:     page < pages,
	}
}
