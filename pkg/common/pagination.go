package common

import (
	"net/http"
	"strconv"
)

// Sortable fields accepted by list endpoints. Anything else falls back to
// the default sort.
var allowedSortFields = map[string]bool{
	"createdAt": true,
	"updatedAt": true,
}

const (
	DefaultSortField = "updatedAt"
	DefaultSortOrder = "desc"

	defaultPage  = 1
	defaultLimit = 25
	maxLimit     = 100
)

// PaginationParams represents page/limit/sort parameters for list queries
type PaginationParams struct {
	Page   int    `json:"page"`
	Limit  int    `json:"limit"`
	SortBy string `json:"sort_by,omitempty"`
	Order  string `json:"order,omitempty"`
}

// DefaultPaginationParams returns default pagination parameters
func DefaultPaginationParams() PaginationParams {
	return PaginationParams{
		Page:   defaultPage,
		Limit:  defaultLimit,
		SortBy: DefaultSortField,
		Order:  DefaultSortOrder,
	}
}

// ExtractPaginationParams extracts pagination parameters from a request.
// Invalid values never fail the request: page/limit fall back to defaults,
// limit is clamped to the configured maximum, and an unknown sortBy falls
// back to updatedAt desc.
func ExtractPaginationParams(r *http.Request) PaginationParams {
	params := DefaultPaginationParams()

	if page := r.URL.Query().Get("page"); page != "" {
		if p, err := strconv.Atoi(page); err == nil && p > 0 {
			params.Page = p
		}
	}

	if limit := r.URL.Query().Get("limit"); limit != "" {
		if l, err := strconv.Atoi(limit); err == nil && l > 0 {
			if l > maxLimit {
				l = maxLimit
			}
			params.Limit = l
		}
	}

	if sortBy := r.URL.Query().Get("sortBy"); sortBy != "" {
		if allowedSortFields[sortBy] {
			params.SortBy = sortBy
		}
	}

	if order := r.URL.Query().Get("order"); order == "asc" || order == "desc" {
		params.Order = order
	}

	return params
}

// Normalize clamps out-of-range values on params built outside of HTTP
// extraction (direct query construction).
func (p PaginationParams) Normalize() PaginationParams {
	if p.Page < 1 {
		p.Page = defaultPage
	}
	if p.Limit < 1 {
		p.Limit = defaultLimit
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	if !allowedSortFields[p.SortBy] {
		p.SortBy = DefaultSortField
	}
	if p.Order != "asc" && p.Order != "desc" {
		p.Order = DefaultSortOrder
	}
	return p
}

// Offset calculates the offset for store queries
func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// CalculateTotalPages calculates total number of pages
func CalculateTotalPages(total, limit int) int {
	if limit <= 0 {
		return 0
	}
	pages := total / limit
	if total%limit > 0 {
		pages++
	}
	return pages
}

// BuildPaginationMeta builds pagination metadata
func BuildPaginationMeta(page, limit, total int) *PaginationInfo {
	totalPages := CalculateTotalPages(total, limit)

	return &PaginationInfo{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

// PaginatedResult represents a paginated result
type PaginatedResult struct {
	Items      interface{}     `json:"items"`
	Pagination *PaginationInfo `json:"pagination"`
}

// NewPaginatedResult creates a new paginated result
func NewPaginatedResult(items interface{}, page, limit, total int) *PaginatedResult {
	return &PaginatedResult{
		Items:      items,
		Pagination: BuildPaginationMeta(page, limit, total),
	}
}

// CursorPage is the cursor-based pagination envelope used by feed reads
type CursorPage struct {
	Items      interface{} `json:"items"`
	NextCursor string      `json:"next_cursor,omitempty"`
}
