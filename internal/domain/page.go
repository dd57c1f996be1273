package domain

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	DefaultSortBy   = "created"
)

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// PageRequest carries pagination and sorting parameters. Zero values
// are replaced with defaults by Normalize; callers pass the per-resource
// set of sortable fields.
type PageRequest struct {
	Page     int
	PageSize int
	SortBy   string
	SortDir  SortDirection
}

// Normalize clamps the request to valid bounds: page >= 1, page size
// between 1 and MaxPageSize, sort field restricted to the allowed set
// and direction to asc/desc (descending by default).
func (p PageRequest) Normalize(allowedSortFields map[string]bool) PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	if !allowedSortFields[p.SortBy] {
		p.SortBy = DefaultSortBy
	}
	if p.SortDir != SortAsc {
		p.SortDir = SortDesc
	}
	return p
}

// Offset returns the number of rows to skip for the requested page.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Page is one slice of a larger result set.
type Page[T any] struct {
	Data       []T `json:"data"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
}

// NewPage assembles a Page from the rows of a normalized request.
// TotalPages is the ceiling of total divided by the page size.
func NewPage[T any](data []T, total int, req PageRequest) Page[T] {
	if data == nil {
		data = []T{}
	}
	return Page[T]{
		Data:       data,
		Total:      total,
		Page:       req.Page,
		PageSize:   req.PageSize,
		TotalPages: (total + req.PageSize - 1) / req.PageSize,
	}
}
