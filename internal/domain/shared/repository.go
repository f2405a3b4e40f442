package shared

// Filter is the paging, ordering and matching input shared by list queries.
// Filters holds exact-match column conditions; repositories ignore keys they
// do not recognize.
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
	Filters  map[string]any
}

// DefaultFilter is page 1 of 20, newest first.
func DefaultFilter() Filter {
	return Filter{Page: 1, PageSize: 20, OrderBy: "created_at", OrderDir: "desc", Filters: map[string]any{}}
}

// Offset is the number of rows skipped before Page. Pages start at 1.
func (f Filter) Offset() int {
	if f.Page > 1 && f.PageSize > 0 {
		return (f.Page - 1) * f.PageSize
	}
	return 0
}
