package shared

// PageRequest describes a 1-based page of results.
type PageRequest struct {
	Page    int
	PerPage int
}

// Offset returns the number of rows to skip.
func (p PageRequest) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PerPage
}

// TotalPages returns the number of pages needed for total items.
func (p PageRequest) TotalPages(total int64) int {
	if p.PerPage <= 0 {
		return 0
	}
	return int((total + int64(p.PerPage) - 1) / int64(p.PerPage))
}
