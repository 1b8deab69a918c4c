package shared

// DefaultPerPage applies when a caller passes a non-positive page size.
const DefaultPerPage = 25

// Pagination describes one page of a listing.
type Pagination struct {
	Page       int
	PerPage    int
	Total      int
	TotalPages int
}

// NewPagination fills in the page count for total rows. The page number is
// kept as given so callers can compute an offset before the total is known.
func NewPagination(page, perPage, total int) Pagination {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if page < 1 {
		page = 1
	}
	return Pagination{Page: page, PerPage: perPage, Total: total, TotalPages: (total + perPage - 1) / perPage}
}

// Clamp moves Page into [1, TotalPages]. An empty listing still has one page.
func (p Pagination) Clamp() Pagination {
	if p.TotalPages < 1 {
		p.TotalPages = 1
	}
	if p.Page > p.TotalPages {
		p.Page = p.TotalPages
	}
	return p
}

// Offset is the index of the first row on the page.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PerPage
}
