package listing

import (
	"net/url"
	"strconv"
	"strings"
)

// DefaultPerPage is used when no page size is configured.
const DefaultPerPage = 10

// PageSizes lists the page sizes offered by list views.
var PageSizes = []int{5, 10, 25, 50}

// Query holds the table state carried in the URL.
type Query struct {
	Search  string
	Status  string
	Page    int
	PerPage int
}

// ParseQuery reads search, status, page and per_page from values.
func ParseQuery(values url.Values, defaultPerPage int) Query {
	if defaultPerPage <= 0 {
		defaultPerPage = DefaultPerPage
	}
	q := Query{
		Search:  strings.TrimSpace(values.Get("search")),
		Status:  strings.TrimSpace(values.Get("status")),
		Page:    1,
		PerPage: defaultPerPage,
	}
	if page, err := strconv.Atoi(values.Get("page")); err == nil && page > 0 {
		q.Page = page
	}
	if perPage, err := strconv.Atoi(values.Get("per_page")); err == nil && allowedPageSize(perPage) {
		q.PerPage = perPage
	}
	return q
}

// Values encodes q back into URL parameters, omitting defaults.
func (q Query) Values() url.Values {
	values := url.Values{}
	if q.Search != "" {
		values.Set("search", q.Search)
	}
	if q.Status != "" {
		values.Set("status", q.Status)
	}
	if q.Page > 1 {
		values.Set("page", strconv.Itoa(q.Page))
	}
	if q.PerPage > 0 {
		values.Set("per_page", strconv.Itoa(q.PerPage))
	}
	return values
}

// Encode returns the query string for q.
func (q Query) Encode() string {
	return q.Values().Encode()
}

// WithPage returns a copy of q pointing at page.
func (q Query) WithPage(page int) Query {
	q.Page = page
	return q
}

func allowedPageSize(n int) bool {
	for _, size := range PageSizes {
		if size == n {
			return true
		}
	}
	return false
}
