package listing

import (
	"github.com/vivionix/vivionix-admin/internal/shared"
)

// windowSize is the number of page links shown around the current page.
const windowSize = 5

// Page is one slice of a filtered collection plus navigation metadata.
type Page[T any] struct {
	Items []T
	shared.Pagination
	From  int
	To    int
	Links []int
}

// HasPrev reports whether a previous page exists.
func (p Page[T]) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether a following page exists.
func (p Page[T]) HasNext() bool { return p.Page < p.TotalPages }

// PrevPage returns the previous page number.
func (p Page[T]) PrevPage() int { return p.Page - 1 }

// NextPage returns the following page number.
func (p Page[T]) NextPage() int { return p.Page + 1 }

// Paginate cuts items into pages of perPage and returns the requested one.
// Out-of-range pages clamp to the nearest valid page; an empty collection
// yields a single empty page.
func Paginate[T any](items []T, page, perPage int) Page[T] {
	meta := shared.NewPagination(page, perPage, len(items)).Clamp()
	start := meta.Offset()
	end := start + meta.PerPage
	if end > len(items) {
		end = len(items)
	}
	out := Page[T]{Pagination: meta, Items: items[start:end]}
	if len(items) > 0 {
		out.From = start + 1
		out.To = end
	}
	out.Links = window(meta.Page, meta.TotalPages)
	return out
}

func window(current, total int) []int {
	first := current - windowSize/2
	if first < 1 {
		first = 1
	}
	last := first + windowSize - 1
	if last > total {
		last = total
		first = last - windowSize + 1
		if first < 1 {
			first = 1
		}
	}
	links := make([]int, 0, last-first+1)
	for i := first; i <= last; i++ {
		links = append(links, i)
	}
	return links
}
