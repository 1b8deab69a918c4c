// Package listing filters, searches and paginates collections in memory, the way
// the admin tables do after fetching a whole collection from the API.
package listing

import (
	"strings"

	"golang.org/x/text/cases"
)

// Filter keeps the items whose searchable text contains q.Search and whose
// status equals q.Status. Both comparisons ignore case. Order is preserved.
func Filter[T any](items []T, q Query, text func(T) []string, status func(T) string) []T {
	needle := fold(strings.TrimSpace(q.Search))
	wantStatus := fold(strings.TrimSpace(q.Status))
	if needle == "" && wantStatus == "" {
		return items
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		if wantStatus != "" && status != nil && fold(status(item)) != wantStatus {
			continue
		}
		if needle != "" && !matches(item, needle, text) {
			continue
		}
		out = append(out, item)
	}
	return out
}

// Contains reports whether haystack contains needle ignoring case.
func Contains(haystack, needle string) bool {
	return strings.Contains(fold(haystack), fold(needle))
}

func matches[T any](item T, needle string, text func(T) []string) bool {
	if text == nil {
		return false
	}
	for _, field := range text(item) {
		if field == "" {
			continue
		}
		if strings.Contains(fold(field), needle) {
			return true
		}
	}
	return false
}

// fold builds a fresh Caser per call; cases.Caser keeps state and is not safe for concurrent use.
func fold(s string) string {
	if s == "" {
		return s
	}
	return cases.Fold().String(s)
}
