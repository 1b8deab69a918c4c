package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPagination(t *testing.T) {
	p := NewPagination(3, 20, 41)
	assert.Equal(t, Pagination{Page: 3, PerPage: 20, Total: 41, TotalPages: 3}, p)
	assert.Equal(t, 40, p.Offset())

	p = NewPagination(0, 0, 0)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, DefaultPerPage, p.PerPage)
	assert.Zero(t, p.TotalPages)
}

func TestPaginationClamp(t *testing.T) {
	assert.Equal(t, 2, NewPagination(9, 10, 15).Clamp().Page)
	empty := NewPagination(4, 10, 0).Clamp()
	assert.Equal(t, 1, empty.Page)
	assert.Equal(t, 1, empty.TotalPages)
}
