package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPage(t *testing.T) {
	tests := []struct {
		name         string
		number, size int
		want         Page
		offset       int
	}{
		{"defaults", 0, 0, Page{Number: 1, Size: 20}, 0},
		{"third page", 3, 10, Page{Number: 3, Size: 10}, 20},
		{"size capped", 1, 500, Page{Number: 1, Size: 100}, 0},
		{"negative number", -4, 5, Page{Number: 1, Size: 5}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := NewPage(tt.number, tt.size)
			assert.Equal(t, tt.want, page)
			assert.Equal(t, tt.offset, page.Offset())
		})
	}
}

func TestPaginatedPages(t *testing.T) {
	assert.Equal(t, 0, Paginated[int]{Total: 0, Page: NewPage(1, 20)}.Pages())
	assert.Equal(t, 1, Paginated[int]{Total: 20, Page: NewPage(1, 20)}.Pages())
	assert.Equal(t, 3, Paginated[int]{Total: 41, Page: NewPage(1, 20)}.Pages())
}
