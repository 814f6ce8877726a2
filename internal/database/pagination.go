package database

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Page is a 1-based page request.
type Page struct {
	Number int
	Size   int
}

// NewPage clamps number and size into the accepted range.
func NewPage(number, size int) Page {
	if number < 1 {
		number = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return Page{Number: number, Size: size}
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// Paginated is one page of results plus the total across all pages.
type Paginated[T any] struct {
	Items []T
	Total int64
	Page  Page
}

func (p Paginated[T]) Pages() int {
	if p.Page.Size == 0 {
		return 0
	}
	return int((p.Total + int64(p.Page.Size) - 1) / int64(p.Page.Size))
}
