// Package pagination cuts offset pages out of in-memory listings.
package pagination

import "fmt"

const (
	DefaultSize = 20
	MaxSize     = 100
)

// Request is bound from the page and size query parameters. Zero values
// select the first page and DefaultSize.
type Request struct {
	Page int `json:"page" query:"page"`
	Size int `json:"size" query:"size"`
}

// Validate rejects negative values and sizes above MaxSize.
func (r Request) Validate() error {
	switch {
	case r.Page < 0:
		return fmt.Errorf("page must not be negative, got %d", r.Page)
	case r.Size < 0:
		return fmt.Errorf("size must not be negative, got %d", r.Size)
	case r.Size > MaxSize:
		return fmt.Errorf("size must be at most %d, got %d", MaxSize, r.Size)
	}
	return nil
}

func (r Request) withDefaults() Request {
	if r.Page == 0 {
		r.Page = 1
	}
	if r.Size == 0 {
		r.Size = DefaultSize
	}
	return r
}

type Page[T any] struct {
	Items   []T  `json:"items"`
	Total   int  `json:"total"`
	Page    int  `json:"page"`
	Size    int  `json:"size"`
	HasMore bool `json:"has_more"`
}

// Paginate returns the requested page of all. A page past the end is empty,
// never nil. The request is expected to be valid.
func Paginate[T any](all []T, req Request) Page[T] {
	req = req.withDefaults()

	start := min((req.Page-1)*req.Size, len(all))
	end := min(start+req.Size, len(all))
	items := make([]T, end-start)
	copy(items, all[start:end])

	return Page[T]{
		Items:   items,
		Total:   len(all),
		Page:    req.Page,
		Size:    req.Size,
		HasMore: end < len(all),
	}
}
