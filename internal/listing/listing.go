// Package listing filters and pages item lists for display.
package listing

import (
	"fmt"
	"strings"

	"github.com/icdts/itemboard/internal/models"
)

// DefaultPageSize is used when a non-positive size is passed to Paginate.
const DefaultPageSize = 5

// Filter keeps items whose name contains query, ignoring case. An empty
// query keeps everything.
func Filter(items []models.Item, query string) []models.Item {
	if query == "" {
		return items
	}
	needle := strings.ToLower(query)

	out := make([]models.Item, 0, len(items))
	for _, it := range items {
		if strings.Contains(strings.ToLower(it.Name), needle) {
			out = append(out, it)
		}
	}
	return out
}

// Page is one page of a list.
type Page struct {
	Items      []models.Item
	Number     int
	Size       int
	TotalItems int
	TotalPages int
	HasPrev    bool
	HasNext    bool
}

// Paginate returns page number (1-based) of items. The number is clamped to
// the pages that exist; an empty list has a single empty page.
func Paginate(items []models.Item, number, size int) Page {
	if size <= 0 {
		size = DefaultPageSize
	}

	total := len(items)
	pages := (total + size - 1) / size
	number = Clamp(number, pages)

	start := (number - 1) * size
	end := min(start+size, total)
	start = min(start, end)

	return Page{
		Items:      items[start:end],
		Number:     number,
		Size:       size,
		TotalItems: total,
		TotalPages: pages,
		HasPrev:    number > 1,
		HasNext:    number < pages,
	}
}

// Clamp bounds a page number to [1, max(pages, 1)].
func Clamp(number, pages int) int {
	return max(1, min(number, max(pages, 1)))
}

// Prev is the page before p, or p's own number on the first page.
func (p Page) Prev() int {
	if p.HasPrev {
		return p.Number - 1
	}
	return p.Number
}

// Next is the page after p, or p's own number on the last page.
func (p Page) Next() int {
	if p.HasNext {
		return p.Number + 1
	}
	return p.Number
}

// Display renders "Page X of Y", counting an empty list as one page.
func (p Page) Display() string {
	return fmt.Sprintf("Page %d of %d", p.Number, max(p.TotalPages, 1))
}
