// Package browser holds the view state of an item browser: search text,
// current page, the item under edit and the new-item input.
package browser

import (
	"slices"

	"github.com/icdts/itemboard/internal/listing"
	"github.com/icdts/itemboard/internal/models"
)

// State is not safe for concurrent use; it belongs to one UI loop.
type State struct {
	items    []models.Item
	pageSize int

	search string
	page   int

	editing   bool
	editingID int64
	editValue string

	newItem string
}

func NewState(pageSize int) *State {
	if pageSize <= 0 {
		pageSize = listing.DefaultPageSize
	}
	return &State{pageSize: pageSize, page: 1}
}

// Replace installs the canonical list and keeps the page in range. An edit
// of an item that no longer exists is dropped.
func (s *State) Replace(items []models.Item) {
	s.items = items
	if s.editing && s.find(s.editingID) < 0 {
		s.CancelEdit()
	}
	s.page = s.Visible().Number
}

func (s *State) Items() []models.Item { return s.items }

func (s *State) Search() string { return s.search }

// SetSearch changes the filter and returns to the first page.
func (s *State) SetSearch(q string) {
	s.search = q
	s.page = 1
}

// Visible is the current page of the filtered list.
func (s *State) Visible() listing.Page {
	return listing.Paginate(listing.Filter(s.items, s.search), s.page, s.pageSize)
}

// GoTo jumps to page n, clamped to the pages that exist.
func (s *State) GoTo(n int) {
	s.page = n
	s.page = s.Visible().Number
}

func (s *State) Next() { s.page = s.Visible().Next() }

func (s *State) Prev() { s.page = s.Visible().Prev() }

// StartEdit marks id as under edit with its current name as the draft.
// Unknown ids are ignored.
func (s *State) StartEdit(id int64) {
	i := s.find(id)
	if i < 0 {
		return
	}
	s.editing = true
	s.editingID = id
	s.editValue = s.items[i].Name
}

func (s *State) SetEditValue(v string) { s.editValue = v }

func (s *State) CancelEdit() {
	s.editing = false
	s.editingID = 0
	s.editValue = ""
}

// Editing returns the id under edit and its draft.
func (s *State) Editing() (id int64, draft string, ok bool) {
	return s.editingID, s.editValue, s.editing
}

func (s *State) NewItem() string { return s.newItem }

func (s *State) SetNewItem(v string) { s.newItem = v }

func (s *State) find(id int64) int {
	return slices.IndexFunc(s.items, func(it models.Item) bool { return it.ID == id })
}
