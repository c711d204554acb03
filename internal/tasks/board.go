package tasks

import (
	"sync"
	"time"
)

// Board is the view state over a store: the active criteria, the current
// page and a fixed page size. The visible page is recomputed on every View.
type Board struct {
	mu       sync.Mutex
	store    *Store
	criteria FilterCriteria
	page     int
	limit    int
}

// NewBoard creates a board on page 1 with default criteria.
func NewBoard(store *Store, limit int) (*Board, error) {
	if limit < 1 {
		return nil, ErrInvalidLimit
	}
	return &Board{
		store:    store,
		criteria: DefaultCriteria(),
		page:     1,
		limit:    limit,
	}, nil
}

// Criteria returns the active filter criteria.
func (b *Board) Criteria() FilterCriteria {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.criteria
}

// CurrentPage returns the active page number.
func (b *Board) CurrentPage() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.page
}

// SetFilters merges p into the criteria and goes back to the first page.
func (b *Board) SetFilters(p FilterPatch) FilterCriteria {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.criteria = b.criteria.Merge(p)
	b.page = 1
	return b.criteria
}

// ClearFilters restores the default criteria and goes back to the first page.
func (b *Board) ClearFilters() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.criteria = DefaultCriteria()
	b.page = 1
}

// SetPage selects the page to show. The page is not clamped here.
func (b *Board) SetPage(page int) error {
	if page < 1 {
		return ErrInvalidPage
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.page = page
	return nil
}

// View filters the current collection and returns the active page.
func (b *Board) View(now time.Time) (Page, error) {
	b.mu.Lock()
	criteria, page, limit := b.criteria, b.page, b.limit
	b.mu.Unlock()

	return Query(b.store.List(), criteria, page, limit, now)
}
