package service

import (
	"context"
	"sync"

	"github.com/mmcdole/akiba/internal/domain"
)

// PageFunc fetches one page (1-based) of a remote listing.
type PageFunc[T any] func(ctx context.Context, page int) ([]T, domain.Pagination, error)

// Pager merges successive pages of a remote listing for infinite scroll.
// Items whose key was already seen are skipped, so one id is never shown twice.
type Pager[T any] struct {
	fetch PageFunc[T]
	key   func(T) int

	mu      sync.Mutex
	items   []T
	seen    map[int]struct{}
	page    int
	hasNext bool
}

// NewPager creates a pager positioned before the first page.
func NewPager[T any](fetch PageFunc[T], key func(T) int) *Pager[T] {
	p := &Pager[T]{fetch: fetch, key: key}
	p.Reset()
	return p
}

// Next fetches the following page and returns only the newly added items.
// It returns nil without a request once the listing is exhausted. A failed
// fetch leaves the pager unchanged so the same page can be retried.
func (p *Pager[T]) Next(ctx context.Context) ([]T, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.hasNext {
		return nil, nil
	}

	items, pagination, err := p.fetch(ctx, p.page+1)
	if err != nil {
		return nil, err
	}

	var added []T
	for _, it := range items {
		k := p.key(it)
		if _, dup := p.seen[k]; dup {
			continue
		}
		p.seen[k] = struct{}{}
		added = append(added, it)
	}

	p.items = append(p.items, added...)
	p.page++
	p.hasNext = pagination.HasNextPage && len(items) > 0
	return added, nil
}

// Items returns everything loaded so far.
func (p *Pager[T]) Items() []T {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]T, len(p.items))
	copy(out, p.items)
	return out
}

// HasNext reports whether another page can be fetched.
func (p *Pager[T]) HasNext() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hasNext
}

// Page returns the number of pages loaded.
func (p *Pager[T]) Page() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.page
}

// Reset drops loaded items for a refresh from the first page.
func (p *Pager[T]) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.items = nil
	p.seen = make(map[int]struct{})
	p.page = 0
	p.hasNext = true
}

// Collect fetches up to maxPages pages (all when maxPages <= 0).
func (p *Pager[T]) Collect(ctx context.Context, maxPages int) ([]T, error) {
	for i := 0; maxPages <= 0 || i < maxPages; i++ {
		if !p.HasNext() {
			break
		}
		if _, err := p.Next(ctx); err != nil {
			return p.Items(), err
		}
	}
	return p.Items(), nil
}
