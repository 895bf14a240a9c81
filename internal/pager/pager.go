// Package pager drives offset pagination for list views.
package pager

import (
	"context"
	"sync"
)

const DefaultPageSize = 12

// FetchFunc loads limit items starting at offset. Failures are expected to
// surface as an empty slice.
type FetchFunc[T any] func(ctx context.Context, offset, limit int) []T

// Pager accumulates pages. A page shorter than PageSize ends the listing.
type Pager[T any] struct {
	mu       sync.Mutex
	fetch    FetchFunc[T]
	pageSize int
	page     int
	items    []T
	hasMore  bool
}

func New[T any](pageSize int, fetch FetchFunc[T]) *Pager[T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Pager[T]{fetch: fetch, pageSize: pageSize}
}

// LoadInitial replaces the items with the first page.
func (p *Pager[T]) LoadInitial(ctx context.Context) []T {
	p.mu.Lock()
	defer p.mu.Unlock()
	items := p.fetch(ctx, 0, p.pageSize)
	p.items = append([]T(nil), items...)
	p.page = 1
	p.hasMore = len(items) == p.pageSize
	return p.items
}

// LoadMore appends the next page and returns only the new items. It does
// nothing once a short page has been seen.
func (p *Pager[T]) LoadMore(ctx context.Context) []T {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.hasMore {
		return nil
	}
	next := p.page + 1
	items := p.fetch(ctx, p.page*p.pageSize, p.pageSize)
	p.items = append(p.items, items...)
	p.page = next
	p.hasMore = len(items) == p.pageSize
	return items
}

// Reset switches to a new query (search text or sort order) and loads its first page.
func (p *Pager[T]) Reset(ctx context.Context, fetch FetchFunc[T]) []T {
	p.mu.Lock()
	p.fetch = fetch
	p.mu.Unlock()
	return p.LoadInitial(ctx)
}

func (p *Pager[T]) Page() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.page
}

func (p *Pager[T]) PageSize() int { return p.pageSize }

func (p *Pager[T]) HasMore() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hasMore
}

// Items returns a copy of everything loaded so far.
func (p *Pager[T]) Items() []T {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]T(nil), p.items...)
}
