// Package catalog is the session cache of books, categories and authors.
//
// Books are keyed by work key and the first record seen wins; only Merge can
// refine it. Categories and authors are derived from every listing the
// session observes and are never fetched directly.
package catalog

import (
	"cmp"
	"slices"
	"sync"

	"bookhub/internal/entity"
	"bookhub/internal/platform/metrics"
	"bookhub/internal/platform/openlibrary"
)

type Cache struct {
	mu sync.RWMutex

	books     map[string]entity.Book
	bookOrder []string

	categories map[string]int
	catOrder   []string

	authors     map[string]entity.Author
	authorOrder []string

	metrics *metrics.Collectors
}

func New(m *metrics.Collectors) *Cache {
	c := &Cache{metrics: m}
	c.reset()
	return c
}

func (c *Cache) reset() {
	c.books = map[string]entity.Book{}
	c.bookOrder = nil
	c.categories = map[string]int{}
	c.catOrder = nil
	c.authors = map[string]entity.Author{}
	c.authorOrder = nil
}

// Reset drops everything.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset()
}

// AddBooks inserts unseen books and derives categories and authors from all of them.
func (c *Cache) AddBooks(books []entity.Book) {
	c.observe(books, true)
}

// Observe derives categories and authors without caching the books themselves.
// Search results go through here.
func (c *Cache) Observe(books []entity.Book) {
	c.observe(books, false)
}

func (c *Cache) observe(books []entity.Book, insert bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, b := range books {
		if b.WorkKey == "" {
			continue
		}
		if insert {
			if _, ok := c.books[b.WorkKey]; !ok {
				c.books[b.WorkKey] = b
				c.bookOrder = append(c.bookOrder, b.WorkKey)
			}
		}
		for _, s := range b.Subjects {
			if s == "" {
				continue
			}
			if _, ok := c.categories[s]; !ok {
				c.catOrder = append(c.catOrder, s)
			}
			c.categories[s]++
		}
		if key := authorKey(b); key != "" {
			a, ok := c.authors[key]
			if !ok {
				name := b.Author.Name
				if name == "" {
					name = entity.UnknownAuthor
				}
				a = entity.Author{Key: key, Name: name}
				c.authorOrder = append(c.authorOrder, key)
			}
			a.WorkCount++
			c.authors[key] = a
		}
	}
}

// authorKey is the normalized key of the book's embedded author, or "".
func authorKey(b entity.Book) string {
	if b.Author == nil {
		return ""
	}
	return openlibrary.AuthorKey(b.Author.Key)
}

// Book returns the cached record for key.
func (c *Cache) Book(key string) (entity.Book, bool) {
	c.mu.RLock()
	b, ok := c.books[key]
	c.mu.RUnlock()
	c.metrics.CacheHit("book", ok)
	return b, ok
}

// MergeBook overlays b onto the cached record, inserting it when absent, and
// returns the stored result.
func (c *Cache) MergeBook(b entity.Book) entity.Book {
	c.mu.Lock()
	defer c.mu.Unlock()
	if old, ok := c.books[b.WorkKey]; ok {
		b = old.Merge(b)
	} else {
		c.bookOrder = append(c.bookOrder, b.WorkKey)
	}
	c.books[b.WorkKey] = b
	return b
}

// Books returns cached books in insertion order.
func (c *Cache) Books() []entity.Book {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]entity.Book, 0, len(c.bookOrder))
	for _, k := range c.bookOrder {
		out = append(out, c.books[k])
	}
	return out
}

// Categories are ordered by book count, descending, then by name.
func (c *Cache) Categories() []entity.Category {
	c.mu.RLock()
	out := make([]entity.Category, 0, len(c.catOrder))
	for _, name := range c.catOrder {
		out = append(out, entity.Category{Name: name, BookCount: c.categories[name]})
	}
	c.mu.RUnlock()

	slices.SortStableFunc(out, func(a, b entity.Category) int {
		if n := cmp.Compare(b.BookCount, a.BookCount); n != 0 {
			return n
		}
		return cmp.Compare(a.Name, b.Name)
	})
	c.metrics.CacheHit("categories", len(out) > 0)
	return out
}

// Authors returns authors in first-seen order; limit <= 0 means all.
func (c *Cache) Authors(limit int) []entity.Author {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := len(c.authorOrder)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]entity.Author, 0, n)
	for _, k := range c.authorOrder[:n] {
		out = append(out, c.authors[k])
	}
	c.metrics.CacheHit("authors", len(out) > 0)
	return out
}

// Author looks up key with or without the "/authors/" prefix.
func (c *Cache) Author(key string) (entity.Author, bool) {
	key = openlibrary.AuthorKey(key)
	c.mu.RLock()
	a, ok := c.authors[key]
	c.mu.RUnlock()
	c.metrics.CacheHit("author", ok)
	return a, ok
}

// PutAuthor stores a fetched author when absent. A derived entry keeps its
// work count but takes the richer fetched fields.
func (c *Cache) PutAuthor(a entity.Author) entity.Author {
	a.Key = openlibrary.AuthorKey(a.Key)
	c.mu.Lock()
	defer c.mu.Unlock()
	if old, ok := c.authors[a.Key]; ok {
		if old.WorkCount > a.WorkCount {
			a.WorkCount = old.WorkCount
		}
		if a.Name == "" {
			a.Name = old.Name
		}
	} else {
		c.authorOrder = append(c.authorOrder, a.Key)
	}
	c.authors[a.Key] = a
	return a
}

// Stats is a point-in-time size summary.
type Stats struct {
	Books      int `json:"books" yaml:"books"`
	Categories int `json:"categories" yaml:"categories"`
	Authors    int `json:"authors" yaml:"authors"`
}

func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Stats{Books: len(c.books), Categories: len(c.categories), Authors: len(c.authors)}
}
