package book

import (
	"context"
	"errors"

	"bookhub/internal/catalog"
	"bookhub/internal/entity"
	"bookhub/internal/platform/logging"

	"golang.org/x/sync/errgroup"
)

type Options struct {
	// BootstrapLimit is the listing size used to seed an empty cache.
	BootstrapLimit      int
	FeaturedLimit       int
	FeaturedConcurrency int
}

// Service provides book-related business logic. Reads never fail: errors
// are logged and an empty result is returned.
type Service struct {
	repo    Repository
	cache   *catalog.Cache
	ratings RatingSource
	opts    Options
}

// NewService creates a new book service. ratings may be nil.
func NewService(repo Repository, cache *catalog.Cache, ratings RatingSource, opts Options) *Service {
	if opts.BootstrapLimit <= 0 {
		opts.BootstrapLimit = 100
	}
	if opts.FeaturedLimit <= 0 {
		opts.FeaturedLimit = 4
	}
	if opts.FeaturedConcurrency <= 0 {
		opts.FeaturedConcurrency = 4
	}
	return &Service{repo: repo, cache: cache, ratings: ratings, opts: opts}
}

// List returns one page of books. Unfiltered results are cached; searches
// only feed category and author derivation.
func (s *Service) List(ctx context.Context, q Query) []Book {
	if err := q.Validate(); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("invalid book query")
		return []Book{}
	}
	books, err := s.repo.List(ctx, q)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("list books")
		return []Book{}
	}
	if q.Search == "" {
		s.cache.AddBooks(books)
	} else {
		s.cache.Observe(books)
	}
	return books
}

// Get returns the book with full details, or nil when it cannot be loaded.
func (s *Service) Get(ctx context.Context, workKey string) *Book {
	if b, ok := s.cache.Book(workKey); ok && b.HasDetails() {
		return &b
	}

	b, err := s.repo.Get(ctx, workKey)
	if err != nil {
		ev := logging.Ctx(ctx).Warn()
		if errors.Is(err, ErrNotFound) {
			ev = logging.Ctx(ctx).Debug()
		}
		ev.Err(err).Str("work_key", workKey).Msg("get book")
		return nil
	}
	if b.WorkKey == "" {
		b.WorkKey = workKey
	}
	merged := s.cache.MergeBook(b)
	return &merged
}

// Featured returns the most viewed books with their average rating filled in.
func (s *Service) Featured(ctx context.Context) []Book {
	books := s.List(ctx, Query{Limit: s.opts.FeaturedLimit, OrderBy: "views", Order: "desc"})
	if s.ratings == nil || len(books) == 0 {
		return books
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.FeaturedConcurrency)
	for i := range books {
		g.Go(func() error {
			books[i].Rating = s.ratings.Average(gctx, books[i].WorkKey)
			return nil
		})
	}
	_ = g.Wait()
	return books
}

// Categories returns the derived subject counts, seeding the cache on first use.
func (s *Service) Categories(ctx context.Context) []entity.Category {
	if cats := s.cache.Categories(); len(cats) > 0 {
		return cats
	}
	s.List(ctx, Query{Limit: s.opts.BootstrapLimit})
	return s.cache.Categories()
}

// Bootstrap lists BootstrapLimit books when the cache holds no authors.
func (s *Service) Bootstrap(ctx context.Context) {
	if len(s.cache.Authors(1)) > 0 {
		return
	}
	s.List(ctx, Query{Limit: s.opts.BootstrapLimit})
}
