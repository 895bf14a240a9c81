package author

import (
	"context"

	"bookhub/internal/catalog"
	"bookhub/internal/entity"
	"bookhub/internal/platform/logging"
	"bookhub/internal/platform/openlibrary"
)

type Service struct {
	repo      Repository
	cache     *catalog.Cache
	bootstrap Bootstrapper
}

func NewService(repo Repository, cache *catalog.Cache, bootstrap Bootstrapper) *Service {
	return &Service{repo: repo, cache: cache, bootstrap: bootstrap}
}

// Get returns a fetched author from the cache, otherwise loads and caches it.
// Authors only synthesized from listings are refreshed from the API. A failed
// load of an uncached author yields nil.
func (s *Service) Get(ctx context.Context, key string) *Author {
	key = openlibrary.AuthorKey(key)
	cached, ok := s.cache.Author(key)
	if ok && cached.HasDetails() {
		return &cached
	}

	a, err := s.repo.Get(ctx, key)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("author", key).Msg("get author")
		if ok {
			return &cached
		}
		return nil
	}
	stored := s.cache.PutAuthor(a)
	return &stored
}

// List returns derived authors, bootstrapping the cache when it is empty.
func (s *Service) List(ctx context.Context, limit int) []Author {
	if authors := s.cache.Authors(limit); len(authors) > 0 {
		return authors
	}
	if s.bootstrap != nil {
		s.bootstrap.Bootstrap(ctx)
	}
	return s.cache.Authors(limit)
}

// Books lists one page of the author's books; errors yield an empty page.
func (s *Service) Books(ctx context.Context, key string, offset, limit int) []entity.Book {
	books, err := s.repo.Books(ctx, openlibrary.AuthorKey(key), offset, limit)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("author", key).Msg("list author books")
		return []entity.Book{}
	}
	return books
}
