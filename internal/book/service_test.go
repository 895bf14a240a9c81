package book

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"bookhub/internal/catalog"
	"bookhub/internal/entity"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listed(key string, subjects ...string) Book {
	return Book{WorkKey: key, Title: "T " + key, Subjects: subjects}
}

func TestService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("caches unfiltered results", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := NewMockRepository(ctrl)
		cache := catalog.New(nil)
		svc := NewService(repo, cache, nil, Options{})

		q := Query{Offset: 0, Limit: 12, OrderBy: "title", Order: "asc"}
		repo.EXPECT().List(gomock.Any(), q).Return([]Book{listed("OL1W", "Fantasy")}, nil)

		books := svc.List(ctx, q)

		assert.Len(t, books, 1)
		_, ok := cache.Book("OL1W")
		assert.True(t, ok)
	})

	t.Run("search feeds derivation only", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := NewMockRepository(ctrl)
		cache := catalog.New(nil)
		svc := NewService(repo, cache, nil, Options{})

		repo.EXPECT().List(gomock.Any(), gomock.Any()).Return([]Book{listed("OL1W", "Fantasy")}, nil)

		svc.List(ctx, Query{Limit: 12, Search: "dune"})

		_, ok := cache.Book("OL1W")
		assert.False(t, ok)
		assert.Equal(t, []entity.Category{{Name: "Fantasy", BookCount: 1}}, cache.Categories())
	})

	t.Run("error degrades to empty", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := NewMockRepository(ctrl)
		svc := NewService(repo, catalog.New(nil), nil, Options{})

		repo.EXPECT().List(gomock.Any(), gomock.Any()).Return(nil, errors.New("boom"))

		books := svc.List(ctx, Query{Limit: 12})
		assert.NotNil(t, books)
		assert.Empty(t, books)
	})

	t.Run("invalid query is not sent", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := NewMockRepository(ctrl)
		svc := NewService(repo, catalog.New(nil), nil, Options{})

		assert.Empty(t, svc.List(ctx, Query{Order: "sideways"}))
	})
}

func TestService_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("complete cache entry skips the fetch", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := NewMockRepository(ctrl)
		cache := catalog.New(nil)
		cache.MergeBook(Book{WorkKey: "OL1W", ISBN: []string{"1"}, Publishers: []string{"P"}})
		svc := NewService(repo, cache, nil, Options{})

		b := svc.Get(ctx, "OL1W")
		require.NotNil(t, b)
		assert.Equal(t, "OL1W", b.WorkKey)
	})

	t.Run("partial entry is merged with detail", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := NewMockRepository(ctrl)
		cache := catalog.New(nil)
		cache.AddBooks([]Book{listed("OL1W", "Fantasy")})
		svc := NewService(repo, cache, nil, Options{})

		repo.EXPECT().Get(gomock.Any(), "OL1W").
			Return(Book{WorkKey: "OL1W", ISBN: []string{"1"}, Publishers: []string{"P"}}, nil)

		b := svc.Get(ctx, "OL1W")
		require.NotNil(t, b)
		assert.Equal(t, []string{"Fantasy"}, b.Subjects)
		assert.Equal(t, []string{"P"}, b.Publishers)

		again := svc.Get(ctx, "OL1W")
		require.NotNil(t, again)
		assert.True(t, again.HasDetails())
	})

	t.Run("not found returns nil", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := NewMockRepository(ctrl)
		svc := NewService(repo, catalog.New(nil), nil, Options{})

		repo.EXPECT().Get(gomock.Any(), "OL999W").Return(Book{}, fmt.Errorf("%w: OL999W", ErrNotFound))

		assert.Nil(t, svc.Get(ctx, "OL999W"))
	})
}

func TestService_Featured(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	repo := NewMockRepository(ctrl)
	ratings := NewMockRatingSource(ctrl)
	svc := NewService(repo, catalog.New(nil), ratings, Options{FeaturedLimit: 4, FeaturedConcurrency: 2})

	repo.EXPECT().List(gomock.Any(), Query{Limit: 4, OrderBy: "views", Order: "desc"}).
		Return([]Book{listed("OL1W"), listed("OL2W"), listed("OL3W"), listed("OL4W")}, nil)

	var inFlight, peak int32
	ratings.EXPECT().Average(gomock.Any(), gomock.Any()).Times(4).DoAndReturn(func(_ context.Context, key string) float64 {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		if key == "OL3W" {
			return 0
		}
		return 4.5
	})

	books := svc.Featured(ctx)

	require.Len(t, books, 4)
	assert.Equal(t, 4.5, books[0].Rating)
	assert.Equal(t, 0.0, books[2].Rating)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
}

func TestService_Categories(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	repo := NewMockRepository(ctrl)
	svc := NewService(repo, catalog.New(nil), nil, Options{BootstrapLimit: 100})

	repo.EXPECT().List(gomock.Any(), Query{Limit: 100}).
		Return([]Book{listed("OL1W", "Fantasy", "Magic"), listed("OL2W", "Fantasy")}, nil).Times(1)

	first := svc.Categories(ctx)
	second := svc.Categories(ctx)

	assert.Equal(t, []entity.Category{{Name: "Fantasy", BookCount: 2}, {Name: "Magic", BookCount: 1}}, first)
	assert.Equal(t, first, second)
}

func TestQuery_Values(t *testing.T) {
	v := Query{Offset: 12, Limit: 12, OrderBy: "title", Order: "asc", Search: "le guin"}.Values()
	assert.Equal(t, "limit=12&offset=12&order=asc&order_by=title&search=le+guin", v.Encode())
	assert.Equal(t, "", Query{}.Values().Encode())
}
