package author

import (
	"context"
	"errors"
	"testing"

	"bookhub/internal/catalog"
	"bookhub/internal/entity"
	"bookhub/internal/testutil"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func derived(cache *catalog.Cache, key, name string, works int) {
	for i := 0; i < works; i++ {
		cache.AddBooks([]entity.Book{{
			WorkKey: key + string(rune('a'+i)),
			Author:  &entity.AuthorRef{Key: key, Name: name},
		}})
	}
}

func TestService_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("fetched author is served from cache", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := NewMockRepository(ctrl)
		cache := catalog.New(nil)
		svc := NewService(repo, cache, nil)

		repo.EXPECT().Get(gomock.Any(), "OL1A").Return(Author{Key: "OL1A", Name: "A", Bio: "b"}, nil).Times(1)

		first := svc.Get(ctx, "/authors/OL1A")
		second := svc.Get(ctx, "OL1A")
		require.NotNil(t, first)
		require.NotNil(t, second)
		assert.Equal(t, "b", second.Bio)
	})

	t.Run("derived author is enriched and keeps its work count", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := NewMockRepository(ctrl)
		cache := catalog.New(nil)
		derived(cache, "OL1A", "A", 3)
		svc := NewService(repo, cache, nil)

		repo.EXPECT().Get(gomock.Any(), "OL1A").Return(Author{Key: "OL1A", Name: "A", BirthDate: "1920"}, nil)

		a := svc.Get(ctx, "OL1A")
		require.NotNil(t, a)
		assert.Equal(t, 3, a.WorkCount)
		assert.Equal(t, "1920", a.BirthDate)
	})

	t.Run("prefixed listing key resolves to one entry", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := NewMockRepository(ctrl)
		cache := catalog.New(nil)
		derived(cache, "/authors/OL1A", "A", 1)
		svc := NewService(repo, cache, nil)

		repo.EXPECT().Get(gomock.Any(), "OL1A").Return(Author{Key: "OL1A", Name: "A", Bio: "b"}, nil)

		a := svc.Get(ctx, "/authors/OL1A")
		require.NotNil(t, a)
		assert.Equal(t, 1, a.WorkCount)
		authors := cache.Authors(0)
		require.Len(t, authors, 1)
		assert.Equal(t, "OL1A", authors[0].Key)
		assert.Equal(t, "b", authors[0].Bio)
	})

	t.Run("failure falls back to the derived entry", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := NewMockRepository(ctrl)
		cache := catalog.New(nil)
		derived(cache, "OL1A", "A", 1)
		svc := NewService(repo, cache, nil)

		repo.EXPECT().Get(gomock.Any(), "OL1A").Return(Author{}, errors.New("down"))

		a := svc.Get(ctx, "OL1A")
		require.NotNil(t, a)
		assert.Equal(t, "A", a.Name)
	})

	t.Run("failure without cache is nil", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := NewMockRepository(ctrl)
		svc := NewService(repo, catalog.New(nil), nil)

		repo.EXPECT().Get(gomock.Any(), "OL9A").Return(Author{}, errors.New("404"))

		assert.Nil(t, svc.Get(ctx, "OL9A"))
	})
}

func TestService_List(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	cache := catalog.New(nil)
	boot := NewMockBootstrapper(ctrl)
	svc := NewService(NewMockRepository(ctrl), cache, boot)

	boot.EXPECT().Bootstrap(gomock.Any()).Do(func(context.Context) {
		derived(cache, "OL1A", "A", 2)
		derived(cache, "OL2A", "B", 1)
	}).Times(1)

	assert.Len(t, svc.List(ctx, 0), 2)
	assert.Len(t, svc.List(ctx, 1), 1)
}

func TestAPIRepo_AgainstFake(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	api.AddAuthor("OL23919A", map[string]any{
		"key":           "/authors/OL23919A",
		"name":          "",
		"personal_name": "Joanne Rowling",
		"bio":           map[string]any{"type": "/type/text", "value": "British author."},
		"photos":        []int{5543033},
	})
	api.AddBooks(
		entity.Book{WorkKey: "OL82563W", Title: "Philosopher's Stone", Author: &entity.AuthorRef{Key: "OL23919A", Name: "J. K. Rowling"}},
		entity.Book{WorkKey: "OL1W", Title: "Other"},
	)
	svc := NewService(NewAPIRepo(api.Client("")), catalog.New(nil), nil)
	ctx := context.Background()

	a := svc.Get(ctx, "OL23919A")
	require.NotNil(t, a)
	assert.Equal(t, "OL23919A", a.Key)
	assert.Equal(t, "Joanne Rowling", a.Name)
	assert.Equal(t, "British author.", a.Bio)

	books := svc.Books(ctx, "OL23919A", 0, 12)
	require.Len(t, books, 1)
	assert.Equal(t, "OL82563W", books[0].WorkKey)

	assert.Nil(t, svc.Get(ctx, "OL0A"))
	assert.Empty(t, svc.Books(ctx, "OL0A", 0, 12))
}
