package book

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"bookhub/internal/catalog"
	"bookhub/internal/entity"
	"bookhub/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(api *testutil.FakeAPI, n int) {
	for i := 1; i <= n; i++ {
		api.AddBooks(entity.Book{
			WorkKey:    fmt.Sprintf("OL%dW", i),
			Title:      fmt.Sprintf("Book %02d", i),
			Subjects:   []string{"Fiction"},
			Views:      i,
			ISBN:       []string{fmt.Sprintf("isbn-%d", i)},
			Publishers: []string{"Tor"},
		})
	}
}

func TestAPIRepo_List(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	seed(api, 19)
	repo := NewAPIRepo(api.Client(""))

	first, err := repo.List(context.Background(), Query{Offset: 0, Limit: 12, OrderBy: "title", Order: "asc"})
	require.NoError(t, err)
	assert.Len(t, first, 12)
	assert.Equal(t, "Book 01", first[0].Title)
	assert.False(t, first[0].HasDetails(), "listings omit isbn and publishers")

	rest, err := repo.List(context.Background(), Query{Offset: 12, Limit: 12, OrderBy: "title", Order: "asc"})
	require.NoError(t, err)
	assert.Len(t, rest, 7)
}

func TestAPIRepo_Get(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	seed(api, 1)
	repo := NewAPIRepo(api.Client(""))

	b, err := repo.Get(context.Background(), "OL1W")
	require.NoError(t, err)
	assert.True(t, b.HasDetails())

	_, err = repo.Get(context.Background(), "OL999W")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestService_AgainstAPI(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	seed(api, 5)
	cache := catalog.New(nil)
	svc := NewService(NewAPIRepo(api.Client("")), cache, nil, Options{})

	svc.List(context.Background(), Query{Limit: 12})
	before := api.Requests()

	b := svc.Get(context.Background(), "OL3W")
	require.NotNil(t, b)
	assert.Equal(t, []string{"Tor"}, b.Publishers)
	assert.Equal(t, before+1, api.Requests())

	svc.Get(context.Background(), "OL3W")
	assert.Equal(t, before+1, api.Requests(), "complete record served from cache")

	assert.Nil(t, svc.Get(context.Background(), "OL999W"))
}
