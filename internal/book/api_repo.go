package book

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"bookhub/internal/platform/apiclient"
)

type APIRepo struct {
	client *apiclient.Client
}

func NewAPIRepo(client *apiclient.Client) *APIRepo {
	return &APIRepo{client: client}
}

func (r *APIRepo) List(ctx context.Context, q Query) ([]Book, error) {
	var books []Book
	if err := r.client.Get(ctx, "/books/", q.Values(), &books); err != nil {
		return nil, err
	}
	return books, nil
}

func (r *APIRepo) Get(ctx context.Context, workKey string) (Book, error) {
	var b Book
	err := r.client.Get(ctx, "/books/"+url.PathEscape(workKey), nil, &b)
	if apiclient.StatusOf(err) == http.StatusNotFound {
		return Book{}, fmt.Errorf("%w: %s", ErrNotFound, workKey)
	}
	if err != nil {
		return Book{}, err
	}
	return b, nil
}
