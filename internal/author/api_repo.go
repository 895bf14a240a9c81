package author

import (
	"context"
	"net/url"
	"strconv"

	"bookhub/internal/entity"
	"bookhub/internal/platform/apiclient"
)

type APIRepo struct {
	client *apiclient.Client
}

func NewAPIRepo(client *apiclient.Client) *APIRepo {
	return &APIRepo{client: client}
}

func (r *APIRepo) Get(ctx context.Context, key string) (Author, error) {
	var p payload
	if err := r.client.Get(ctx, "/authors/"+url.PathEscape(key), nil, &p); err != nil {
		return Author{}, err
	}
	return p.toAuthor(key), nil
}

func (r *APIRepo) Books(ctx context.Context, key string, offset, limit int) ([]entity.Book, error) {
	q := url.Values{}
	q.Set("offset", strconv.Itoa(offset))
	q.Set("limit", strconv.Itoa(limit))
	var books []entity.Book
	if err := r.client.Get(ctx, "/authors/"+url.PathEscape(key)+"/books", q, &books); err != nil {
		return nil, err
	}
	return books, nil
}
