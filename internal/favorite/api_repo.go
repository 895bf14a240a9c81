package favorite

import (
	"context"
	"net/url"

	"bookhub/internal/platform/apiclient"
)

const basePath = "/favourite/favorites"

type APIRepo struct {
	client *apiclient.Client
}

func NewAPIRepo(client *apiclient.Client) *APIRepo {
	return &APIRepo{client: client}
}

func (r *APIRepo) List(ctx context.Context) (List, error) {
	var l List
	err := r.client.Do(ctx, apiclient.Request{Path: basePath, Auth: true}, &l)
	return l, err
}

func (r *APIRepo) Add(ctx context.Context, workKey string) error {
	return r.client.PostJSON(ctx, basePath+"/"+url.PathEscape(workKey), nil, nil)
}

func (r *APIRepo) Remove(ctx context.Context, workKey string) error {
	return r.client.Delete(ctx, basePath+"/"+url.PathEscape(workKey), nil)
}
