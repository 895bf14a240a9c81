package rating

import (
	"context"
	"net/url"

	"bookhub/internal/platform/apiclient"
)

type APIRepo struct {
	client *apiclient.Client
}

func NewAPIRepo(client *apiclient.Client) *APIRepo {
	return &APIRepo{client: client}
}

func path(workKey string) string {
	return "/rating/" + url.PathEscape(workKey)
}

func (r *APIRepo) Submit(ctx context.Context, workKey string, score int) error {
	return r.client.PostJSON(ctx, path(workKey), map[string]int{"score": score}, nil)
}

func (r *APIRepo) Delete(ctx context.Context, workKey string) error {
	return r.client.Delete(ctx, path(workKey), nil)
}

func (r *APIRepo) Summary(ctx context.Context, workKey string) (Summary, error) {
	var s Summary
	if err := r.client.Get(ctx, path(workKey)+"/summary", nil, &s); err != nil {
		return Summary{}, err
	}
	return s, nil
}
