package comment

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"bookhub/internal/platform/apiclient"
)

type APIRepo struct {
	client *apiclient.Client
}

func NewAPIRepo(client *apiclient.Client) *APIRepo {
	return &APIRepo{client: client}
}

func commentPath(id int64) string {
	return "/comment/" + strconv.FormatInt(id, 10)
}

func (r *APIRepo) List(ctx context.Context, bookID string) ([]Comment, error) {
	var out []Comment
	if err := r.client.Get(ctx, "/comment/"+url.PathEscape(bookID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *APIRepo) Replies(ctx context.Context, commentID int64) ([]Comment, error) {
	var out []Comment
	if err := r.client.Get(ctx, commentPath(commentID)+"/replies", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *APIRepo) Counts(ctx context.Context, commentID int64) (Counts, error) {
	var c Counts
	err := r.client.Get(ctx, commentPath(commentID)+"/like", nil, &c)
	return c, err
}

type contentBody struct {
	Content string `json:"content"`
}

func (r *APIRepo) Post(ctx context.Context, bookID, content string) error {
	return r.client.PostJSON(ctx, "/comment/"+url.PathEscape(bookID), contentBody{Content: content}, nil)
}

func (r *APIRepo) Reply(ctx context.Context, commentID int64, content string) error {
	return r.client.PostJSON(ctx, commentPath(commentID)+"/replies", contentBody{Content: content}, nil)
}

func (r *APIRepo) Delete(ctx context.Context, commentID int64) error {
	return r.client.Delete(ctx, commentPath(commentID), nil)
}

func (r *APIRepo) Vote(ctx context.Context, commentID int64, d Direction) error {
	q := url.Values{}
	q.Set("is_like", strconv.Itoa(int(d)))
	return r.client.Do(ctx, apiclient.Request{
		Method: http.MethodPost,
		Path:   commentPath(commentID) + "/like",
		Query:  q,
		Auth:   true,
	}, nil)
}
