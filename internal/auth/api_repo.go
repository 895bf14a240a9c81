package auth

import (
	"context"
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

func (r *APIRepo) SignIn(ctx context.Context, username, password string) (*TokenResponse, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	var res TokenResponse
	if err := r.client.PostForm(ctx, "/authentication/signin", form, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *APIRepo) SignUp(ctx context.Context, c Credentials) (*User, error) {
	var u User
	err := r.client.Do(ctx, apiclient.Request{
		Method:    http.MethodPost,
		Path:      "/authentication/signup",
		JSON:      c,
		Anonymous: true,
	}, &u)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *APIRepo) Me(ctx context.Context) (*User, error) {
	var u User
	err := r.client.Do(ctx, apiclient.Request{
		Method: http.MethodGet,
		Path:   "/authentication/users/me",
		Auth:   true,
	}, &u)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
