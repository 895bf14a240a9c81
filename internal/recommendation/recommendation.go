// Package recommendation fetches personalised book suggestions.
package recommendation

import (
	"context"
	"net/url"
	"strconv"

	"bookhub/internal/entity"
	"bookhub/internal/platform/apiclient"
	"bookhub/internal/platform/logging"
)

const DefaultLimit = 10

type Repository interface {
	List(ctx context.Context, limit int) ([]entity.Book, error)
}

type APIRepo struct {
	client *apiclient.Client
}

func NewAPIRepo(client *apiclient.Client) *APIRepo {
	return &APIRepo{client: client}
}

func (r *APIRepo) List(ctx context.Context, limit int) ([]entity.Book, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	var books []entity.Book
	err := r.client.Do(ctx, apiclient.Request{Path: "/recommendations/", Query: q, Auth: true}, &books)
	return books, err
}

type TokenSource interface {
	Token() string
}

type Service struct {
	repo   Repository
	tokens TokenSource
}

func NewService(repo Repository, tokens TokenSource) *Service {
	return &Service{repo: repo, tokens: tokens}
}

// List is empty for anonymous users; no request is made.
func (s *Service) List(ctx context.Context, limit int) []entity.Book {
	if s.tokens.Token() == "" {
		logging.Ctx(ctx).Debug().Msg("recommendations need a signed-in user")
		return []entity.Book{}
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	books, err := s.repo.List(ctx, limit)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("list recommendations")
		return []entity.Book{}
	}
	if books == nil {
		return []entity.Book{}
	}
	return books
}
