// Package subject lists books filed under a subject (category).
package subject

import (
	"context"
	"net/url"
	"strconv"

	"bookhub/internal/entity"
	"bookhub/internal/platform/apiclient"
	"bookhub/internal/platform/logging"
)

type Repository interface {
	Books(ctx context.Context, subject string, offset, limit int) ([]entity.Book, error)
}

type APIRepo struct {
	client *apiclient.Client
}

func NewAPIRepo(client *apiclient.Client) *APIRepo {
	return &APIRepo{client: client}
}

func (r *APIRepo) Books(ctx context.Context, subject string, offset, limit int) ([]entity.Book, error) {
	q := url.Values{}
	q.Set("offset", strconv.Itoa(offset))
	q.Set("limit", strconv.Itoa(limit))
	var books []entity.Book
	if err := r.client.Get(ctx, "/subjects/"+url.PathEscape(subject), q, &books); err != nil {
		return nil, err
	}
	return books, nil
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Books returns one page; failures yield an empty page.
func (s *Service) Books(ctx context.Context, subject string, offset, limit int) []entity.Book {
	books, err := s.repo.Books(ctx, subject, offset, limit)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("subject", subject).Msg("list subject books")
		return []entity.Book{}
	}
	return books
}
