// Package favorite manages the signed-in user's favorite books.
package favorite

import (
	"context"
	"fmt"
	"slices"

	"bookhub/internal/entity"
	"bookhub/internal/platform/logging"
)

// List is the favorites payload.
type List struct {
	Books []entity.Book `json:"favorite_books" validate:"dive"`
}

type Repository interface {
	List(ctx context.Context) (List, error)
	Add(ctx context.Context, workKey string) error
	Remove(ctx context.Context, workKey string) error
}

// TokenSource reports whether a user is signed in.
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

// List returns the favorites, or an empty slice when anonymous or unavailable.
func (s *Service) List(ctx context.Context) []entity.Book {
	if s.tokens.Token() == "" {
		return []entity.Book{}
	}
	l, err := s.repo.List(ctx)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("list favorites")
		return []entity.Book{}
	}
	if l.Books == nil {
		return []entity.Book{}
	}
	return l.Books
}

func (s *Service) Add(ctx context.Context, workKey string) error {
	if err := s.repo.Add(ctx, workKey); err != nil {
		return fmt.Errorf("add favorite: %w", err)
	}
	return nil
}

func (s *Service) Remove(ctx context.Context, workKey string) error {
	if err := s.repo.Remove(ctx, workKey); err != nil {
		return fmt.Errorf("remove favorite: %w", err)
	}
	return nil
}

func (s *Service) IsFavorite(ctx context.Context, workKey string) bool {
	return slices.ContainsFunc(s.List(ctx), func(b entity.Book) bool { return b.WorkKey == workKey })
}

// Toggle adds or removes workKey and reports whether it is now a favorite.
func (s *Service) Toggle(ctx context.Context, workKey string) (bool, error) {
	if s.IsFavorite(ctx, workKey) {
		return false, s.Remove(ctx, workKey)
	}
	return true, s.Add(ctx, workKey)
}
