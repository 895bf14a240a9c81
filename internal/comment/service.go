package comment

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"bookhub/internal/platform/logging"
)

type Service struct {
	repo           Repository
	reconcileDelay time.Duration
}

// NewService builds the service; reconcileDelay is how long a vote waits
// before its counts are re-read.
func NewService(repo Repository, reconcileDelay time.Duration) *Service {
	return &Service{repo: repo, reconcileDelay: reconcileDelay}
}

// Comments lists top-level comments newest first. Errors yield an empty list.
func (s *Service) Comments(ctx context.Context, bookID string) []Comment {
	list, err := s.repo.List(ctx, bookID)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("book", bookID).Msg("list comments")
		return []Comment{}
	}
	return sortByCreated(list, true)
}

// Replies lists replies oldest first. Errors yield an empty list.
func (s *Service) Replies(ctx context.Context, commentID int64) []Comment {
	list, err := s.repo.Replies(ctx, commentID)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Int64("comment", commentID).Msg("list replies")
		return []Comment{}
	}
	return sortByCreated(list, false)
}

// Counts returns zero counts when they cannot be read.
func (s *Service) Counts(ctx context.Context, commentID int64) Counts {
	c, err := s.repo.Counts(ctx, commentID)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Int64("comment", commentID).Msg("fetch like counts")
		return Counts{}
	}
	return c
}

func (s *Service) Post(ctx context.Context, bookID, content string) error {
	if strings.TrimSpace(content) == "" {
		return ErrEmptyContent
	}
	if err := s.repo.Post(ctx, bookID, content); err != nil {
		return fmt.Errorf("submit comment: %w", err)
	}
	return nil
}

func (s *Service) Reply(ctx context.Context, commentID int64, content string) error {
	if strings.TrimSpace(content) == "" {
		return ErrEmptyContent
	}
	if err := s.repo.Reply(ctx, commentID, content); err != nil {
		return fmt.Errorf("submit reply: %w", err)
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, commentID int64) error {
	if err := s.repo.Delete(ctx, commentID); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}

func sortByCreated(list []Comment, newestFirst bool) []Comment {
	out := make([]Comment, 0, len(list))
	for _, c := range list {
		out = append(out, c.normalize())
	}
	slices.SortStableFunc(out, func(a, b Comment) int {
		ta, _ := a.Created()
		tb, _ := b.Created()
		if newestFirst {
			return tb.Compare(ta)
		}
		return ta.Compare(tb)
	})
	return out
}
