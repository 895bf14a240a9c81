// Package rating submits 1-5 star scores and reads per-book summaries.
package rating

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"bookhub/internal/platform/logging"
)

var ErrInvalidScore = errors.New("score must be between 1 and 5")

// Summary is the aggregate for one book. Distribution is keyed "1".."5".
type Summary struct {
	AverageScore float64        `json:"average_score" yaml:"average_score" validate:"gte=0,lte=5"`
	TotalRatings int            `json:"total_ratings" yaml:"total_ratings" validate:"gte=0"`
	Distribution map[string]int `json:"summary" yaml:"summary"`
	UserScore    *int           `json:"user_score" yaml:"user_score"`
}

// ZeroSummary is returned when the summary cannot be read.
func ZeroSummary() Summary {
	return Summary{Distribution: map[string]int{"5": 0, "4": 0, "3": 0, "2": 0, "1": 0}}
}

// Count returns how many ratings gave star stars.
func (s Summary) Count(star int) int {
	return s.Distribution[strconv.Itoa(star)]
}

//go:generate mockgen -source=rating.go -destination=mock_rating.go -package=rating

type Repository interface {
	Submit(ctx context.Context, workKey string, score int) error
	Delete(ctx context.Context, workKey string) error
	Summary(ctx context.Context, workKey string) (Summary, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Submit(ctx context.Context, workKey string, score int) error {
	if score < 1 || score > 5 {
		return ErrInvalidScore
	}
	if err := s.repo.Submit(ctx, workKey, score); err != nil {
		return fmt.Errorf("submit rating: %w", err)
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, workKey string) error {
	if err := s.repo.Delete(ctx, workKey); err != nil {
		return fmt.Errorf("delete rating: %w", err)
	}
	return nil
}

// Summary never fails; unreadable summaries come back zeroed.
func (s *Service) Summary(ctx context.Context, workKey string) Summary {
	sum, err := s.repo.Summary(ctx, workKey)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("work_key", workKey).Msg("fetch rating summary")
		return ZeroSummary()
	}
	if sum.Distribution == nil {
		sum.Distribution = ZeroSummary().Distribution
	}
	return sum
}

// Average is the book's mean score, 0 when unrated or unavailable.
func (s *Service) Average(ctx context.Context, workKey string) float64 {
	return s.Summary(ctx, workKey).AverageScore
}
