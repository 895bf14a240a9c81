package book

import (
	"context"
)

//go:generate mockgen -source=ports.go -destination=mock_ports.go -package=book

// Repository is the remote book catalog.
type Repository interface {
	List(ctx context.Context, q Query) ([]Book, error)
	// Get returns ErrNotFound for an unknown work key.
	Get(ctx context.Context, workKey string) (Book, error)
}

// RatingSource supplies the average score shown on featured books.
type RatingSource interface {
	Average(ctx context.Context, workKey string) float64
}
