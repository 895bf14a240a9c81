package author

import (
	"context"

	"bookhub/internal/entity"
)

//go:generate mockgen -source=ports.go -destination=mock_ports.go -package=author

type Repository interface {
	Get(ctx context.Context, key string) (Author, error)
	Books(ctx context.Context, key string, offset, limit int) ([]entity.Book, error)
}

// Bootstrapper seeds the session cache from a bulk book listing.
type Bootstrapper interface {
	Bootstrap(ctx context.Context)
}
