package comment

import "context"

//go:generate mockgen -source=ports.go -destination=mock_ports.go -package=comment

type Repository interface {
	List(ctx context.Context, bookID string) ([]Comment, error)
	Replies(ctx context.Context, commentID int64) ([]Comment, error)
	Counts(ctx context.Context, commentID int64) (Counts, error)
	Post(ctx context.Context, bookID, content string) error
	Reply(ctx context.Context, commentID int64, content string) error
	Delete(ctx context.Context, commentID int64) error
	// Vote sends -1, 0 or 1; 0 withdraws the viewer's vote.
	Vote(ctx context.Context, commentID int64, d Direction) error
}
