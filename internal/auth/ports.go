package auth

import "context"

//go:generate mockgen -source=ports.go -destination=mock_ports.go -package=auth

type Repository interface {
	SignIn(ctx context.Context, username, password string) (*TokenResponse, error)
	SignUp(ctx context.Context, c Credentials) (*User, error)
	Me(ctx context.Context) (*User, error)
}
