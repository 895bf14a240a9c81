// Package auth keeps the bearer token and display name for the current user
// and talks to the authentication endpoints.
package auth

import "errors"

const (
	KeyToken    = "auth_token"
	KeyUsername = "username"
)

var (
	ErrNoAccessToken    = errors.New("no access token received")
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")
	ErrUsernameRequired = errors.New("username is required")
	ErrPasswordRequired = errors.New("password is required")
)

type User struct {
	ID       *int64 `json:"id,omitempty"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
}
