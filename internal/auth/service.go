package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"bookhub/internal/platform/apiclient"
	"bookhub/internal/platform/logging"

	"github.com/go-playground/validator/v10"
)

type Service struct {
	repo     Repository
	store    *Store
	validate *validator.Validate
}

func NewService(repo Repository, store *Store) *Service {
	return &Service{repo: repo, store: store, validate: validator.New()}
}

// Token implements httpx.TokenSource.
func (s *Service) Token() string {
	return s.store.Token()
}

func (s *Service) LoggedIn() bool {
	return s.Token() != ""
}

func (s *Service) Login(ctx context.Context, username, password string) (*TokenResponse, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}

	res, err := s.repo.SignIn(ctx, username, password)
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}
	if res.AccessToken == "" {
		return nil, ErrNoAccessToken
	}
	if err := s.store.Set(KeyToken, res.AccessToken); err != nil {
		return nil, err
	}
	if err := s.store.Set(KeyUsername, username); err != nil {
		return nil, err
	}
	logging.Info().Str("username", username).Msg("logged in")
	return res, nil
}

func (s *Service) Register(ctx context.Context, username, password string) (*User, error) {
	c := Credentials{Username: strings.TrimSpace(username), Password: password}
	if err := s.validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				switch fe.Field() {
				case "Username":
					return nil, ErrUsernameRequired
				case "Password":
					if fe.Tag() == "required" {
						return nil, ErrPasswordRequired
					}
					return nil, ErrPasswordTooShort
				}
			}
		}
		return nil, err
	}

	u, err := s.repo.SignUp(ctx, c)
	if err != nil {
		return nil, registerError(err)
	}
	return u, nil
}

// registerError surfaces the field-level message for the first recognised
// validation entry, else the server detail.
func registerError(err error) error {
	var apiErr *apiclient.APIError
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("registration failed: %w", err)
	}
	for _, f := range apiErr.Fields {
		if slices.Contains(f.Loc, "password") && strings.Contains(f.Type, "min_length") {
			return ErrPasswordTooShort
		}
		if slices.Contains(f.Loc, "username") {
			return errors.New(f.Msg)
		}
	}
	return fmt.Errorf("registration failed: %w", err)
}

// Profile returns nil when anonymous. A stored username short-circuits the
// remote lookup.
func (s *Service) Profile(ctx context.Context) *User {
	if !s.LoggedIn() {
		return nil
	}
	if name := s.store.Get(KeyUsername); name != "" {
		return &User{Username: name}
	}

	u, err := s.repo.Me(ctx)
	if err != nil {
		if apiclient.StatusOf(err) == http.StatusUnauthorized {
			s.store.Clear()
			return nil
		}
		logging.Ctx(ctx).Warn().Err(err).Msg("fetch user profile")
		return nil
	}
	if u.Username != "" {
		if err := s.store.Set(KeyUsername, u.Username); err != nil {
			logging.Warn().Err(err).Msg("store username")
		}
	}
	return u
}

// Verify asks the server whether the stored token is still accepted.
func (s *Service) Verify(ctx context.Context) bool {
	if !s.LoggedIn() {
		return false
	}
	_, err := s.repo.Me(ctx)
	return err == nil
}

func (s *Service) Logout() error {
	return s.store.Delete(KeyToken, KeyUsername)
}
