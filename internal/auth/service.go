package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/arvindnk/dataforge/internal/store"
	"github.com/arvindnk/dataforge/pkg/models"
)

// ErrUsernameTaken is returned when registering an existing username.
var ErrUsernameTaken = errors.New("username already registered")

// ErrBadCredentials is returned for both unknown usernames and wrong
// passwords, so login failures never reveal whether a username exists.
var ErrBadCredentials = errors.New("invalid username or password")

// UserStore is the slice of the store the auth service needs.
type UserStore interface {
	CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// Service implements registration and login on top of the store.
// Plaintext passwords are hashed before they touch storage and are
// never logged.
type Service struct {
	store  UserStore
	hasher *Hasher
	tokens *TokenIssuer
}

// NewService creates an auth Service.
func NewService(s UserStore, hasher *Hasher, tokens *TokenIssuer) *Service {
	return &Service{store: s, hasher: hasher, tokens: tokens}
}

// Register creates a new user record. Fails with ErrUsernameTaken if the
// username exists.
func (s *Service) Register(ctx context.Context, username, password string) error {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if _, err := s.store.CreateUser(ctx, username, hash); err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			return ErrUsernameTaken
		}
		return fmt.Errorf("register user: %w", err)
	}

	slog.Info("user registered", "username", username)
	return nil
}

// Authenticate checks the credentials and returns a signed bearer token.
func (s *Service) Authenticate(ctx context.Context, username, password string) (string, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrBadCredentials
		}
		return "", fmt.Errorf("look up user: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return "", ErrBadCredentials
	}

	token, err := s.tokens.Issue(user.Username)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}

	slog.Info("user logged in", "username", username)
	return token, nil
}
