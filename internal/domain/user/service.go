package user

import (
	"context"
	"errors"
	"log"
	"strings"

	"contas/internal/shared/auth"
)

// Service contains the business logic for user registration and login
type Service struct {
	repo Repository
}

// NewService creates a new user service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register creates a new user with a bcrypt-hashed password
func (s *Service) Register(ctx context.Context, email, name, password string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if len(password) < 8 {
		return nil, errors.New("password must be at least 8 characters")
	}

	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	params := CreateUserParams{Email: email, Name: name, PasswordHash: hash}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	u, err := s.repo.Create(ctx, params)
	if err != nil {
		return nil, err
	}

	log.Printf("User registered: %s (id=%d)", u.Email, u.ID)
	return u, nil
}

// Authenticate verifies email and password, returning the user on success.
// Both a missing user and a wrong password map to ErrInvalidCredentials so
// login failures do not leak which emails exist.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrInvalidCredentials
	}

	if err := auth.VerifyPassword(u.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	return u, nil
}

// GetUser retrieves a user by ID
func (s *Service) GetUser(ctx context.Context, id int64) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}
