package user

import (
	"errors"
	"strings"
	"time"
)

// Domain errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type CreateUserParams struct {
	Email        string
	Name         string
	PasswordHash string
}

// Validate validates the create parameters
func (p CreateUserParams) Validate() error {
	if p.Email == "" || !strings.Contains(p.Email, "@") {
		return errors.New("a valid email is required")
	}
	if p.Name == "" {
		return errors.New("name is required")
	}
	if p.PasswordHash == "" {
		return errors.New("password hash is required")
	}
	return nil
}
