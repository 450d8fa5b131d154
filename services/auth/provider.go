package auth

import (
	"context"
	"errors"
	"time"

	"moma/models"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionInvalid     = errors.New("session invalid or expired")
	ErrPasswordTooLong    = errors.New("password exceeds 72 bytes")
)

// Session is an authenticated user together with the token proving it.
type Session struct {
	User      models.User `json:"user"`
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

// Provider is the identity backend behind the Gateway.
type Provider interface {
	SignUp(ctx context.Context, email, password string) (Session, error)
	SignIn(ctx context.Context, email, password string) (Session, error)
	SignOut(ctx context.Context, token string) error
	Verify(ctx context.Context, token string) (models.User, error)
}
