package models

import (
	"strings"
	"time"
)

// User is the signed-in identity exposed to clients.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// Account is the persisted form of a User, including its bcrypt password hash.
type Account struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// User strips the credentials from the account.
func (a Account) User() User {
	return User{ID: a.ID, Email: a.Email, CreatedAt: a.CreatedAt}
}

// NormalizeEmail lowercases and trims an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
