package domain

import (
	"context"
	"time"
)

// User represents a registered account
type User struct {
	ID           string    // Opaque store identifier
	Username     string    // Unique username
	Email        string    // Unique email address
	PasswordHash string    // Bcrypt hash (never returned in API)
	CreatedAt    time.Time
}

// PublicUser is the projection of a User that is safe to return to clients
type PublicUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Public strips credential material from the user
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
	}
}

// UserRepository defines data access for users.
// Create must report ErrUserExists when the email or username is already taken,
// and the Get methods return ErrUserNotFound when nothing matches.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
}
