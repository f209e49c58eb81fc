package domain

import (
	"errors"
	"time"
)

var (
	ErrUnauthenticated      = errors.New("not authenticated")
	ErrTokenInvalid         = errors.New("token is invalid or expired")
	ErrUserNotFound         = errors.New("user not found")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrDuplicateEmail       = errors.New("user already exists")
	ErrInvalidExternalToken = errors.New("invalid external identity token")
	ErrUpstreamTimeout      = errors.New("upstream request timed out")
	ErrPasswordTooLong      = errors.New("password longer than 72 bytes")
)

type User struct {
	ID        int64
	Name      string
	Email     string
	Password  *string // bcrypt hash; nil for accounts created through Google
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasPassword reports whether the account can log in with a local password.
func (u *User) HasPassword() bool {
	return u.Password != nil && *u.Password != ""
}

// SessionClaims is what a validated session token asserts.
type SessionClaims struct {
	UserID    int64
	TokenID   string
	ExpiresAt time.Time
}

// ExternalIdentity is the verified subset of a third-party identity assertion.
type ExternalIdentity struct {
	Email string
	Name  string
}
