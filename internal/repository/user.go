package repository

import (
	"context"

	"github.com/ErlanBelekov/writing-assistant/internal/domain"
)

type UserRepository interface {
	// Create inserts a new user. Returns domain.ErrDuplicateEmail when the
	// email is already taken; an existing row is never overwritten.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// FindOrCreate returns the user with this email, creating a password-less
	// account when none exists. created reports which branch was taken.
	FindOrCreate(ctx context.Context, email, name string) (user *domain.User, created bool, err error)
}
