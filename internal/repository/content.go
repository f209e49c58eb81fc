package repository

import (
	"context"

	"github.com/ErlanBelekov/writing-assistant/internal/domain"
)

// ContentRepository scopes every read and write to an owner. Rows owned by
// another user are reported as domain.ErrContentNotFound.
type ContentRepository interface {
	Create(ctx context.Context, c *domain.Content) (*domain.Content, error)
	ListByOwner(ctx context.Context, userID int64) ([]*domain.Content, error)
	GetByID(ctx context.Context, id, userID int64) (*domain.Content, error)
	Update(ctx context.Context, id, userID int64, patch domain.ContentPatch) (*domain.Content, error)
	Delete(ctx context.Context, id, userID int64) error
}
