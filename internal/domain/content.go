package domain

import (
	"errors"
	"time"
)

var (
	// ErrContentNotFound covers both missing rows and rows owned by someone else.
	ErrContentNotFound  = errors.New("content not found")
	ErrRateLimited      = errors.New("rate limit exceeded")
	ErrGenerationFailed = errors.New("generation failed")
	ErrBlankTopic       = errors.New("topic is blank")
)

type Content struct {
	ID        int64
	UserID    int64
	Title     string
	Body      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ContentPatch carries the fields of a partial update. Nil or empty means
// untouched.
type ContentPatch struct {
	Title *string
	Body  *string
}

// Normalize drops empty fields so they leave the stored value as is.
func (p ContentPatch) Normalize() ContentPatch {
	if p.Title != nil && *p.Title == "" {
		p.Title = nil
	}
	if p.Body != nil && *p.Body == "" {
		p.Body = nil
	}
	return p
}
