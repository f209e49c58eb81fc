package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ErlanBelekov/writing-assistant/internal/domain"
	"github.com/ErlanBelekov/writing-assistant/internal/metrics"
	"github.com/ErlanBelekov/writing-assistant/internal/repository"
)

const defaultGenerateTimeout = 30 * time.Second

type articleWriter interface {
	Write(ctx context.Context, topic string) (string, error)
}

// Draft is a generated article, already saved as content.
type Draft struct {
	Title     string
	Body      string
	ContentID int64
}

type ContentUsecase struct {
	contents repository.ContentRepository
	writer   articleWriter
	timeout  time.Duration
	logger   *slog.Logger
}

func NewContentUsecase(contents repository.ContentRepository, writer articleWriter, timeout time.Duration, logger *slog.Logger) *ContentUsecase {
	if timeout <= 0 {
		timeout = defaultGenerateTimeout
	}
	return &ContentUsecase{
		contents: contents,
		writer:   writer,
		timeout:  timeout,
		logger:   logger.With("component", "content_usecase"),
	}
}

func (u *ContentUsecase) Create(ctx context.Context, userID int64, title, body string) (*domain.Content, error) {
	c, err := u.contents.Create(ctx, &domain.Content{UserID: userID, Title: title, Body: body})
	if err != nil {
		return nil, fmt.Errorf("create content: %w", err)
	}
	return c, nil
}

// List returns the user's records, newest first.
func (u *ContentUsecase) List(ctx context.Context, userID int64) ([]*domain.Content, error) {
	items, err := u.contents.ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list content: %w", err)
	}
	return items, nil
}

func (u *ContentUsecase) Get(ctx context.Context, id, userID int64) (*domain.Content, error) {
	return u.contents.GetByID(ctx, id, userID)
}

// Update applies the non-empty fields of patch. An empty patch still bumps
// updated_at.
func (u *ContentUsecase) Update(ctx context.Context, id, userID int64, patch domain.ContentPatch) (*domain.Content, error) {
	return u.contents.Update(ctx, id, userID, patch.Normalize())
}

func (u *ContentUsecase) Delete(ctx context.Context, id, userID int64) error {
	return u.contents.Delete(ctx, id, userID)
}

// GenerateDraft asks the model for an article on topic and stores it under
// the user's account, titled with the topic. The model call is bounded by
// the configured timeout.
func (u *ContentUsecase) GenerateDraft(ctx context.Context, userID int64, topic string) (*Draft, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, domain.ErrBlankTopic
	}

	genCtx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	start := time.Now()
	text, err := u.writer.Write(genCtx, topic)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(genCtx.Err(), context.DeadlineExceeded) {
			metrics.DraftGenerationDuration.WithLabelValues("timeout").Observe(time.Since(start).Seconds())
			return nil, domain.ErrUpstreamTimeout
		}
		metrics.DraftGenerationDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		u.logger.ErrorContext(ctx, "draft generation failed", "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrGenerationFailed, err)
	}
	metrics.DraftGenerationDuration.WithLabelValues("ok").Observe(time.Since(start).Seconds())

	saved, err := u.contents.Create(ctx, &domain.Content{UserID: userID, Title: topic, Body: text})
	if err != nil {
		return nil, fmt.Errorf("save draft: %w", err)
	}
	return &Draft{Title: topic, Body: text, ContentID: saved.ID}, nil
}
