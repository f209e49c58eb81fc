package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/ErlanBelekov/writing-assistant/internal/domain"
	"github.com/jackc/pgx/v5"
)

const contentColumns = `id, user_id, title, body, created_at, updated_at`

type ContentRepository struct {
	pool DBTX
}

func NewContentRepository(pool DBTX) *ContentRepository {
	return &ContentRepository{pool: pool}
}

func (r *ContentRepository) Create(ctx context.Context, c *domain.Content) (*domain.Content, error) {
	query := `
		INSERT INTO contents (user_id, title, body)
		VALUES ($1, $2, $3)
		RETURNING ` + contentColumns

	return scanContent(r.pool.QueryRow(ctx, query, c.UserID, c.Title, c.Body))
}

func (r *ContentRepository) ListByOwner(ctx context.Context, userID int64) ([]*domain.Content, error) {
	query := `
		SELECT ` + contentColumns + `
		FROM contents
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list contents: %w", err)
	}
	defer rows.Close()

	contents := make([]*domain.Content, 0)
	for rows.Next() {
		c, err := scanContent(rows)
		if err != nil {
			return nil, err
		}
		contents = append(contents, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contents: %w", err)
	}
	return contents, nil
}

func (r *ContentRepository) GetByID(ctx context.Context, id, userID int64) (*domain.Content, error) {
	query := `
		SELECT ` + contentColumns + `
		FROM contents
		WHERE id = $1 AND user_id = $2`

	return scanContent(r.pool.QueryRow(ctx, query, id, userID))
}

func (r *ContentRepository) Update(ctx context.Context, id, userID int64, patch domain.ContentPatch) (*domain.Content, error) {
	// NULL parameters leave the column as is.
	query := `
		UPDATE contents
		SET    title      = COALESCE($3, title),
		       body       = COALESCE($4, body),
		       updated_at = NOW()
		WHERE  id = $1 AND user_id = $2
		RETURNING ` + contentColumns

	return scanContent(r.pool.QueryRow(ctx, query, id, userID, patch.Title, patch.Body))
}

func (r *ContentRepository) Delete(ctx context.Context, id, userID int64) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM contents WHERE id = $1 AND user_id = $2`,
		id, userID)
	if err != nil {
		return fmt.Errorf("delete content: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrContentNotFound
	}
	return nil
}

// pgx.Row and pgx.Rows both implement this.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanContent(row rowScanner) (*domain.Content, error) {
	var c domain.Content
	err := row.Scan(&c.ID, &c.UserID, &c.Title, &c.Body, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrContentNotFound
		}
		return nil, fmt.Errorf("scan content: %w", err)
	}
	return &c, nil
}
