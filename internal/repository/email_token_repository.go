package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/courseforge/backend/internal/domain"
	"github.com/courseforge/backend/pkg/database"
)

// emailTokenRepository implements EmailTokenRepository interface
type emailTokenRepository struct {
	db *database.Postgres
}

// NewEmailTokenRepository creates a new email token repository
func NewEmailTokenRepository(db *database.Postgres) EmailTokenRepository {
	return &emailTokenRepository{db: db}
}

// Create creates a verification or reset token row
func (r *emailTokenRepository) Create(ctx context.Context, token *domain.EmailToken) error {
	query := `
		INSERT INTO email_tokens (id, user_id, token, purpose, expires_at, used, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	if token.ID == "" {
		token.ID = uuid.New().String()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now()
	}

	_, err := r.db.DB.ExecContext(ctx, query,
		token.ID,
		token.UserID,
		token.Token,
		token.Purpose,
		token.ExpiresAt,
		token.Used,
		token.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create email token: %w", err)
	}

	return nil
}

// GetByToken retrieves a token by its value and purpose
func (r *emailTokenRepository) GetByToken(ctx context.Context, token, purpose string) (*domain.EmailToken, error) {
	query := `
		SELECT id, user_id, token, purpose, expires_at, used, created_at
		FROM email_tokens
		WHERE token = $1 AND purpose = $2
	`

	t := &domain.EmailToken{}
	err := r.db.DB.QueryRowContext(ctx, query, token, purpose).Scan(
		&t.ID,
		&t.UserID,
		&t.Token,
		&t.Purpose,
		&t.ExpiresAt,
		&t.Used,
		&t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("email token not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get email token: %w", err)
	}

	return t, nil
}

// MarkUsed flips the used flag on a token
func (r *emailTokenRepository) MarkUsed(ctx context.Context, tokenID string) error {
	query := `UPDATE email_tokens SET used = TRUE WHERE id = $1 AND used = FALSE`

	result, err := r.db.DB.ExecContext(ctx, query, tokenID)
	if err != nil {
		return fmt.Errorf("failed to mark email token used: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("email token with id %s not usable: %w", tokenID, ErrNotFound)
	}

	return nil
}

// DeleteByUserAndPurpose removes all of a user's tokens for a purpose.
// Called before issuing a fresh verification token so at most one stays live.
func (r *emailTokenRepository) DeleteByUserAndPurpose(ctx context.Context, userID, purpose string) error {
	query := `DELETE FROM email_tokens WHERE user_id = $1 AND purpose = $2`

	_, err := r.db.DB.ExecContext(ctx, query, userID, purpose)
	if err != nil {
		return fmt.Errorf("failed to delete email tokens: %w", err)
	}

	return nil
}
