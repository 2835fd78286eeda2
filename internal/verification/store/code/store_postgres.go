package code

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"velofit/internal/sentinel"
	"velofit/internal/verification/models"
)

// PostgresStore persists verification codes in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed code store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Insert(ctx context.Context, c *models.Code) error {
	if c == nil {
		return fmt.Errorf("code is required")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO verification_codes (id, email, code_hash, created_at, expires_at, consumed)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, c.ID, c.Email, c.CodeHash, c.CreatedAt, c.ExpiresAt, c.Consumed)
	if err != nil {
		return fmt.Errorf("insert verification code: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindActive(ctx context.Context, email string, now time.Time) (*models.Code, error) {
	var c models.Code
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, code_hash, created_at, expires_at, consumed
		FROM verification_codes
		WHERE email = $1 AND consumed = FALSE AND expires_at > $2
		ORDER BY created_at DESC
		LIMIT 1
	`, email, now).Scan(&c.ID, &c.Email, &c.CodeHash, &c.CreatedAt, &c.ExpiresAt, &c.Consumed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("active code not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find active verification code: %w", err)
	}
	return &c, nil
}

func (s *PostgresStore) MarkConsumed(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE verification_codes SET consumed = TRUE
		WHERE id = $1 AND consumed = FALSE
	`, id)
	if err != nil {
		return fmt.Errorf("consume verification code: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("consume verification code rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("code not found or already consumed: %w", sentinel.ErrAlreadyUsed)
	}
	return nil
}

// DeleteExpired prunes stale verification-code rows. Rate limit records are
// intentionally not touched here.
func (s *PostgresStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM verification_codes WHERE consumed = TRUE OR expires_at <= $1
	`, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired verification codes: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expired verification codes rows affected: %w", err)
	}
	return int(affected), nil
}
