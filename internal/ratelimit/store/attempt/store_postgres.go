package attempt

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"velofit/internal/ratelimit/models"
	"velofit/internal/sentinel"
)

// PostgresStore persists attempt records in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed attempt store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Find(ctx context.Context, identifier string) (*models.AttemptRecord, error) {
	if identifier == "" {
		return nil, fmt.Errorf("identifier is required")
	}

	var rec models.AttemptRecord
	err := s.db.QueryRowContext(ctx, `
		SELECT identifier, attempts_left, last_attempt_at
		FROM rate_limit_attempts
		WHERE identifier = $1
	`, identifier).Scan(&rec.Identifier, &rec.AttemptsLeft, &rec.LastAttemptAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("attempt record not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find attempt record: %w", err)
	}
	return &rec, nil
}

func (s *PostgresStore) Insert(ctx context.Context, rec *models.AttemptRecord) error {
	if rec == nil {
		return fmt.Errorf("attempt record is required")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO rate_limit_attempts (identifier, attempts_left, last_attempt_at)
		VALUES ($1, $2, $3)
	`, rec.Identifier, rec.AttemptsLeft, rec.LastAttemptAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("attempt record already exists: %w", sentinel.ErrConflict)
		}
		return fmt.Errorf("insert attempt record: %w", err)
	}
	return nil
}

// Update performs an optimistic-concurrency patch keyed on the record's
// prior state. Zero rows affected means another consume won the race.
func (s *PostgresStore) Update(ctx context.Context, rec *models.AttemptRecord, prevAttemptsLeft float64, prevLastAttemptAt time.Time) error {
	if rec == nil {
		return fmt.Errorf("attempt record is required")
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE rate_limit_attempts
		SET attempts_left = $2, last_attempt_at = $3
		WHERE identifier = $1 AND attempts_left = $4 AND last_attempt_at = $5
	`, rec.Identifier, rec.AttemptsLeft, rec.LastAttemptAt, prevAttemptsLeft, prevLastAttemptAt)
	if err != nil {
		return fmt.Errorf("update attempt record: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update attempt record rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("attempt record changed concurrently: %w", sentinel.ErrConflict)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
