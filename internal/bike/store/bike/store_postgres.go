package bike

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"velofit/internal/bike/models"
	"velofit/internal/sentinel"
)

// PostgresStore persists bikes in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed bike store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Insert(ctx context.Context, bike *models.Bike) error {
	if bike == nil {
		return fmt.Errorf("bike is required")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bikes (id, owner_email, name, kind, stack_mm, reach_mm, saddle_height_mm, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, bike.ID, bike.OwnerEmail, bike.Name, bike.Kind, bike.StackMM, bike.ReachMM, bike.SaddleHeightMM, bike.CreatedAt, bike.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("bike already exists: %w", sentinel.ErrConflict)
		}
		return fmt.Errorf("insert bike: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Bike, error) {
	var bike models.Bike
	err := s.db.QueryRowContext(ctx, `
		SELECT id, owner_email, name, kind, stack_mm, reach_mm, saddle_height_mm, created_at, updated_at
		FROM bikes WHERE id = $1
	`, id).Scan(&bike.ID, &bike.OwnerEmail, &bike.Name, &bike.Kind, &bike.StackMM,
		&bike.ReachMM, &bike.SaddleHeightMM, &bike.CreatedAt, &bike.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("bike not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find bike: %w", err)
	}
	return &bike, nil
}

func (s *PostgresStore) ListByOwner(ctx context.Context, ownerEmail string) ([]models.Bike, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_email, name, kind, stack_mm, reach_mm, saddle_height_mm, created_at, updated_at
		FROM bikes WHERE owner_email = $1
		ORDER BY created_at
	`, ownerEmail)
	if err != nil {
		return nil, fmt.Errorf("list bikes: %w", err)
	}
	defer rows.Close()

	var out []models.Bike
	for rows.Next() {
		var bike models.Bike
		if err := rows.Scan(&bike.ID, &bike.OwnerEmail, &bike.Name, &bike.Kind, &bike.StackMM,
			&bike.ReachMM, &bike.SaddleHeightMM, &bike.CreatedAt, &bike.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan bike: %w", err)
		}
		out = append(out, bike)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list bikes rows: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Update(ctx context.Context, bike *models.Bike) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE bikes
		SET name = $2, kind = $3, stack_mm = $4, reach_mm = $5, saddle_height_mm = $6, updated_at = $7
		WHERE id = $1
	`, bike.ID, bike.Name, bike.Kind, bike.StackMM, bike.ReachMM, bike.SaddleHeightMM, bike.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update bike: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update bike rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("bike not found: %w", sentinel.ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM bikes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete bike: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete bike rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("bike not found: %w", sentinel.ErrNotFound)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
