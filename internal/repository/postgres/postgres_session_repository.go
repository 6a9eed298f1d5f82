package repository

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pikoUsername/roblox-searcher-backend/internal/models"
	pkgerrors "github.com/pikoUsername/roblox-searcher-backend/pkg/errors"
)

type PostgresSessionTokenRepository struct {
	db *sql.DB
}

func NewPostgresSessionTokenRepository(db *sql.DB) *PostgresSessionTokenRepository {
	return &PostgresSessionTokenRepository{db: db}
}

func (r *PostgresSessionTokenRepository) Create(ctx context.Context, token *models.SessionToken) error {
	if token == nil {
		return fmt.Errorf("%w: session token is nil", pkgerrors.ErrInvalidInput)
	}

	query := `INSERT INTO tokens (id, expires_at, is_active) VALUES ($1, $2, $3) RETURNING created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, token.ID, token.ExpiresAt, token.IsActive).Scan(&token.CreatedAt, &token.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create session token: %w", err)
	}

	slog.Info("session token created", "method", "Create", "token_id", token.ID, "expires_at", token.ExpiresAt)
	return nil
}

func (r *PostgresSessionTokenRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.SessionToken, error) {
	var token models.SessionToken
	query := `SELECT id, expires_at, is_active, created_at, updated_at FROM tokens WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&token.ID, &token.ExpiresAt, &token.IsActive, &token.CreatedAt, &token.UpdatedAt)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, pkgerrors.ErrSessionTokenNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session token: %w", err)
	}
	return &token, nil
}

func (r *PostgresSessionTokenRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tokens WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session token: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete session token: %w", err)
	}
	if affected == 0 {
		return pkgerrors.ErrSessionTokenNotFound
	}
	return nil
}
