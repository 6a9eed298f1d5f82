package repository

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/pikoUsername/roblox-searcher-backend/internal/infrastructure/observability"
	"github.com/pikoUsername/roblox-searcher-backend/internal/models"
	pkgerrors "github.com/pikoUsername/roblox-searcher-backend/pkg/errors"
)

type PostgresTransactionRepository struct {
	db *sql.DB
}

func NewPostgresTransactionRepository(db *sql.DB) *PostgresTransactionRepository {
	return &PostgresTransactionRepository{db: db}
}

func (r *PostgresTransactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	var err error
	tracer := otel.Tracer("transaction-repository")
	ctx, span := tracer.Start(ctx, "CreateTransaction")
	defer span.End()

	start := time.Now()
	defer func() {
		status := "success"
		if err != nil {
			status = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		observability.RepositoryCalls.WithLabelValues("CreateTransaction", status).Inc()
		observability.RepositoryDuration.WithLabelValues("CreateTransaction").Observe(time.Since(start).Seconds())
	}()

	if tx == nil {
		err = fmt.Errorf("%w: transaction is nil", pkgerrors.ErrInvalidInput)
		return err
	}
	if !tx.Status.Valid() {
		err = fmt.Errorf("%w: invalid transaction status %q", pkgerrors.ErrInvalidInput, tx.Status)
		slog.Error("invalid transaction status", "method", "Create", "status", tx.Status)
		return err
	}
	if tx.RobloxUsername == "" {
		err = fmt.Errorf("%w: roblox username is required", pkgerrors.ErrInvalidInput)
		return err
	}

	span.SetAttributes(
		attribute.String("transaction_id", tx.ID.String()),
		attribute.Int64("game_id", tx.GameID),
		attribute.Int64("gamepass_id", tx.GamepassID),
		attribute.String("status", string(tx.Status)),
	)

	query := `INSERT INTO transactions (id, amount, robux_amount, game_id, gamepass_id, email, status, roblox_username) VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING created_at, updated_at`
	err = r.db.QueryRowContext(ctx, query,
		tx.ID, tx.Amount, tx.RobuxAmount, tx.GameID, tx.GamepassID,
		nullString(tx.Email), tx.Status, tx.RobloxUsername,
	).Scan(&tx.CreatedAt, &tx.UpdatedAt)
	if err != nil {
		slog.Error("failed to create transaction", "method", "Create", "transaction_id", tx.ID, "roblox_username", tx.RobloxUsername, "error", err)
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	slog.Info("transaction created", "method", "Create", "transaction_id", tx.ID, "game_id", tx.GameID, "gamepass_id", tx.GamepassID, "status", tx.Status)
	return nil
}

func (r *PostgresTransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	var err error
	tracer := otel.Tracer("transaction-repository")
	ctx, span := tracer.Start(ctx, "GetTransactionByID")
	span.SetAttributes(attribute.String("transaction_id", id.String()))
	defer span.End()

	start := time.Now()
	defer func() {
		status := "success"
		if err != nil {
			status = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		observability.RepositoryCalls.WithLabelValues("GetTransactionByID", status).Inc()
		observability.RepositoryDuration.WithLabelValues("GetTransactionByID").Observe(time.Since(start).Seconds())
	}()

	query := `SELECT id, amount, robux_amount, game_id, gamepass_id, email, status, roblox_username, created_at, updated_at FROM transactions WHERE id = $1`
	tx, scanErr := scanTransaction(r.db.QueryRowContext(ctx, query, id))
	if stderrors.Is(scanErr, sql.ErrNoRows) {
		err = pkgerrors.ErrTransactionNotFound
		return nil, err
	}
	if scanErr != nil {
		err = fmt.Errorf("failed to get transaction by id: %w", scanErr)
		slog.Error("failed to get transaction by id", "method", "GetByID", "transaction_id", id, "error", scanErr)
		return nil, err
	}
	return tx, nil
}

func (r *PostgresTransactionRepository) ListByPlayer(ctx context.Context, robloxName string) ([]models.Transaction, error) {
	query := `SELECT id, amount, robux_amount, game_id, gamepass_id, email, status, roblox_username, created_at, updated_at FROM transactions WHERE roblox_username = $1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, robloxName)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var result []models.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		result = append(result, *tx)
	}
	return result, rows.Err()
}

func (r *PostgresTransactionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.TransactionStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: invalid transaction status %q", pkgerrors.ErrInvalidInput, status)
	}

	query := `UPDATE transactions SET status = $2, updated_at = now() WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("failed to update transaction status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update transaction status: %w", err)
	}
	if affected == 0 {
		return pkgerrors.ErrTransactionNotFound
	}

	slog.Info("transaction status updated", "method", "UpdateStatus", "transaction_id", id, "status", status)
	return nil
}

func (r *PostgresTransactionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	if affected == 0 {
		return pkgerrors.ErrTransactionNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	var tx models.Transaction
	var email sql.NullString
	err := row.Scan(&tx.ID, &tx.Amount, &tx.RobuxAmount, &tx.GameID, &tx.GamepassID, &email, &tx.Status, &tx.RobloxUsername, &tx.CreatedAt, &tx.UpdatedAt)
	if err != nil {
		return nil, err
	}
	tx.Email = email.String
	return &tx, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
