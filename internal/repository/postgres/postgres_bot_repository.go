package repository

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"log/slog"

	"github.com/lib/pq"

	"github.com/pikoUsername/roblox-searcher-backend/internal/models"
	"github.com/pikoUsername/roblox-searcher-backend/internal/repository"
	pkgerrors "github.com/pikoUsername/roblox-searcher-backend/pkg/errors"
)

const uniqueViolation = "23505"

type PostgresBotTokenRepository struct {
	db *sql.DB
}

func NewPostgresBotTokenRepository(db *sql.DB) *PostgresBotTokenRepository {
	return &PostgresBotTokenRepository{db: db}
}

func (r *PostgresBotTokenRepository) Create(ctx context.Context, bot *models.BotToken) error {
	if bot == nil {
		return fmt.Errorf("%w: bot token is nil", pkgerrors.ErrInvalidInput)
	}
	if bot.Token == "" {
		return fmt.Errorf("%w: token is required", pkgerrors.ErrInvalidInput)
	}

	query := `INSERT INTO user_tokens (roblox_name, token, is_active, is_selected) VALUES ($1, $2, $3, FALSE) RETURNING id`
	err := r.db.QueryRowContext(ctx, query, bot.RobloxName, bot.Token, bot.IsActive).Scan(&bot.ID)
	if err != nil {
		var pqErr *pq.Error
		if stderrors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return pkgerrors.ErrTokenExists
		}
		return fmt.Errorf("failed to create bot token: %w", err)
	}

	slog.Info("bot token created", "method", "Create", "bot_id", bot.ID, "roblox_name", bot.RobloxName)
	return nil
}

func (r *PostgresBotTokenRepository) GetByID(ctx context.Context, id int64) (*models.BotToken, error) {
	query := `SELECT id, roblox_name, token, is_active, is_selected FROM user_tokens WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresBotTokenRepository) GetByToken(ctx context.Context, token string) (*models.BotToken, error) {
	query := `SELECT id, roblox_name, token, is_active, is_selected FROM user_tokens WHERE token = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, token))
}

func (r *PostgresBotTokenRepository) List(ctx context.Context) ([]models.BotToken, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, roblox_name, token, is_active, is_selected FROM user_tokens ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list bot tokens: %w", err)
	}
	defer rows.Close()

	var bots []models.BotToken
	for rows.Next() {
		var bot models.BotToken
		if err := rows.Scan(&bot.ID, &bot.RobloxName, &bot.Token, &bot.IsActive, &bot.IsSelected); err != nil {
			return nil, fmt.Errorf("failed to scan bot token: %w", err)
		}
		bots = append(bots, bot)
	}
	return bots, rows.Err()
}

func (r *PostgresBotTokenRepository) Update(ctx context.Context, id int64, upd repository.BotTokenUpdate) (*models.BotToken, error) {
	query := `
		UPDATE user_tokens
		SET roblox_name = COALESCE($2, roblox_name),
		    token       = COALESCE($3, token),
		    is_active   = COALESCE($4, is_active),
		    is_selected = COALESCE($5, is_selected)
		WHERE id = $1
		RETURNING id, roblox_name, token, is_active, is_selected`
	bot, err := r.scanOne(r.db.QueryRowContext(ctx, query, id, upd.RobloxName, upd.Token, upd.IsActive, upd.IsSelected))
	if err != nil {
		var pqErr *pq.Error
		if stderrors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, pkgerrors.ErrTokenExists
		}
		return nil, err
	}

	slog.Info("bot token updated", "method", "Update", "bot_id", id)
	return bot, nil
}

func (r *PostgresBotTokenRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM user_tokens WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete bot token: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete bot token: %w", err)
	}
	if affected == 0 {
		return pkgerrors.ErrBotNotFound
	}
	return nil
}

// SelectExclusive is a single conditional update: the read of
// is_active/is_selected and the write of is_selected happen in one statement,
// so of two concurrent callers exactly one wins.
func (r *PostgresBotTokenRepository) SelectExclusive(ctx context.Context, id int64) (*models.BotToken, error) {
	query := `UPDATE user_tokens SET is_selected = TRUE WHERE id = $1 AND is_active AND NOT is_selected RETURNING id, roblox_name, token, is_active, is_selected`
	bot, err := r.scanOne(r.db.QueryRowContext(ctx, query, id))
	if err == nil {
		slog.Info("bot token selected", "method", "SelectExclusive", "bot_id", id)
		return bot, nil
	}
	if !stderrors.Is(err, pkgerrors.ErrBotNotFound) {
		return nil, err
	}

	// No row matched the predicate; fetch the record to tell why.
	existing, getErr := r.GetByID(ctx, id)
	if getErr != nil {
		return nil, getErr
	}
	if !existing.IsActive {
		return nil, pkgerrors.ErrBotNotActive
	}
	return nil, pkgerrors.ErrBotAlreadySelected
}

func (r *PostgresBotTokenRepository) scanOne(row *sql.Row) (*models.BotToken, error) {
	var bot models.BotToken
	err := row.Scan(&bot.ID, &bot.RobloxName, &bot.Token, &bot.IsActive, &bot.IsSelected)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, pkgerrors.ErrBotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bot token: %w", err)
	}
	return &bot, nil
}
