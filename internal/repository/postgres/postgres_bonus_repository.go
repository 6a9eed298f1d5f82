package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"

	"github.com/lib/pq"

	"github.com/pikoUsername/roblox-searcher-backend/internal/models"
	pkgerrors "github.com/pikoUsername/roblox-searcher-backend/pkg/errors"
)

type PostgresBonusRepository struct {
	db *sql.DB
}

func NewPostgresBonusRepository(db *sql.DB) *PostgresBonusRepository {
	return &PostgresBonusRepository{db: db}
}

func (r *PostgresBonusRepository) Create(ctx context.Context, bonus *models.Bonuses) error {
	if bonus == nil || bonus.RobloxName == "" {
		return fmt.Errorf("%w: roblox name is required", pkgerrors.ErrInvalidInput)
	}

	tasks, err := json.Marshal(bonus.CompletedTasks)
	if err != nil {
		return fmt.Errorf("failed to marshal completed tasks: %w", err)
	}
	if bonus.CompletedTasks == nil {
		tasks = []byte("[]")
	}

	query := `INSERT INTO bonuses (roblox_name, bonus, activated_for, completed_tasks) VALUES ($1, $2, $3, $4)`
	_, err = r.db.ExecContext(ctx, query, bonus.RobloxName, bonus.Bonus, nullString(bonus.ActivatedFor), tasks)
	if err != nil {
		var pqErr *pq.Error
		if stderrors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("%w: bonus record for %q", pkgerrors.ErrConflict, bonus.RobloxName)
		}
		return fmt.Errorf("failed to create bonus record: %w", err)
	}

	slog.Info("bonus record created", "method", "Create", "roblox_name", bonus.RobloxName)
	return nil
}

func (r *PostgresBonusRepository) GetByName(ctx context.Context, robloxName string) (*models.Bonuses, error) {
	query := `SELECT roblox_name, bonus, activated_for, completed_tasks FROM bonuses WHERE roblox_name = $1`
	return scanBonuses(r.db.QueryRowContext(ctx, query, robloxName))
}

// AwardTask credits the reward and records the task in one statement: the
// already-completed predicate and the append cannot race per player.
func (r *PostgresBonusRepository) AwardTask(ctx context.Context, robloxName string, task models.BonusTask, reward int) (*models.Bonuses, error) {
	query := `
		UPDATE bonuses
		SET bonus = bonus + $3, completed_tasks = completed_tasks || to_jsonb($2::text)
		WHERE roblox_name = $1 AND NOT completed_tasks ? $2
		RETURNING roblox_name, bonus, activated_for, completed_tasks`
	bonus, err := scanBonuses(r.db.QueryRowContext(ctx, query, robloxName, string(task), reward))
	if err == nil {
		slog.Info("bonus task awarded", "method", "AwardTask", "roblox_name", robloxName, "task", task, "reward", reward)
		return bonus, nil
	}
	if !stderrors.Is(err, pkgerrors.ErrBonusNotFound) {
		return nil, err
	}

	// Either the record does not exist or the task is already completed.
	if _, getErr := r.GetByName(ctx, robloxName); getErr != nil {
		return nil, getErr
	}
	return nil, pkgerrors.ErrTaskAlreadyCompleted
}

func (r *PostgresBonusRepository) CreditReferral(ctx context.Context, robloxName string, amount int, activatedFor string) (*models.Bonuses, error) {
	query := `
		UPDATE bonuses
		SET bonus = bonus + $2, activated_for = $3
		WHERE roblox_name = $1
		RETURNING roblox_name, bonus, activated_for, completed_tasks`
	bonus, err := scanBonuses(r.db.QueryRowContext(ctx, query, robloxName, amount, nullString(activatedFor)))
	if err != nil {
		return nil, err
	}

	slog.Info("referral credited", "method", "CreditReferral", "roblox_name", robloxName, "amount", amount, "activated_for", activatedFor)
	return bonus, nil
}

func (r *PostgresBonusRepository) Delete(ctx context.Context, robloxName string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM bonuses WHERE roblox_name = $1`, robloxName)
	if err != nil {
		return fmt.Errorf("failed to delete bonus record: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete bonus record: %w", err)
	}
	if affected == 0 {
		return pkgerrors.ErrBonusNotFound
	}
	return nil
}

func scanBonuses(row rowScanner) (*models.Bonuses, error) {
	var bonus models.Bonuses
	var activatedFor sql.NullString
	var tasks []byte
	err := row.Scan(&bonus.RobloxName, &bonus.Bonus, &activatedFor, &tasks)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, pkgerrors.ErrBonusNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bonus record: %w", err)
	}
	bonus.ActivatedFor = activatedFor.String
	if len(tasks) > 0 {
		if err := json.Unmarshal(tasks, &bonus.CompletedTasks); err != nil {
			return nil, fmt.Errorf("failed to unmarshal completed tasks: %w", err)
		}
	}
	return &bonus, nil
}
