package repository

import (
	"context"

	"github.com/pikoUsername/roblox-searcher-backend/internal/models"
)

type BonusRepository interface {
	Create(ctx context.Context, bonus *models.Bonuses) error
	GetByName(ctx context.Context, robloxName string) (*models.Bonuses, error)
	// AwardTask appends the task and credits the reward in one atomic update;
	// a task already in the completed set fails without changing the balance.
	AwardTask(ctx context.Context, robloxName string, task models.BonusTask, reward int) (*models.Bonuses, error)
	CreditReferral(ctx context.Context, robloxName string, amount int, activatedFor string) (*models.Bonuses, error)
	Delete(ctx context.Context, robloxName string) error
}
