package service

import (
	"context"
	"fmt"
	"log/slog"

	stderrors "errors"

	"go.opentelemetry.io/otel"

	"github.com/pikoUsername/roblox-searcher-backend/internal/config"
	"github.com/pikoUsername/roblox-searcher-backend/internal/models"
	"github.com/pikoUsername/roblox-searcher-backend/internal/repository"
	pkgerrors "github.com/pikoUsername/roblox-searcher-backend/pkg/errors"
)

type BonusService interface {
	GetOrCreate(ctx context.Context, robloxName string) (*models.Bonuses, error)
	AwardTask(ctx context.Context, robloxName string, task models.BonusTask) (*models.Bonuses, error)
}

type bonusService struct {
	repo    repository.BonusRepository
	pricing config.Pricing
}

func NewBonusService(repo repository.BonusRepository, pricing config.Pricing) *bonusService {
	return &bonusService{repo: repo, pricing: pricing}
}

// GetOrCreate lazily creates a zero-balance record on first access.
func (s *bonusService) GetOrCreate(ctx context.Context, robloxName string) (*models.Bonuses, error) {
	if robloxName == "" {
		return nil, fmt.Errorf("%w: roblox name is required", pkgerrors.ErrInvalidInput)
	}

	bonus, err := s.repo.GetByName(ctx, robloxName)
	if err == nil {
		return bonus, nil
	}
	if !stderrors.Is(err, pkgerrors.ErrBonusNotFound) {
		return nil, err
	}

	bonus = &models.Bonuses{RobloxName: robloxName, CompletedTasks: []string{}}
	if createErr := s.repo.Create(ctx, bonus); createErr != nil {
		// Lost a creation race; the record exists now.
		if stderrors.Is(createErr, pkgerrors.ErrConflict) {
			return s.repo.GetByName(ctx, robloxName)
		}
		return nil, createErr
	}

	slog.Info("bonus record created lazily", "roblox_name", robloxName)
	return bonus, nil
}

func (s *bonusService) AwardTask(ctx context.Context, robloxName string, task models.BonusTask) (*models.Bonuses, error) {
	tracer := otel.Tracer("bonus-service")
	ctx, span := tracer.Start(ctx, "AwardTask")
	defer span.End()

	reward, ok := s.pricing.TaskRewards[task]
	if !ok {
		return nil, fmt.Errorf("%w: unknown bonus task %q", pkgerrors.ErrInvalidInput, task)
	}

	if _, err := s.GetOrCreate(ctx, robloxName); err != nil {
		return nil, err
	}

	bonus, err := s.repo.AwardTask(ctx, robloxName, task, reward)
	if err != nil {
		return nil, err
	}

	slog.Info("bonus task awarded", "roblox_name", robloxName, "task", task, "reward", reward, "balance", bonus.Bonus)
	return bonus, nil
}
