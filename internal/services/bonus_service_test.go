package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pikoUsername/roblox-searcher-backend/internal/config"
	"github.com/pikoUsername/roblox-searcher-backend/internal/models"
	pkgerrors "github.com/pikoUsername/roblox-searcher-backend/pkg/errors"
)

func TestBonusService_GetOrCreate(t *testing.T) {
	ctx := context.Background()
	repo := newFakeBonusRepo()
	svc := NewBonusService(repo, config.DefaultPricing())

	t.Run("creates on first access", func(t *testing.T) {
		bonus, err := svc.GetOrCreate(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, "alice", bonus.RobloxName)
		assert.Zero(t, bonus.Bonus)
		assert.Empty(t, bonus.CompletedTasks)
	})

	t.Run("returns existing record", func(t *testing.T) {
		repo.byName["alice"].Bonus = 50

		bonus, err := svc.GetOrCreate(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, 50, bonus.Bonus)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := svc.GetOrCreate(ctx, "")
		assert.ErrorIs(t, err, pkgerrors.ErrInvalidInput)
	})
}

func TestBonusService_AwardTask(t *testing.T) {
	ctx := context.Background()

	t.Run("credits the configured reward", func(t *testing.T) {
		repo := newFakeBonusRepo()
		svc := NewBonusService(repo, config.DefaultPricing())

		bonus, err := svc.AwardTask(ctx, "alice", models.TaskTelegram)
		require.NoError(t, err)
		assert.Equal(t, 5, bonus.Bonus)
		assert.Contains(t, bonus.CompletedTasks, "tg")

		bonus, err = svc.AwardTask(ctx, "alice", models.TaskTrustPilot)
		require.NoError(t, err)
		assert.Equal(t, 15, bonus.Bonus)
	})

	t.Run("same task twice leaves the balance unchanged", func(t *testing.T) {
		repo := newFakeBonusRepo()
		svc := NewBonusService(repo, config.DefaultPricing())

		_, err := svc.AwardTask(ctx, "alice", models.TaskVK)
		require.NoError(t, err)

		_, err = svc.AwardTask(ctx, "alice", models.TaskVK)
		assert.ErrorIs(t, err, pkgerrors.ErrTaskAlreadyCompleted)

		bonus, err := repo.GetByName(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, 5, bonus.Bonus)
	})

	t.Run("unknown task", func(t *testing.T) {
		repo := newFakeBonusRepo()
		svc := NewBonusService(repo, config.DefaultPricing())

		_, err := svc.AwardTask(ctx, "alice", models.BonusTask("instagram"))
		assert.ErrorIs(t, err, pkgerrors.ErrInvalidInput)
	})
}
