package repository

import (
	"context"

	"github.com/pikoUsername/roblox-searcher-backend/internal/models"
)

// BotTokenUpdate is a partial update; nil fields are left untouched.
type BotTokenUpdate struct {
	RobloxName *string
	Token      *string
	IsActive   *bool
	IsSelected *bool
}

type BotTokenRepository interface {
	Create(ctx context.Context, bot *models.BotToken) error
	GetByID(ctx context.Context, id int64) (*models.BotToken, error)
	GetByToken(ctx context.Context, token string) (*models.BotToken, error)
	List(ctx context.Context) ([]models.BotToken, error)
	Update(ctx context.Context, id int64, upd BotTokenUpdate) (*models.BotToken, error)
	Delete(ctx context.Context, id int64) error
	// SelectExclusive flips is_selected in a single conditional update so
	// concurrent callers cannot both take the same credential.
	SelectExclusive(ctx context.Context, id int64) (*models.BotToken, error)
}
