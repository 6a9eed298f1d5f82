package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/pikoUsername/roblox-searcher-backend/internal/models"
)

type SessionTokenRepository interface {
	Create(ctx context.Context, token *models.SessionToken) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.SessionToken, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
