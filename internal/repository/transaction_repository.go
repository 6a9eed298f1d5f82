package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/pikoUsername/roblox-searcher-backend/internal/models"
)

type TransactionRepository interface {
	Create(ctx context.Context, tx *models.Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error)
	ListByPlayer(ctx context.Context, robloxName string) ([]models.Transaction, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.TransactionStatus) error
	// Delete exists for administrative correction only; the normal flow never
	// removes transactions.
	Delete(ctx context.Context, id uuid.UUID) error
}
