package service

import (
	"context"
	"log/slog"
	"time"

	stderrors "errors"

	"github.com/google/uuid"

	"github.com/pikoUsername/roblox-searcher-backend/internal/models"
	"github.com/pikoUsername/roblox-searcher-backend/internal/repository"
	pkgerrors "github.com/pikoUsername/roblox-searcher-backend/pkg/errors"
)

type SessionService interface {
	Create(ctx context.Context, expiry time.Duration) (*models.SessionToken, error)
	Get(ctx context.Context, id uuid.UUID) (*models.SessionToken, error)
	Validate(ctx context.Context, id uuid.UUID) (bool, error)
	Revoke(ctx context.Context, id uuid.UUID) error
}

type sessionService struct {
	repo repository.SessionTokenRepository
}

func NewSessionService(repo repository.SessionTokenRepository) *sessionService {
	return &sessionService{repo: repo}
}

func (s *sessionService) Create(ctx context.Context, expiry time.Duration) (*models.SessionToken, error) {
	token := &models.SessionToken{
		ID:        uuid.New(),
		ExpiresAt: time.Now().UTC().Add(expiry),
		IsActive:  true,
	}
	if err := s.repo.Create(ctx, token); err != nil {
		return nil, err
	}
	return token, nil
}

func (s *sessionService) Get(ctx context.Context, id uuid.UUID) (*models.SessionToken, error) {
	return s.repo.GetByID(ctx, id)
}

// Validate reports whether the token is live. An expired token found here is
// deleted as a side effect.
func (s *sessionService) Validate(ctx context.Context, id uuid.UUID) (bool, error) {
	token, err := s.repo.GetByID(ctx, id)
	if stderrors.Is(err, pkgerrors.ErrSessionTokenNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if !token.IsValid() {
		if delErr := s.repo.Delete(ctx, id); delErr != nil {
			slog.Error("failed to evict expired session token", "token_id", id, "error", delErr)
		}
		return false, nil
	}
	return true, nil
}

func (s *sessionService) Revoke(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
