package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	stderrors "errors"

	"github.com/pikoUsername/roblox-searcher-backend/internal/models"
	"github.com/pikoUsername/roblox-searcher-backend/internal/repository"
	pkgerrors "github.com/pikoUsername/roblox-searcher-backend/pkg/errors"
)

// Roblox security cookies always carry this prefix; anything else is not a
// usable buyer credential.
const tokenWarningPrefix = "_|WARNING:-DO-NOT-SHARE-THIS."

type BotService interface {
	Create(ctx context.Context, robloxName, token string, isActive bool) (*models.BotToken, error)
	Get(ctx context.Context, id int64) (*models.BotToken, error)
	GetByToken(ctx context.Context, token string) (*models.BotToken, error)
	List(ctx context.Context) ([]models.BotToken, error)
	Update(ctx context.Context, id int64, upd repository.BotTokenUpdate) (*models.BotToken, error)
	Delete(ctx context.Context, id int64) error
	Select(ctx context.Context, id int64) (*models.BotToken, error)
}

type botService struct {
	repo repository.BotTokenRepository
}

func NewBotService(repo repository.BotTokenRepository) *botService {
	return &botService{repo: repo}
}

func (s *botService) Create(ctx context.Context, robloxName, token string, isActive bool) (*models.BotToken, error) {
	token, err := normalizeToken(token)
	if err != nil {
		return nil, err
	}

	if existing, err := s.repo.GetByToken(ctx, token); err == nil && existing != nil {
		slog.Warn("bot token already registered", "bot_id", existing.ID, "roblox_name", existing.RobloxName)
		return nil, pkgerrors.ErrTokenExists
	} else if err != nil && !stderrors.Is(err, pkgerrors.ErrBotNotFound) {
		return nil, err
	}

	bot := &models.BotToken{RobloxName: robloxName, Token: token, IsActive: isActive}
	if err := s.repo.Create(ctx, bot); err != nil {
		return nil, err
	}
	return bot, nil
}

func (s *botService) Get(ctx context.Context, id int64) (*models.BotToken, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *botService) GetByToken(ctx context.Context, token string) (*models.BotToken, error) {
	return s.repo.GetByToken(ctx, token)
}

func (s *botService) List(ctx context.Context) ([]models.BotToken, error) {
	return s.repo.List(ctx)
}

func (s *botService) Update(ctx context.Context, id int64, upd repository.BotTokenUpdate) (*models.BotToken, error) {
	if upd.Token != nil {
		token, err := normalizeToken(*upd.Token)
		if err != nil {
			return nil, err
		}
		upd.Token = &token
	}
	return s.repo.Update(ctx, id, upd)
}

func (s *botService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// Select marks the credential as taken by a purchase workflow. The flag is
// never cleared automatically; an administrative update resets it.
func (s *botService) Select(ctx context.Context, id int64) (*models.BotToken, error) {
	bot, err := s.repo.SelectExclusive(ctx, id)
	if err != nil {
		return nil, err
	}
	slog.Info("bot selected for workflow", "bot_id", bot.ID, "roblox_name", bot.RobloxName)
	return bot, nil
}

func normalizeToken(token string) (string, error) {
	token = strings.ReplaceAll(strings.TrimSpace(token), " ", "")
	if !strings.HasPrefix(token, tokenWarningPrefix) {
		return "", fmt.Errorf("%w: token must start with the roblox warning prefix", pkgerrors.ErrInvalidInput)
	}
	return token, nil
}
