package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	stderrors "errors"

	"go.opentelemetry.io/otel"

	"github.com/pikoUsername/roblox-searcher-backend/internal/config"
	"github.com/pikoUsername/roblox-searcher-backend/internal/infrastructure/redis"
	"github.com/pikoUsername/roblox-searcher-backend/internal/infrastructure/roblox"
	"github.com/pikoUsername/roblox-searcher-backend/internal/models"
	pkgerrors "github.com/pikoUsername/roblox-searcher-backend/pkg/errors"
)

// CatalogService fronts the marketplace with a read-through cache. Search
// style lookups retry once on upstream throttling; listing fetches surface
// RateLimited immediately since the cache absorbs the next attempt.
type CatalogService interface {
	SearchPlayers(ctx context.Context, keyword string) ([]models.PlayerData, error)
	GamePasses(ctx context.Context, gameID int64) ([]models.GamePass, error)
	PlayerGames(ctx context.Context, playerID int64) ([]models.GameInfo, error)
	StockBalance(ctx context.Context) (int64, error)
}

type catalogService struct {
	client    roblox.Client
	cache     redis.RedisClient
	cfg       config.CacheConfig
	botUserID int64
}

func NewCatalogService(client roblox.Client, cache redis.RedisClient, cfg config.CacheConfig, botUserID int64) *catalogService {
	return &catalogService{client: client, cache: cache, cfg: cfg, botUserID: botUserID}
}

func (s *catalogService) SearchPlayers(ctx context.Context, keyword string) ([]models.PlayerData, error) {
	tracer := otel.Tracer("catalog-service")
	ctx, span := tracer.Start(ctx, "SearchPlayers")
	defer span.End()

	key := fmt.Sprintf("players_%s", keyword)
	var cached []models.PlayerData
	if ok, err := s.readCache(ctx, key, &cached); err != nil {
		return nil, err
	} else if ok {
		return cached, nil
	}

	slog.Info("sending 'search user' request to roblox api", "keyword", keyword)
	players, err := s.client.SearchPlayers(ctx, keyword)
	if stderrors.Is(err, pkgerrors.ErrRateLimited) {
		players, err = retryAfterDelay(ctx, s.cfg.SearchRetryDelay, func(ctx context.Context) ([]models.PlayerData, error) {
			return s.client.SearchPlayers(ctx, keyword)
		})
	}
	if err != nil {
		return nil, err
	}

	s.writeCache(ctx, key, players, s.cfg.PlayerSearchTTL)
	return players, nil
}

func (s *catalogService) GamePasses(ctx context.Context, gameID int64) ([]models.GamePass, error) {
	tracer := otel.Tracer("catalog-service")
	ctx, span := tracer.Start(ctx, "GamePasses")
	defer span.End()

	key := fmt.Sprintf("game_%d", gameID)
	var cached []models.GamePass
	if ok, err := s.readCache(ctx, key, &cached); err != nil {
		return nil, err
	} else if ok {
		return cached, nil
	}

	slog.Info("sending 'search by gamepasses' request to roblox api", "game_id", gameID)
	universeID, err := s.client.ResolveUniverse(ctx, gameID)
	if err != nil {
		return nil, err
	}
	passes, err := s.client.FetchGamePasses(ctx, universeID)
	if err != nil {
		return nil, err
	}

	s.writeCache(ctx, key, passes, s.cfg.ListingsTTL)
	return passes, nil
}

func (s *catalogService) PlayerGames(ctx context.Context, playerID int64) ([]models.GameInfo, error) {
	tracer := otel.Tracer("catalog-service")
	ctx, span := tracer.Start(ctx, "PlayerGames")
	defer span.End()

	key := fmt.Sprintf("player_game_%d", playerID)
	var cached []models.GameInfo
	if ok, err := s.readCache(ctx, key, &cached); err != nil {
		return nil, err
	} else if ok {
		return cached, nil
	}

	games, err := s.client.PlayerGames(ctx, playerID)
	if stderrors.Is(err, pkgerrors.ErrRateLimited) {
		games, err = retryAfterDelay(ctx, s.cfg.SearchRetryDelay, func(ctx context.Context) ([]models.GameInfo, error) {
			return s.client.PlayerGames(ctx, playerID)
		})
	}
	if err != nil {
		return nil, err
	}

	s.writeCache(ctx, key, games, 0)
	if err := s.cache.Expire(ctx, key, s.cfg.PlayerGamesTTL); err != nil {
		slog.Error("failed to set ttl on player games key", "key", key, "error", err)
	}
	return games, nil
}

func (s *catalogService) StockBalance(ctx context.Context) (int64, error) {
	tracer := otel.Tracer("catalog-service")
	ctx, span := tracer.Start(ctx, "StockBalance")
	defer span.End()

	const key = "bot_current_amount"
	var cached int64
	if ok, err := s.readCache(ctx, key, &cached); err != nil {
		return 0, err
	} else if ok {
		return cached, nil
	}

	robux, err := s.client.CurrencyBalance(ctx, s.botUserID)
	if err != nil {
		return 0, err
	}

	s.writeCache(ctx, key, robux, s.cfg.StockTTL)
	return robux, nil
}

// retryAfterDelay runs fn once more after the given delay. Used only for
// search-style reads; a second 429 is surfaced to the caller.
func retryAfterDelay[T any](ctx context.Context, delay time.Duration, fn func(context.Context) (T, error)) (T, error) {
	slog.Warn("rate limited by roblox api, retrying once", "delay", delay)
	select {
	case <-ctx.Done():
		var zero T
		return zero, fmt.Errorf("%w: %v", pkgerrors.ErrUpstream, ctx.Err())
	case <-time.After(delay):
	}
	return fn(ctx)
}

func (s *catalogService) readCache(ctx context.Context, key string, out interface{}) (bool, error) {
	raw, err := s.cache.Get(ctx, key)
	if stderrors.Is(err, redis.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: cache get %s: %v", pkgerrors.ErrUpstream, key, err)
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return false, fmt.Errorf("%w: cache decode %s: %v", pkgerrors.ErrUpstream, key, err)
	}
	slog.Info("found in redis cache", "key", key)
	return true, nil
}

func (s *catalogService) writeCache(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	raw, err := json.Marshal(value)
	if err != nil {
		slog.Error("failed to marshal cache value", "key", key, "error", err)
		return
	}
	if err := s.cache.Set(ctx, key, string(raw), ttl); err != nil {
		slog.Error("failed to cache value", "key", key, "error", err)
		return
	}
	slog.Info("cache populated", "key", key)
}
