package service

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	stderrors "errors"

	"github.com/pikoUsername/roblox-searcher-backend/internal/infrastructure/redis"
	pkgerrors "github.com/pikoUsername/roblox-searcher-backend/pkg/errors"
)

// WithdrawalService issues short-lived authorization ids gating low-value
// purchases. Presence of the key within its TTL is the sole proof of
// authorization; Consume removes it so an id gates exactly one purchase.
type WithdrawalService interface {
	Issue(ctx context.Context) (int64, error)
	Check(ctx context.Context, id int64) (bool, error)
	Consume(ctx context.Context, id int64) (bool, error)
}

type withdrawalService struct {
	cache redis.RedisClient
	ttl   time.Duration
}

func NewWithdrawalService(cache redis.RedisClient, ttl time.Duration) *withdrawalService {
	return &withdrawalService{cache: cache, ttl: ttl}
}

func (s *withdrawalService) Issue(ctx context.Context) (int64, error) {
	id := rand.Int63()
	if err := s.cache.Set(ctx, withdrawalKey(id), "1", s.ttl); err != nil {
		return 0, fmt.Errorf("%w: store withdrawal authorization: %v", pkgerrors.ErrUpstream, err)
	}

	slog.Info("withdrawal authorization issued", "withdrawal_id", id, "ttl", s.ttl)
	return id, nil
}

func (s *withdrawalService) Check(ctx context.Context, id int64) (bool, error) {
	val, err := s.cache.Get(ctx, withdrawalKey(id))
	if stderrors.Is(err, redis.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: check withdrawal authorization: %v", pkgerrors.ErrUpstream, err)
	}
	return val == "1", nil
}

func (s *withdrawalService) Consume(ctx context.Context, id int64) (bool, error) {
	val, err := s.cache.GetDel(ctx, withdrawalKey(id))
	if stderrors.Is(err, redis.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: consume withdrawal authorization: %v", pkgerrors.ErrUpstream, err)
	}

	slog.Info("withdrawal authorization consumed", "withdrawal_id", id)
	return val == "1", nil
}

func withdrawalKey(id int64) string {
	return fmt.Sprintf("withdrawal_%d", id)
}
