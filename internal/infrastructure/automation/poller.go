package automation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	stderrors "errors"

	"github.com/pikoUsername/roblox-searcher-backend/internal/infrastructure/redis"
	pkgerrors "github.com/pikoUsername/roblox-searcher-backend/pkg/errors"
)

// MarkerKey is written by the buyer worker while it holds an unresolved
// purchase and cleared when the result event is applied.
const MarkerKey = "purchase_confirmed"

type MarkerStatus string

const (
	MarkerPresent MarkerStatus = "present"
	MarkerAbsent  MarkerStatus = "absent"
)

// ConfirmationPoller checks whether the buyer worker already observed a
// purchase confirmation. Timeout expiry is the normal outcome and yields
// MarkerAbsent, not an error.
type ConfirmationPoller interface {
	WaitForMarker(ctx context.Context, timeout time.Duration) (MarkerStatus, error)
}

type RedisPoller struct {
	cache    redis.RedisClient
	interval time.Duration
}

func NewRedisPoller(cache redis.RedisClient, interval time.Duration) *RedisPoller {
	return &RedisPoller{cache: cache, interval: interval}
}

func (p *RedisPoller) WaitForMarker(ctx context.Context, timeout time.Duration) (MarkerStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		_, err := p.cache.Get(ctx, MarkerKey)
		if err == nil {
			slog.Info("confirmation marker found")
			return MarkerPresent, nil
		}
		if !stderrors.Is(err, redis.ErrKeyNotFound) {
			if ctx.Err() != nil {
				return MarkerAbsent, nil
			}
			return MarkerAbsent, fmt.Errorf("%w: confirmation marker poll: %v", pkgerrors.ErrUpstream, err)
		}

		select {
		case <-ctx.Done():
			return MarkerAbsent, nil
		case <-ticker.C:
		}
	}
}
