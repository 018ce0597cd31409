package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "github.com/Zhima-Mochi/minishop-cart/internal/domain/cart"
	"github.com/Zhima-Mochi/minishop-cart/internal/observability"
	"github.com/redis/go-redis/v9"
)

const (
	field          = "cart"
	maxPingBackoff = 2 * time.Second
)

// Store keeps the cart snapshot in one field of a Redis hash.
type Store struct {
	client redis.UniversalClient
	key    string
}

var _ domain.Store = (*Store)(nil)

func New(client redis.UniversalClient, key string) *Store {
	return &Store{client: client, key: key}
}

func (s *Store) Read(ctx context.Context) ([]byte, error) {
	data, err := s.client.HGet(ctx, s.key, field).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("redis hget %s: %w", s.key, err)
	}
	return data, nil
}

func (s *Store) Write(ctx context.Context, data []byte) error {
	if err := s.client.HSet(ctx, s.key, field, data).Err(); err != nil {
		return fmt.Errorf("redis hset %s: %w", s.key, err)
	}
	return nil
}

// WaitReady pings until Redis answers or ctx expires, doubling the delay
// between attempts up to maxPingBackoff.
func WaitReady(ctx context.Context, client redis.UniversalClient, logger observability.Logger) error {
	if logger == nil {
		logger = observability.NopLogger()
	}
	delay := 100 * time.Millisecond
	for attempt := 1; ; attempt++ {
		err := client.Ping(ctx).Err()
		if err == nil {
			logger.Info("redis_ready", observability.F("attempts", attempt))
			return nil
		}
		logger.Warn("redis_ping_failed",
			observability.F("attempt", attempt),
			observability.F("retry_in", delay.String()),
			observability.F("error", err),
		)
		select {
		case <-ctx.Done():
			return fmt.Errorf("redis not ready after %d attempts: %w", attempt, errors.Join(ctx.Err(), err))
		case <-time.After(delay):
		}
		delay = min(delay*2, maxPingBackoff)
	}
}
