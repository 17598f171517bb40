// Package cache holds the Redis-backed read caches. Caching is best effort:
// a cache failure degrades to a recompute, never to a request failure.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const standingsTTL = 30 * time.Second

type StandingsCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStandingsCache(ctx context.Context, addr, password string, db int) (*StandingsCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return &StandingsCache{client: client, ttl: standingsTTL}, nil
}

func standingsKey(tournamentID int) string {
	return fmt.Sprintf("standings:%d", tournamentID)
}

// Get unmarshals the cached standings into dest. The boolean reports a hit.
func (c *StandingsCache) Get(ctx context.Context, tournamentID int, dest interface{}) (bool, error) {
	data, err := c.client.Get(ctx, standingsKey(tournamentID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *StandingsCache) Set(ctx context.Context, tournamentID int, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, standingsKey(tournamentID), data, c.ttl).Err()
}

func (c *StandingsCache) Invalidate(ctx context.Context, tournamentID int) error {
	return c.client.Del(ctx, standingsKey(tournamentID)).Err()
}

func (c *StandingsCache) Close() error {
	return c.client.Close()
}
