// services/leaderboard_cache.go
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pong-leaderboard/models"

	"github.com/redis/go-redis/v9"
)

// LeaderboardCache stores leaderboard reads per generation. Invalidate moves
// to a new generation, so a read that started before it can only write to a
// generation nobody asks for anymore.
type LeaderboardCache interface {
	Generation(ctx context.Context) (int64, error)
	Get(ctx context.Context, gen int64) (games []models.GameRecord, ok bool, err error)
	Set(ctx context.Context, gen int64, games []models.GameRecord) error
	Invalidate(ctx context.Context) error
}

const DefaultLeaderboardCacheKey = "pong:leaderboard:top"

// RedisLeaderboardCache keeps the generation counter at Key+":gen" and each
// generation's leaderboard as a JSON blob at Key+":<gen>" with a TTL.
type RedisLeaderboardCache struct {
	Client *redis.Client
	Key    string
	TTL    time.Duration
}

func NewRedisLeaderboardCache(client *redis.Client, ttl time.Duration) *RedisLeaderboardCache {
	return &RedisLeaderboardCache{Client: client, Key: DefaultLeaderboardCacheKey, TTL: ttl}
}

func (c *RedisLeaderboardCache) generationKey() string {
	return c.Key + ":gen"
}

func (c *RedisLeaderboardCache) entryKey(gen int64) string {
	return fmt.Sprintf("%s:%d", c.Key, gen)
}

func (c *RedisLeaderboardCache) Generation(ctx context.Context) (int64, error) {
	gen, err := c.Client.Get(ctx, c.generationKey()).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get %s: %w", c.generationKey(), err)
	}
	return gen, nil
}

func (c *RedisLeaderboardCache) Get(ctx context.Context, gen int64) ([]models.GameRecord, bool, error) {
	key := c.entryKey(gen)
	raw, err := c.Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}

	var games []models.GameRecord
	if err := json.Unmarshal(raw, &games); err != nil {
		return nil, false, fmt.Errorf("decode cached leaderboard: %w", err)
	}
	return games, true, nil
}

func (c *RedisLeaderboardCache) Set(ctx context.Context, gen int64, games []models.GameRecord) error {
	raw, err := json.Marshal(games)
	if err != nil {
		return fmt.Errorf("encode leaderboard: %w", err)
	}
	key := c.entryKey(gen)
	if err := c.Client.Set(ctx, key, raw, c.TTL).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (c *RedisLeaderboardCache) Invalidate(ctx context.Context) error {
	if err := c.Client.Incr(ctx, c.generationKey()).Err(); err != nil {
		return fmt.Errorf("redis incr %s: %w", c.generationKey(), err)
	}
	return nil
}
