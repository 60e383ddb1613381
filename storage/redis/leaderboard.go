// Package redis caches the XP leaderboard in a sorted set so the hot read
// path skips the join on every request.
package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/gamification"
)

const (
	leaderboardKey     = "leaderboard:xp"
	leaderboardInfoKey = "leaderboard:info"
	leaderboardTTL     = 5 * time.Minute
)

type LeaderboardCache struct {
	client *redis.Client
}

var _ gamification.LeaderboardCache = (*LeaderboardCache)(nil)

func NewLeaderboardCache(cfg core.RedisConfig) (*LeaderboardCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.Wrap(err, "pinging redis")
	}
	return &LeaderboardCache{client: client}, nil
}

func (c *LeaderboardCache) GetTop(ctx context.Context, limit int) ([]gamification.LeaderboardEntry, error) {
	ids, err := c.client.ZRevRange(ctx, leaderboardKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, errors.Wrap(err, "reading leaderboard zset")
	}
	if len(ids) == 0 {
		return nil, nil
	}

	raws, err := c.client.HMGet(ctx, leaderboardInfoKey, ids...).Result()
	if err != nil {
		return nil, errors.Wrap(err, "reading leaderboard info hash")
	}
	entries := make([]gamification.LeaderboardEntry, 0, len(ids))
	for _, raw := range raws {
		str, ok := raw.(string)
		if !ok {
			// hash entry missing for a ranked ID, treat the cache as stale
			return nil, nil
		}
		var entry gamification.LeaderboardEntry
		if err = json.Unmarshal([]byte(str), &entry); err != nil {
			return nil, errors.Wrap(err, "unmarshalling leaderboard entry")
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (c *LeaderboardCache) Set(ctx context.Context, entries []gamification.LeaderboardEntry) error {
	pipe := c.client.TxPipeline()
	pipe.Del(ctx, leaderboardKey, leaderboardInfoKey)
	for _, entry := range entries {
		raw, err := json.Marshal(entry)
		if err != nil {
			return errors.Wrap(err, "marshalling leaderboard entry")
		}
		pipe.ZAdd(ctx, leaderboardKey, redis.Z{Score: float64(entry.XP), Member: entry.UserID})
		pipe.HSet(ctx, leaderboardInfoKey, entry.UserID, raw)
	}
	pipe.Expire(ctx, leaderboardKey, leaderboardTTL)
	pipe.Expire(ctx, leaderboardInfoKey, leaderboardTTL)
	_, err := pipe.Exec(ctx)
	return errors.Wrap(err, "writing leaderboard cache")
}

func (c *LeaderboardCache) Invalidate(ctx context.Context) error {
	err := c.client.Del(ctx, leaderboardKey, leaderboardInfoKey).Err()
	return errors.Wrap(err, "invalidating leaderboard cache")
}

func (c *LeaderboardCache) Close() error { return c.client.Close() }
