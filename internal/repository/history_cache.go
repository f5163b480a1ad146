package repository

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/mocktestapp/mocktest-backend/internal/config"
	"github.com/mocktestapp/mocktest-backend/internal/model"
)

// HistoryCache mirrors each user's recent results in Redis so history stays
// readable when the durable store is down. Newest first, capped per user.
type HistoryCache struct {
	rdb   *redis.Client
	limit int
}

// NewHistoryCache creates a HistoryCache keeping at most limit results per
// user.
func NewHistoryCache(rdb *redis.Client, limit int) *HistoryCache {
	return &HistoryCache{rdb: rdb, limit: limit}
}

// Push prepends a result to the user's cached history and trims the list
// to the cap.
func (c *HistoryCache) Push(ctx context.Context, res *model.Result) error {
	payload, err := json.Marshal(res)
	if err != nil {
		return err
	}

	key := config.CacheKey.TestHistoryKey(res.UserID.String())
	pipe := c.rdb.TxPipeline()
	pipe.LPush(ctx, key, payload)
	pipe.LTrim(ctx, key, 0, int64(c.limit-1))
	_, err = pipe.Exec(ctx)
	return err
}

// List returns the user's cached results, newest first.
func (c *HistoryCache) List(ctx context.Context, userID uuid.UUID) ([]model.Result, error) {
	key := config.CacheKey.TestHistoryKey(userID.String())
	raw, err := c.rdb.LRange(ctx, key, 0, int64(c.limit-1)).Result()
	if err != nil {
		return nil, err
	}

	results := make([]model.Result, 0, len(raw))
	for _, item := range raw {
		var res model.Result
		if err := json.Unmarshal([]byte(item), &res); err != nil {
			// A corrupt entry should not poison the whole history.
			continue
		}
		results = append(results, res)
	}
	return results, nil
}

// Clear drops the user's cached history.
func (c *HistoryCache) Clear(ctx context.Context, userID uuid.UUID) error {
	return c.rdb.Del(ctx, config.CacheKey.TestHistoryKey(userID.String())).Err()
}
