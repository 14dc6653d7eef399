package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"research-rag/internal/model"
)

// InsightCache keeps each user's recent insight history in Redis. A short
// lived dirty marker is set while a new record is in flight to the persist
// queue so readers fall through to MySQL instead of caching a stale list.
type InsightCache struct {
	client         *redisv9.Client
	historyTTL     time.Duration
	dirtyMarkerTTL time.Duration
}

func NewInsightCache(client *redisv9.Client, historyTTL, dirtyMarkerTTL time.Duration) *InsightCache {
	if historyTTL <= 0 {
		historyTTL = 60 * time.Second
	}
	if dirtyMarkerTTL <= 0 {
		dirtyMarkerTTL = 5 * time.Second
	}
	return &InsightCache{
		client:         client,
		historyTTL:     historyTTL,
		dirtyMarkerTTL: dirtyMarkerTTL,
	}
}

func (c *InsightCache) GetHistory(ctx context.Context, userID uint) ([]model.InsightRecord, bool, error) {
	raw, err := c.client.Get(ctx, c.historyKey(userID)).Result()
	if errors.Is(err, redisv9.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get insight history failed: %w", err)
	}

	var records []model.InsightRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached insight history failed: %w", err)
	}
	return records, true, nil
}

func (c *InsightCache) SetHistory(ctx context.Context, userID uint, records []model.InsightRecord) error {
	payload, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshal insight history failed: %w", err)
	}
	if err := c.client.Set(ctx, c.historyKey(userID), payload, c.historyTTL).Err(); err != nil {
		return fmt.Errorf("redis set insight history failed: %w", err)
	}
	return nil
}

func (c *InsightCache) DeleteHistory(ctx context.Context, userID uint) error {
	if err := c.client.Del(ctx, c.historyKey(userID)).Err(); err != nil {
		return fmt.Errorf("redis delete insight history failed: %w", err)
	}
	return nil
}

func (c *InsightCache) MarkDirty(ctx context.Context, userID uint) error {
	if err := c.client.Set(ctx, c.dirtyKey(userID), "1", c.dirtyMarkerTTL).Err(); err != nil {
		return fmt.Errorf("redis set dirty marker failed: %w", err)
	}
	return nil
}

func (c *InsightCache) IsDirty(ctx context.Context, userID uint) (bool, error) {
	exists, err := c.client.Exists(ctx, c.dirtyKey(userID)).Result()
	if err != nil {
		return false, fmt.Errorf("redis check dirty marker failed: %w", err)
	}
	return exists > 0, nil
}

func (c *InsightCache) historyKey(userID uint) string {
	return fmt.Sprintf("research:insights:%d", userID)
}

func (c *InsightCache) dirtyKey(userID uint) string {
	return fmt.Sprintf("research:insights:dirty:%d", userID)
}
