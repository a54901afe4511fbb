package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"tripplanner-backend/models"
	"tripplanner-backend/services"
)

// ConnectRedis returns nil when Redis is unreachable; callers then run
// without a summary cache.
func ConnectRedis(ctx context.Context, redisURL string) *redis.Client {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		slog.Warn("Invalid REDIS_URL, running without cache", "error", err)
		return nil
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		slog.Warn("Redis not available, running without cache", "error", err)
		_ = client.Close()
		return nil
	}

	slog.Info("Redis connected")
	return client
}

// SummaryCache stores serialized expense summaries per plan.
type SummaryCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ services.SummaryCache = (*SummaryCache)(nil)

func NewSummaryCache(client *redis.Client, ttl time.Duration) *SummaryCache {
	return &SummaryCache{client: client, ttl: ttl}
}

func summaryKey(planID uuid.UUID) string {
	return "plan:" + planID.String() + ":expense-summary"
}

func (c *SummaryCache) Get(ctx context.Context, planID uuid.UUID) (*models.ExpenseSummary, bool, error) {
	raw, err := c.client.Get(ctx, summaryKey(planID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read summary cache: %w", err)
	}

	var summary models.ExpenseSummary
	if err := json.Unmarshal(raw, &summary); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached summary: %w", err)
	}
	return &summary, true, nil
}

func (c *SummaryCache) Set(ctx context.Context, planID uuid.UUID, summary *models.ExpenseSummary) error {
	raw, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	if err := c.client.Set(ctx, summaryKey(planID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write summary cache: %w", err)
	}
	return nil
}

func (c *SummaryCache) Invalidate(ctx context.Context, planID uuid.UUID) error {
	if err := c.client.Del(ctx, summaryKey(planID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate summary cache: %w", err)
	}
	return nil
}
