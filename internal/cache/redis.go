package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/kartikfr/card-genius/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	defaultTTL        = 10 * time.Minute
	defaultUpdatesTTL = 6 * time.Hour
)

type Cache struct {
	client     *redis.Client
	ttl        time.Duration
	updatesTTL time.Duration
}

func NewCache(client *redis.Client, ttl, updatesTTL time.Duration) *Cache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if updatesTTL <= 0 {
		updatesTTL = defaultUpdatesTTL
	}
	return &Cache{client: client, ttl: ttl, updatesTTL: updatesTTL}
}

// ProfileKey encodes a spending profile in category order.
func ProfileKey(p domain.SpendingProfile) string {
	parts := make([]string, len(domain.Categories))
	for i, c := range domain.Categories {
		parts[i] = fmt.Sprintf("%d", p.Amount(c))
	}
	return strings.Join(parts, "-")
}

func buildKey(catalogKey string, profile domain.SpendingProfile) string {
	return fmt.Sprintf("rec:catalog:%s:profile:%s", catalogKey, ProfileKey(profile))
}

func buildUpdatesKey(cardID string) string {
	return fmt.Sprintf("updates:card:%s", cardID)
}

// Get recommendations from cache
func (c *Cache) Get(ctx context.Context, catalogKey string, profile domain.SpendingProfile) ([]domain.RecommendationResult, bool, error) {
	key := buildKey(catalogKey, profile)
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get recommendations from cache: %w", err)
	}

	var recs []domain.RecommendationResult
	if err := json.Unmarshal([]byte(val), &recs); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal recommendations %s: %w", key, err)
	}

	return recs, true, nil
}

// Store recommendations in cache
func (c *Cache) Set(ctx context.Context, catalogKey string, profile domain.SpendingProfile, recs []domain.RecommendationResult) error {
	key := buildKey(catalogKey, profile)
	val, err := json.Marshal(recs)
	if err != nil {
		return fmt.Errorf("failed to marshal recommendations: %w", err)
	}

	if err := c.client.Set(ctx, key, val, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set recommendations in cache: %w", err)
	}

	return nil
}

// ClearRecommendations drops every cached result: used when the catalog changes
func (c *Cache) ClearRecommendations(ctx context.Context) error {
	return c.deletePattern(ctx, "rec:catalog:*")
}

func (c *Cache) GetUpdates(ctx context.Context, cardID string) (*domain.CardUpdates, bool, error) {
	val, err := c.client.Get(ctx, buildUpdatesKey(cardID)).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get updates from cache: %w", err)
	}

	var updates domain.CardUpdates
	if err := json.Unmarshal([]byte(val), &updates); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal updates for %s: %w", cardID, err)
	}
	return &updates, true, nil
}

func (c *Cache) SetUpdates(ctx context.Context, updates *domain.CardUpdates) error {
	val, err := json.Marshal(updates)
	if err != nil {
		return fmt.Errorf("failed to marshal updates: %w", err)
	}
	if err := c.client.Set(ctx, buildUpdatesKey(updates.CardID), val, c.updatesTTL).Err(); err != nil {
		return fmt.Errorf("failed to set updates in cache: %w", err)
	}
	return nil
}

func (c *Cache) ClearUpdates(ctx context.Context, cardID string) error {
	if err := c.client.Del(ctx, buildUpdatesKey(cardID)).Err(); err != nil {
		return fmt.Errorf("cache delete updates %s: %w", cardID, err)
	}
	return nil
}

func (c *Cache) deletePattern(ctx context.Context, pattern string) error {
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("cache delete %s: %w", iter.Val(), err)
		}
	}
	return iter.Err()
}

// Ping connectivity
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
