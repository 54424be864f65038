package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ayushmohite/auctionhouse/internal/auction"
)

const activeListingKey = "auctions:active"

// RedisListingCache implements auction.ListingCache using go-redis.
// The homepage listing is read far more often than it changes, so a
// short TTL plus invalidate-on-write keeps it fresh enough.
type RedisListingCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisListingCache creates a new Redis-backed listing cache
func NewRedisListingCache(client *redis.Client, ttl time.Duration) *RedisListingCache {
	return &RedisListingCache{client: client, ttl: ttl}
}

// GetActive returns the cached listing, or (nil, nil) on a miss
func (c *RedisListingCache) GetActive(ctx context.Context) ([]*auction.Auction, error) {
	data, err := c.client.Get(ctx, activeListingKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read listing cache: %w", err)
	}

	var auctions []*auction.Auction
	if err := json.Unmarshal(data, &auctions); err != nil {
		// A corrupt entry is treated as a miss; the next SetActive replaces it
		return nil, nil
	}
	return auctions, nil
}

// SetActive stores the listing with the configured TTL
func (c *RedisListingCache) SetActive(ctx context.Context, auctions []*auction.Auction) error {
	data, err := json.Marshal(auctions)
	if err != nil {
		return fmt.Errorf("failed to marshal listing: %w", err)
	}
	if err := c.client.Set(ctx, activeListingKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write listing cache: %w", err)
	}
	return nil
}

// Invalidate drops the cached listing
func (c *RedisListingCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, activeListingKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate listing cache: %w", err)
	}
	return nil
}
