package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nikhilarsid/review-service/internal/domain"
)

const (
	keyPrefix = "reviews:product:"
	genPrefix = "reviews:gen:"
)

// allField is the hash field holding the unfiltered list.
const allField = "*"

// ReviewCache implements repository.ReviewCache using one Redis hash per
// product. Each field is a merchant filter, so a single DEL invalidates
// every cached list of the product. A per-product generation counter, bumped
// on every invalidation, keeps a list read before a mutation from being
// written back after it. The counter has no expiry so it never resets.
type ReviewCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewReviewCache creates a Redis-backed review list cache.
func NewReviewCache(client *redis.Client, ttl time.Duration) *ReviewCache {
	return &ReviewCache{
		client: client,
		ttl:    ttl,
	}
}

func key(productID string) string {
	return keyPrefix + productID
}

func genKey(productID string) string {
	return genPrefix + productID
}

func field(merchantID string) string {
	if merchantID == "" {
		return allField
	}
	return "m:" + merchantID
}

// Get returns the cached list for the product and merchant filter.
func (c *ReviewCache) Get(ctx context.Context, productID, merchantID string) ([]domain.Review, bool, error) {
	data, err := c.client.HGet(ctx, key(productID), field(merchantID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis hget reviews: %w", err)
	}

	var reviews []domain.Review
	if err := json.Unmarshal(data, &reviews); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached reviews: %w", err)
	}
	if reviews == nil {
		reviews = []domain.Review{}
	}
	return reviews, true, nil
}

// Generation returns the invalidation counter of the product, 0 if it was
// never invalidated.
func (c *ReviewCache) Generation(ctx context.Context, productID string) (int64, error) {
	gen, err := c.client.Get(ctx, genKey(productID)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("redis get review generation: %w", err)
	}
	return gen, nil
}

// Set stores the list and refreshes the expiry of the product hash, but only
// while the product is still at generation. It reports whether the list was
// stored; false means an invalidation won the race and the list is stale.
func (c *ReviewCache) Set(ctx context.Context, productID, merchantID string, generation int64, reviews []domain.Review) (bool, error) {
	data, err := json.Marshal(reviews)
	if err != nil {
		return false, fmt.Errorf("marshal reviews: %w", err)
	}

	k, gk := key(productID), genKey(productID)
	stored := false
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, gk).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != generation {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, k, field(merchantID), data)
			pipe.Expire(ctx, k, c.ttl)
			return nil
		})
		if err != nil {
			return err
		}
		stored = true
		return nil
	}, gk)
	if errors.Is(err, redis.TxFailedErr) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis hset reviews: %w", err)
	}
	return stored, nil
}

// Invalidate bumps the product generation and removes every cached list.
func (c *ReviewCache) Invalidate(ctx context.Context, productID string) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey(productID))
		pipe.Del(ctx, key(productID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis invalidate reviews: %w", err)
	}
	return nil
}
