// Package redis implements the caches on a shared redis instance so
// multiple service processes see the same freshness window.
package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// subjectsKey is the fixed cache key for the active-subject listing. The
// value is the serialized JSON the listing endpoint returns.
const subjectsKey = "subjects_list"

// SubjectListCache stores one subject listing under a fixed key with a
// short TTL. Invalidate runs synchronously inside every subject mutation.
type SubjectListCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSubjectListCache(client *redis.Client, ttl time.Duration) *SubjectListCache {
	return &SubjectListCache{client: client, ttl: ttl}
}

func (c *SubjectListCache) Get(ctx context.Context) ([]byte, bool) {
	payload, err := c.client.Get(ctx, subjectsKey).Bytes()
	if err != nil {
		return nil, false
	}
	return payload, true
}

func (c *SubjectListCache) Set(ctx context.Context, payload []byte) error {
	return c.client.Set(ctx, subjectsKey, payload, c.ttl).Err()
}

func (c *SubjectListCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, subjectsKey).Err()
}
