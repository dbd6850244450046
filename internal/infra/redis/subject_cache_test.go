package redis

import (
	"bytes"
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestSubjectListCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	cache := NewSubjectListCache(newClient(mr), time.Minute)

	if _, ok := cache.Get(ctx); ok {
		t.Fatalf("expected miss on empty cache")
	}

	payload := []byte(`[{"id":1,"name":"Math"}]`)
	if err := cache.Set(ctx, payload); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, ok := cache.Get(ctx)
	if !ok || !bytes.Equal(got, payload) {
		t.Fatalf("expected cached payload, got ok=%v %s", ok, got)
	}

	// The entry carries the TTL and drops off on its own.
	mr.FastForward(2 * time.Minute)
	if _, ok := cache.Get(ctx); ok {
		t.Fatalf("expected miss after TTL")
	}
}

func TestSubjectListCacheInvalidate(t *testing.T) {
	ctx := context.Background()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	cache := NewSubjectListCache(newClient(mr), time.Minute)
	if err := cache.Set(ctx, []byte(`[]`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := cache.Invalidate(ctx); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if _, ok := cache.Get(ctx); ok {
		t.Fatalf("expected miss after invalidate")
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
