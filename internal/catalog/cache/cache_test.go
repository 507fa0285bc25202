package cache

import (
	"context"
	"testing"
	"time"

	"clientdesk_backend/internal/catalog/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func testCache(t *testing.T) (*StageCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return New(rdb, time.Minute), mr
}

func TestGetMissesOnEmptyCache(t *testing.T) {
	c, _ := testCache(t)

	if _, ok := c.Get(context.Background()); ok {
		t.Fatal("empty cache must miss")
	}
}

func TestSetThenGetRoundTrips(t *testing.T) {
	c, _ := testCache(t)
	ctx := context.Background()

	stages := []repository.Stage{
		{ID: uuid.New(), Key: "new_lead", Name: "New Lead", DisplayOrder: 1},
		{ID: uuid.New(), Key: "won", Name: "Won", DisplayOrder: 2, Won: true},
	}
	c.Set(ctx, stages)

	got, ok := c.Get(ctx)
	if !ok {
		t.Fatal("cache must hit after Set")
	}
	if len(got) != 2 || got[0].Key != "new_lead" || !got[1].Won {
		t.Fatalf("cached stages = %+v", got)
	}
}

func TestGetMissesAfterTTL(t *testing.T) {
	c, mr := testCache(t)
	ctx := context.Background()

	c.Set(ctx, []repository.Stage{{ID: uuid.New(), Key: "new_lead"}})
	mr.FastForward(2 * time.Minute)

	if _, ok := c.Get(ctx); ok {
		t.Fatal("cache must miss after the TTL elapses")
	}
}

func TestInvalidateDropsEntry(t *testing.T) {
	c, _ := testCache(t)
	ctx := context.Background()

	c.Set(ctx, []repository.Stage{{ID: uuid.New(), Key: "new_lead"}})
	c.Invalidate(ctx)

	if _, ok := c.Get(ctx); ok {
		t.Fatal("cache must miss after Invalidate")
	}
}

func TestNilClientIsSafe(t *testing.T) {
	c := New(nil, time.Minute)
	ctx := context.Background()

	c.Set(ctx, []repository.Stage{{Key: "new_lead"}})
	if _, ok := c.Get(ctx); ok {
		t.Fatal("nil-client cache must always miss")
	}
	c.Invalidate(ctx)
}
