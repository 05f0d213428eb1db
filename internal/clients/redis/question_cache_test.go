package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/yungbote/rango-rater-backend/internal/platform/logger"
)

func TestCacheRoundTrip(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("set TEST_REDIS_ADDR to run redis integration tests")
	}
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	c, err := NewCache(log, Config{Addr: addr, Prefix: "rango:test:", TTL: time.Minute})
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}
	defer c.Close()

	ctx := context.Background()
	key := "Museum " + time.Now().Format(time.RFC3339Nano)

	if _, ok, err := c.Get(ctx, key); err != nil || ok {
		t.Fatalf("Get (miss): ok=%v err=%v", ok, err)
	}
	if err := c.Set(ctx, key, []byte(`[{"topic":"t","question":"q"}]`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		t.Fatalf("Get (hit): ok=%v err=%v", ok, err)
	}
	if string(got) != `[{"topic":"t","question":"q"}]` {
		t.Fatalf("Get: unexpected %s", got)
	}
}

func TestNewCacheRequiresAddr(t *testing.T) {
	log, _ := logger.New("test")
	if _, err := NewCache(log, Config{}); err == nil {
		t.Fatalf("expected an error without an address")
	}
}
