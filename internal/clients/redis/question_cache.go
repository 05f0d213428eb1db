package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/rango-rater-backend/internal/platform/logger"
)

// Cache stores generated payloads by key. A miss is (nil, false, nil).
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte) error
	Client() goredis.UniversalClient
	Close() error
}

type Config struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	TTL      time.Duration
}

type cache struct {
	log    *logger.Logger
	rdb    *goredis.Client
	prefix string
	ttl    time.Duration
}

// NewCache connects and pings Redis. It fails when REDIS_ADDR is empty or unreachable.
func NewCache(log *logger.Logger, cfg Config) (Cache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	prefix := strings.TrimSpace(cfg.Prefix)
	if prefix == "" {
		prefix = "rango:questions:"
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &cache{
		log:    log.With("service", "RedisQuestionCache"),
		rdb:    rdb,
		prefix: prefix,
		ttl:    ttl,
	}, nil
}

func (c *cache) key(k string) string {
	return c.prefix + strings.ToLower(strings.TrimSpace(k))
}

func (c *cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	raw, err := c.rdb.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return raw, true, nil
}

func (c *cache) Set(ctx context.Context, key string, val []byte) error {
	return c.rdb.Set(ctx, c.key(key), val, c.ttl).Err()
}

func (c *cache) Client() goredis.UniversalClient { return c.rdb }

func (c *cache) Close() error {
	return c.rdb.Close()
}
