package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wonny/conviction-radar/pkg/config"
)

// KeyPrefix namespaces every key this program writes
const KeyPrefix = "radar"

// pingTimeout bounds the startup connection check
const pingTimeout = 3 * time.Second

// Client wraps the Redis client used for shared rate limits.
// A disabled Client is valid: limiters built from it never block.
// ⭐ SSOT: Redis 연결은 여기서만 관리
type Client struct {
	rdb    *redis.Client
	prefix string
}

// New connects when REDIS_ENABLED is set and returns a disabled client otherwise
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	if !cfg.Redis.Enabled {
		return &Client{prefix: KeyPrefix}, nil
	}

	addr := fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port)
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// 시작 시 연결 확인
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis connection to %s failed: %w", addr, err)
	}

	return &Client{rdb: rdb, prefix: KeyPrefix}, nil
}

// Close closes the Redis connection
func (c *Client) Close() error {
	if c.rdb != nil {
		return c.rdb.Close()
	}
	return nil
}

// Enabled returns whether Redis is enabled
func (c *Client) Enabled() bool {
	return c != nil && c.rdb != nil
}

// Key joins parts under the client prefix: "radar:ratelimit:yahoo"
func (c *Client) Key(parts ...string) string {
	return c.prefix + ":" + strings.Join(parts, ":")
}

// Limiter returns a Wait(ctx) limiter for one shared quota
func (c *Client) Limiter(cfg RateLimitConfig) *BoundLimiter {
	return NewRateLimiter(c).Bind(cfg)
}
