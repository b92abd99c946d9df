// Package quizcache keeps generated eligibility quizzes in Redis so repeat
// visits to a scheme do not call the language model again.
package quizcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultTTL is used when New is given a non-positive ttl.
const DefaultTTL = 24 * time.Hour

const keyPrefix = "mysarkar:quiz:"

// Dial connects to Redis at addr and verifies it with PING.
func Dial(ctx context.Context, addr string) (*goredis.Client, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, errors.New("redis address is empty")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// Cache stores question lists per scheme. A nil *Cache is valid and
// behaves as an always-empty cache.
type Cache struct {
	rdb goredis.Cmdable
	ttl time.Duration
	log *zap.Logger
}

// New wraps a Redis client.
func New(rdb goredis.Cmdable, ttl time.Duration, logger *zap.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{rdb: rdb, ttl: ttl, log: logger}
}

// Key returns the Redis key for a scheme's quiz.
func Key(schemeID string) string {
	return keyPrefix + schemeID
}

// Get returns the cached questions for schemeID.
func (c *Cache) Get(ctx context.Context, schemeID string) ([]string, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, Key(schemeID)).Bytes()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			c.log.Warn("quiz cache read failed", zap.String("scheme_id", schemeID), zap.Error(err))
		}
		return nil, false
	}
	var qs []string
	if err := json.Unmarshal(raw, &qs); err != nil || len(qs) == 0 {
		return nil, false
	}
	return qs, true
}

// Set stores questions for schemeID. Errors are logged, not returned.
func (c *Cache) Set(ctx context.Context, schemeID string, questions []string) {
	if c == nil || c.rdb == nil || len(questions) == 0 {
		return
	}
	raw, err := json.Marshal(questions)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, Key(schemeID), raw, c.ttl).Err(); err != nil {
		c.log.Warn("quiz cache write failed", zap.String("scheme_id", schemeID), zap.Error(err))
	}
}

// Invalidate drops the cached quiz, e.g. after the scheme's criteria change.
func (c *Cache) Invalidate(ctx context.Context, schemeID string) {
	if c == nil || c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, Key(schemeID)).Err(); err != nil {
		c.log.Warn("quiz cache delete failed", zap.String("scheme_id", schemeID), zap.Error(err))
	}
}
