// Package cache holds the optional Redis read-through cache used for the
// reduced account projection served by /api/user.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"quest2go/cmd/account"
)

const (
	defaultPrefix = "q2g:account:summary:"
	defaultTTL    = 5 * time.Minute
)

// AccountCache caches account.Summary values keyed by account id.
//
// Redis failures never fail a lookup: the loader result is returned and the
// error is logged. Misses are not cached, so a deleted account is reported
// as not found on the next request.
type AccountCache struct {
	rdb    redis.Cmdable
	log    *slog.Logger
	ttl    time.Duration
	prefix string

	group singleflight.Group
}

// Option configures an AccountCache.
type Option func(*AccountCache)

// WithTTL overrides the entry lifetime (default 5m).
func WithTTL(ttl time.Duration) Option {
	return func(c *AccountCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithPrefix overrides the key prefix.
func WithPrefix(prefix string) Option {
	return func(c *AccountCache) {
		if p := strings.TrimSpace(prefix); p != "" {
			c.prefix = p
		}
	}
}

// WithLogger sets the logger used for degraded-mode warnings.
func WithLogger(log *slog.Logger) Option {
	return func(c *AccountCache) {
		if log != nil {
			c.log = log
		}
	}
}

// NewAccountCache wraps rdb. The client is owned by the caller.
func NewAccountCache(rdb redis.Cmdable, opts ...Option) (*AccountCache, error) {
	if rdb == nil {
		return nil, errors.New("cache: nil redis client")
	}
	c := &AccountCache{
		rdb:    rdb,
		log:    slog.Default(),
		ttl:    defaultTTL,
		prefix: defaultPrefix,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

func (c *AccountCache) key(id string) string { return c.prefix + id }

// Summary returns the cached projection for id, calling load on a miss.
// Concurrent misses for the same id share one load.
func (c *AccountCache) Summary(ctx context.Context, id string, load func(context.Context, string) (account.Summary, error)) (account.Summary, error) {
	if load == nil {
		return account.Summary{}, errors.New("cache: nil loader")
	}

	raw, err := c.rdb.Get(ctx, c.key(id)).Bytes()
	switch {
	case err == nil:
		var s account.Summary
		if jerr := json.Unmarshal(raw, &s); jerr == nil && s.ID == id {
			return s, nil
		}
		c.log.Warn("cache.account.decode.fail", "account_id", id)
	case errors.Is(err, redis.Nil):
	default:
		c.log.Warn("cache.account.get.fail", "err", err)
	}

	v, err, _ := c.group.Do(id, func() (any, error) {
		s, err := load(ctx, id)
		if err != nil {
			return account.Summary{}, err
		}
		c.store(ctx, s)
		return s, nil
	})
	if err != nil {
		return account.Summary{}, err
	}
	return v.(account.Summary), nil
}

func (c *AccountCache) store(ctx context.Context, s account.Summary) {
	b, err := json.Marshal(s)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, c.key(s.ID), b, c.ttl).Err(); err != nil {
		c.log.Warn("cache.account.set.fail", "err", err)
	}
}

// Invalidate drops the cached entry for id.
func (c *AccountCache) Invalidate(ctx context.Context, id string) error {
	return c.rdb.Del(ctx, c.key(id)).Err()
}

// Ping reports whether Redis is reachable. Used by readiness checks.
func (c *AccountCache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}
