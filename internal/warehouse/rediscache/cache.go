// Package rediscache decorates a warehouse Runner with a Redis-backed
// result cache. The engine itself stays cache-free; this layer sits at the
// warehouse boundary and is wired in only when configured.
//
// Cache failures never surface to callers: a broken cache degrades to a
// pass-through, and a warehouse error is never masked by a stale entry.
package rediscache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"

	"github.com/lanesight/lanesight/internal/metrics"
	"github.com/lanesight/lanesight/internal/warehouse"
)

const keyPrefix = "lanesight:whcache:"

// kv is the consumer interface for the cache backend.
type kv interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedRunner serves repeated identical statements from Redis.
type CachedRunner struct {
	inner  warehouse.Runner
	store  kv
	ttl    time.Duration
	logger *zap.Logger
}

// New creates a caching decorator with the given entry TTL.
func New(inner warehouse.Runner, store kv, ttl time.Duration, logger *zap.Logger) *CachedRunner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedRunner{inner: inner, store: store, ttl: ttl, logger: logger}
}

// RunQuery returns a cached row set or executes the inner runner.
func (c *CachedRunner) RunQuery(ctx context.Context, sql string, params []warehouse.Param) ([]warehouse.Row, error) {
	key := cacheKey(sql, params)

	if rows, ok := c.getFromCache(ctx, key); ok {
		metrics.WarehouseCacheTotal.WithLabelValues("hit").Inc()
		return rows, nil
	}
	metrics.WarehouseCacheTotal.WithLabelValues("miss").Inc()

	rows, err := c.inner.RunQuery(ctx, sql, params)
	if err != nil {
		return nil, err
	}

	c.putToCache(ctx, key, rows)
	return rows, nil
}

// cacheKey hashes the statement and its ordered parameter bindings. The
// compiler is deterministic, so equal queries share a key.
func cacheKey(sql string, params []warehouse.Param) string {
	h := sha256.New()
	h.Write([]byte(sql))
	for _, p := range params {
		fmt.Fprintf(h, "\x00%s=%v", p.Name, p.Value)
	}
	return keyPrefix + hex.EncodeToString(h.Sum(nil))
}

func (c *CachedRunner) getFromCache(ctx context.Context, key string) ([]warehouse.Row, bool) {
	data, found, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warn("warehouse cache get failed", zap.Error(err))
		return nil, false
	}
	if !found {
		return nil, false
	}

	var rows []warehouse.Row
	if err := msgpack.Unmarshal(data, &rows); err != nil {
		c.logger.Warn("warehouse cache entry corrupt", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return rows, true
}

func (c *CachedRunner) putToCache(ctx context.Context, key string, rows []warehouse.Row) {
	data, err := msgpack.Marshal(rows)
	if err != nil {
		c.logger.Warn("warehouse cache encode failed", zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("warehouse cache set failed", zap.Error(err))
	}
}
