package lanesight

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	path         string // empty = in-memory
	memoryLimit  string
	threads      int
	queryTimeout time.Duration
	datasetCSV   string

	cacheAddr     string
	cachePassword string
	cacheTTL      time.Duration

	clock func() time.Time

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithDuckDB sets the warehouse database file. Without this option the
// warehouse lives in memory and is lost on Close.
func WithDuckDB(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.path = path
	})
}

// WithMemoryLimit caps DuckDB memory use, e.g. "2GB".
func WithMemoryLimit(limit string) Option {
	return optionFunc(func(c *clientConfig) {
		c.memoryLimit = limit
	})
}

// WithThreads bounds DuckDB's worker threads.
func WithThreads(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.threads = n
	})
}

// WithQueryTimeout bounds each warehouse query round-trip.
func WithQueryTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.queryTimeout = d
	})
}

// WithDataset loads the shipment fact table from a CSV file on startup.
func WithDataset(csvPath string) Option {
	return optionFunc(func(c *clientConfig) {
		c.datasetCSV = csvPath
	})
}

// WithResultCache caches compiled-query results in Redis. TTL defaults
// to 5 minutes when zero.
func WithResultCache(addr, password string, ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheAddr = addr
		c.cachePassword = password
		c.cacheTTL = ttl
	})
}

// WithClock overrides the time source for the trailing 12-month window.
// Intended for tests and replays against fixed datasets.
func WithClock(now func() time.Time) Option {
	return optionFunc(func(c *clientConfig) {
		c.clock = now
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
