package lanesight

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/lanesight/lanesight/internal/domain"
	"github.com/lanesight/lanesight/internal/normalize"
	companysearchuc "github.com/lanesight/lanesight/internal/usecase/companysearch"
	shipmentsuc "github.com/lanesight/lanesight/internal/usecase/shipments"
	"github.com/lanesight/lanesight/internal/warehouse"
	"github.com/lanesight/lanesight/internal/warehouse/duckdb"
	"github.com/lanesight/lanesight/internal/warehouse/rediscache"
)

const defaultCacheTTL = 5 * time.Minute

// Internal seams so tests can swap the services out.
type companySearcher interface {
	Search(ctx context.Context, q domain.SearchQuery) (domain.SearchResult, error)
}

type shipmentLister interface {
	List(ctx context.Context, req shipmentsuc.Request) ([]domain.ShipmentRecord, error)
}

// Client is the lanesight SDK entry point.
type Client struct {
	store     *duckdb.Store
	cache     *rediscache.Store
	search    companySearcher
	shipments shipmentLister
	obs       *observer
}

// New creates a lanesight Client with an embedded warehouse.
// The provided context is used for the initial dataset load, if any.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	store, err := duckdb.NewStore(duckdb.Config{
		Path:         cfg.path,
		MemoryLimit:  cfg.memoryLimit,
		Threads:      cfg.threads,
		QueryTimeout: cfg.queryTimeout,
	}, zap.NewNop())
	if err != nil {
		return nil, fmt.Errorf("lanesight: open warehouse: %w", err)
	}

	if cfg.datasetCSV != "" {
		if _, err := store.LoadCSV(ctx, cfg.datasetCSV); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("lanesight: load dataset: %w", err)
		}
	}

	var runner warehouse.Runner = store
	var cache *rediscache.Store
	if cfg.cacheAddr != "" {
		cache, err = rediscache.NewStore(rediscache.Config{
			Addrs:    []string{cfg.cacheAddr},
			Password: cfg.cachePassword,
		})
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("lanesight: connect result cache: %w", err)
		}
		ttl := cfg.cacheTTL
		if ttl <= 0 {
			ttl = defaultCacheTTL
		}
		runner = rediscache.New(store, cache, ttl, zap.NewNop())
	}

	searchSvc := companysearchuc.New(runner)
	if cfg.clock != nil {
		searchSvc = searchSvc.WithClock(cfg.clock)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		if cache != nil {
			cache.Close()
		}
		_ = store.Close()
		return nil, err
	}

	return &Client{
		store:     store,
		cache:     cache,
		search:    searchSvc,
		shipments: shipmentsuc.New(runner),
		obs:       obs,
	}, nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.cache != nil {
		c.cache.Close()
	}
	if c.store != nil {
		_ = c.store.Close()
	}
}

// Ping checks warehouse connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.track("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// LoadCSV appends shipment records from a CSV file to the fact table.
// Returns the number of rows loaded.
func (c *Client) LoadCSV(ctx context.Context, path string) (n int64, err error) {
	start := time.Now()
	defer func() { c.obs.track("warehouse.load_csv", start, err) }()

	return c.store.LoadCSV(ctx, path)
}

// SearchCompanies normalizes the payload (flat, nested, or enveloped
// shape) and runs the aggregated company search.
func (c *Client) SearchCompanies(ctx context.Context, payload map[string]any) (res SearchResult, err error) {
	start := time.Now()
	defer func() { c.obs.track("company.search", start, err) }()

	q, err := normalize.Normalize(payload)
	if err != nil {
		return SearchResult{}, err
	}
	domRes, err := c.search.Search(ctx, q)
	if err != nil {
		return SearchResult{}, err
	}
	return searchResultFromDomain(domRes), nil
}

// CompanyShipments returns one page of the company's raw shipment
// records, most recent first.
func (c *Client) CompanyShipments(ctx context.Context, q ShipmentsQuery) (recs []Shipment, err error) {
	start := time.Now()
	defer func() { c.obs.track("company.shipments", start, err) }()

	domRecs, err := c.shipments.List(ctx, shipmentsuc.Request{
		CompanyID: q.CompanyID,
		Limit:     q.Limit,
		Offset:    q.Offset,
		DateStart: q.DateStart,
		DateEnd:   q.DateEnd,
	})
	if err != nil {
		return nil, err
	}
	return shipmentsFromDomain(domRecs), nil
}
