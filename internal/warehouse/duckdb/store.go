// Package duckdb implements the warehouse contract on an embedded DuckDB
// database. It stands in for the managed warehouse in local and test
// deployments: same statement shapes, same named-parameter binding.
package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"github.com/marcboeker/go-duckdb/v2"
	"go.uber.org/zap"

	"github.com/lanesight/lanesight/internal/domain"
	"github.com/lanesight/lanesight/internal/metrics"
	"github.com/lanesight/lanesight/internal/warehouse"
)

// Compile-time check: Store implements the warehouse contract.
var (
	_ warehouse.Runner = (*Store)(nil)
	_ warehouse.Pinger = (*Store)(nil)
)

// Config holds store settings.
type Config struct {
	// Path is the database file; empty means in-memory.
	Path string
	// MemoryLimit caps DuckDB memory use, e.g. "1GB".
	MemoryLimit string
	// Threads bounds DuckDB's worker threads. 0 keeps the engine default.
	Threads int
	// QueryTimeout bounds each RunQuery round-trip. 0 disables the bound.
	QueryTimeout time.Duration
}

// Store runs parameterized queries against the shipment fact table.
type Store struct {
	db           *sql.DB
	queryTimeout time.Duration
	logger       *zap.Logger
}

// NewStore opens (or creates) the database, applies pragmas, and bootstraps
// the fact table schema.
func NewStore(cfg Config, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	pragmas := []string{"PRAGMA enable_progress_bar=false"}
	if cfg.MemoryLimit != "" {
		pragmas = append(pragmas, fmt.Sprintf("PRAGMA memory_limit='%s'", cfg.MemoryLimit))
	}
	if cfg.Threads > 0 {
		pragmas = append(pragmas, fmt.Sprintf("PRAGMA threads=%d", cfg.Threads))
	}

	connector, err := duckdb.NewConnector(cfg.Path, func(execer driver.ExecerContext) error {
		for _, pragma := range pragmas {
			if _, err := execer.ExecContext(context.Background(), pragma, nil); err != nil {
				return fmt.Errorf("pragma %q: %w", pragma, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create duckdb connector: %w", err)
	}

	db := sql.OpenDB(connector)
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("bootstrap schema: %w", err)
	}

	return &Store{db: db, queryTimeout: cfg.QueryTimeout, logger: logger}, nil
}

// schemaSQL bootstraps the shipment fact table. shipment_id is monotone by
// insertion and provides the first-seen / tie-break ordering.
const schemaSQL = `CREATE TABLE IF NOT EXISTS shipments (
  shipment_id    BIGINT PRIMARY KEY,
  company_id     VARCHAR NOT NULL,
  company_name   VARCHAR NOT NULL,
  shipped_on     DATE,
  snapshot_date  DATE,
  mode           VARCHAR NOT NULL,
  origin_country VARCHAR NOT NULL,
  dest_country   VARCHAR NOT NULL,
  carrier        VARCHAR,
  hs_code        VARCHAR,
  value_usd      DOUBLE,
  weight_kg      DOUBLE
)`

// RunQuery binds the named parameters positionally, executes the statement,
// and returns generic rows. The call is bounded by the configured query
// timeout layered under the caller's context, so request cancellation
// abandons the query instead of letting it run on.
func (s *Store) RunQuery(ctx context.Context, sqlText string, params []warehouse.Param) ([]warehouse.Row, error) {
	bound, args, err := bindPositional(sqlText, params)
	if err != nil {
		return nil, domain.NewQueryError("bind", err)
	}

	if s.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.queryTimeout)
		defer cancel()
	}

	start := time.Now()
	rows, err := s.db.QueryContext(ctx, bound, args...)
	metrics.ObserveWarehouseQuery(time.Since(start), err)
	if err != nil {
		s.logger.Error("warehouse query failed", zap.Error(err))
		return nil, domain.NewQueryError("run", err)
	}
	defer rows.Close()

	out, err := scanRows(rows)
	if err != nil {
		return nil, domain.NewQueryError("scan", err)
	}
	return out, nil
}

func scanRows(rows *sql.Rows) ([]warehouse.Row, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}

	var out []warehouse.Row
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		row := make(warehouse.Row, len(cols))
		for i, col := range cols {
			row[col] = values[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate: %w", err)
	}
	return out, nil
}

// Ping checks the database is responsive.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close shuts down the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// LoadCSV bulk-loads shipment fixtures from a headered CSV file whose
// columns match the fact table schema. Operator tooling, not a request path.
func (s *Store) LoadCSV(ctx context.Context, path string) (int64, error) {
	// COPY cannot bind the path as a parameter; escape it as a literal.
	escaped := strings.ReplaceAll(path, "'", "''")
	stmt := fmt.Sprintf("INSERT INTO shipments SELECT * FROM read_csv('%s', header=true)", escaped)

	res, err := s.db.ExecContext(ctx, stmt)
	if err != nil {
		return 0, fmt.Errorf("load csv %s: %w", path, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	s.logger.Info("loaded shipment fixtures", zap.String("path", path), zap.Int64("rows", n))
	return n, nil
}
