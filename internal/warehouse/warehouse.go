// Package warehouse defines the capability contract for the shipment fact
// store. Consumers hand over a parameterized statement and get generic rows
// back; connection and credentials lifecycle belong to the implementation.
package warehouse

import "context"

// Param is one named parameter binding. Values are always bound, never
// interpolated into SQL text.
type Param struct {
	Name  string
	Value any
}

// Row is one generic result row keyed by output column name.
type Row map[string]any

// Runner executes a single read-only query against the warehouse.
type Runner interface {
	RunQuery(ctx context.Context, sql string, params []Param) ([]Row, error)
}

// Pinger checks warehouse connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}
