// Package shipments serves the bounded per-company drill-down over raw
// shipment records.
package shipments

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lanesight/lanesight/internal/domain"
	"github.com/lanesight/lanesight/internal/querygen"
	"github.com/lanesight/lanesight/internal/warehouse"
)

// Request identifies one drill-down page.
type Request struct {
	CompanyID string
	// Limit defaults to 50 when zero; clamped to [1, 200].
	Limit  int
	Offset int
	// DateStart/DateEnd optionally bound the effective shipment date.
	DateStart *time.Time
	DateEnd   *time.Time
}

// Service fetches shipment records. Stateless; safe for concurrent use.
type Service struct {
	wh warehouse.Runner
}

// New creates a shipment detail service.
func New(wh warehouse.Runner) *Service {
	return &Service{wh: wh}
}

// List returns the company's shipments ordered by effective date descending,
// insertion order breaking ties.
func (s *Service) List(ctx context.Context, req Request) ([]domain.ShipmentRecord, error) {
	if strings.TrimSpace(req.CompanyID) == "" {
		return nil, fmt.Errorf("%w: company_id is required", domain.ErrInvalidArgument)
	}

	limit := req.Limit
	if limit == 0 {
		limit = domain.DefaultDetailLimit
	}
	page := domain.ClampPage(limit, req.Offset, domain.MaxDetailLimit)

	stmt := querygen.CompileShipments(req.CompanyID, req.DateStart, req.DateEnd, page)
	rows, err := s.wh.RunQuery(ctx, stmt.SQL, stmt.Params)
	if err != nil {
		return nil, err
	}

	out := make([]domain.ShipmentRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, recordFromRow(row))
	}
	return out, nil
}

func recordFromRow(row warehouse.Row) domain.ShipmentRecord {
	rec := domain.ShipmentRecord{
		Mode:        domain.Mode(asString(row["mode"])),
		Origin:      asString(row["origin_country"]),
		Destination: asString(row["dest_country"]),
		Carrier:     asString(row["carrier"]),
		ValueUSD:    asFloatPtr(row["value_usd"]),
		WeightKG:    asFloatPtr(row["weight_kg"]),
	}
	if t, ok := row["shipped_on"].(time.Time); ok {
		rec.ShippedOn = t
	}
	return rec
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asFloatPtr(v any) *float64 {
	switch n := v.(type) {
	case float64:
		return &n
	case float32:
		f := float64(n)
		return &f
	case int64:
		f := float64(n)
		return &f
	default:
		return nil
	}
}
