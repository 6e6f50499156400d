package lanesight

import (
	"time"

	"github.com/lanesight/lanesight/internal/domain"
)

// CompanySummary is one aggregated search result row.
type CompanySummary struct {
	CompanyID    string
	CompanyName  string
	Shipments12M int64
	LastActivity *time.Time
	TopRoutes    []string
	TopCarriers  []string
}

// SearchResult is one page of company summaries plus the overall total.
type SearchResult struct {
	Rows  []CompanySummary
	Total int64
}

// Shipment is one raw shipment record from the drill-down.
type Shipment struct {
	ShippedOn     time.Time
	Mode          string
	OriginCountry string
	DestCountry   string
	Carrier       string
	ValueUSD      *float64
	WeightKG      *float64
}

// ShipmentsQuery identifies one drill-down page.
type ShipmentsQuery struct {
	CompanyID string
	// Limit defaults to 50 when zero; clamped to [1, 200].
	Limit  int
	Offset int
	// DateStart/DateEnd optionally bound the effective shipment date.
	DateStart *time.Time
	DateEnd   *time.Time
}

func searchResultFromDomain(res domain.SearchResult) SearchResult {
	out := SearchResult{Rows: make([]CompanySummary, len(res.Rows)), Total: res.Total}
	for i, row := range res.Rows {
		out.Rows[i] = CompanySummary{
			CompanyID:    row.CompanyID,
			CompanyName:  row.CompanyName,
			Shipments12M: row.Shipments12M,
			LastActivity: row.LastActivity,
			TopRoutes:    row.TopRoutes,
			TopCarriers:  row.TopCarriers,
		}
	}
	return out
}

func shipmentsFromDomain(recs []domain.ShipmentRecord) []Shipment {
	out := make([]Shipment, len(recs))
	for i, rec := range recs {
		out[i] = Shipment{
			ShippedOn:     rec.ShippedOn,
			Mode:          string(rec.Mode),
			OriginCountry: rec.Origin,
			DestCountry:   rec.Destination,
			Carrier:       rec.Carrier,
			ValueUSD:      rec.ValueUSD,
			WeightKG:      rec.WeightKG,
		}
	}
	return out
}
