package domain

import "time"

// ShipmentRecord is a single fact row for the per-company drill-down.
type ShipmentRecord struct {
	// ShippedOn is the effective shipment date: the primary date when set,
	// otherwise the snapshot date fallback.
	ShippedOn   time.Time
	Mode        Mode
	Origin      string
	Destination string
	Carrier     string
	ValueUSD    *float64
	WeightKG    *float64
}
