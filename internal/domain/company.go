package domain

import "time"

// TopListCap bounds the ranked route/carrier lists per company.
const TopListCap = 5

// CompanySummary is the aggregated, company-level projection of the
// shipment fact table used for search results.
type CompanySummary struct {
	CompanyID   string
	CompanyName string
	// Shipments12M counts shipments dated within the trailing 12 months.
	Shipments12M int64
	// LastActivity is the most recent shipment date across all time,
	// not bounded to the 12-month window. Nil when no dated shipment exists.
	LastActivity *time.Time
	// TopRoutes holds up to 5 distinct "origin→destination" pairs ranked
	// by frequency, ties broken by first-seen order.
	TopRoutes []string
	// TopCarriers holds up to 5 distinct carrier names, same ranking rule.
	TopCarriers []string
}

// SearchResult pairs one page of summaries with the count of distinct
// matching companies before pagination.
type SearchResult struct {
	Rows  []CompanySummary
	Total int64
}
