package domain

import "time"

// Pagination limits for company search.
const (
	DefaultSearchLimit = 25
	MaxSearchLimit     = 200
	DefaultDetailLimit = 50
	MaxDetailLimit     = 200
)

// Mode is the transport mode filter.
type Mode string

// Transport mode constants.
const (
	ModeAir   Mode = "air"
	ModeOcean Mode = "ocean"
	// ModeAll matches both air and ocean shipments.
	ModeAll Mode = "all"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == ModeAir || m == ModeOcean || m == ModeAll
}

// Page holds validated pagination parameters.
type Page struct {
	Limit  int
	Offset int
}

// ClampPage clamps pagination into [1, maxLimit] / offset >= 0.
// Defaults for absent fields are applied by the caller before clamping.
func ClampPage(limit, offset, maxLimit int) Page {
	if limit < 1 {
		limit = 1
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return Page{Limit: limit, Offset: offset}
}

// SearchQuery is the canonical, shape-independent search request.
// Construct via the normalize package; the zero value carries no defaults.
type SearchQuery struct {
	Keyword              string
	Mode                 Mode
	OriginCountries      []string
	DestinationCountries []string
	HSCodes              []string
	Carrier              string
	DateStart            *time.Time
	DateEnd              *time.Time
	Page                 Page
}
