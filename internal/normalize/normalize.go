// Package normalize resolves the accepted wire shapes of a company search
// request into one canonical domain.SearchQuery.
//
// Three shapes are accepted, resolved in a fixed precedence order, first
// match wins as a whole:
//
//  1. double-nested: {"data": {"search": {...}, "pagination": {...}, "filters": {...}}}
//  2. nested:        {"search": {...}, "pagination": {...}, "filters": {...}}
//  3. flat:          {"q": ..., "mode": ..., "limit": ..., "offset": ..., ...}
//
// Once a shape matches, fields belonging to lower-precedence shapes are
// ignored. Defaults (mode=all, limit=25, offset=0) are applied once, after
// all fields are extracted.
package normalize

import (
	"time"

	"github.com/lanesight/lanesight/internal/domain"
)

// matcher recognizes one wire shape and extracts its raw fields.
type matcher struct {
	name    string
	matches func(payload map[string]any) bool
	extract func(payload map[string]any, c *collector) rawQuery
}

// matchers is the fixed precedence order.
var matchers = []matcher{
	{
		name: "double-nested",
		matches: func(p map[string]any) bool {
			data, ok := asObject(p["data"])
			return ok && (hasObject(data, "search") || hasObject(data, "pagination"))
		},
		extract: func(p map[string]any, c *collector) rawQuery {
			data, _ := asObject(p["data"])
			return extractNested(data, "data.", c)
		},
	},
	{
		name: "nested",
		matches: func(p map[string]any) bool {
			return hasObject(p, "search") || hasObject(p, "pagination")
		},
		extract: func(p map[string]any, c *collector) rawQuery {
			return extractNested(p, "", c)
		},
	},
	{
		name:    "flat",
		matches: func(map[string]any) bool { return true },
		extract: extractFlat,
	},
}

// rawQuery holds extracted fields before defaulting. Pointers distinguish
// absent fields from explicit zero values.
type rawQuery struct {
	keyword     string
	mode        string
	limit       *int
	offset      *int
	origin      []string
	destination []string
	hs          []string
	carrier     string
	dateStart   *time.Time
	dateEnd     *time.Time
}

// Normalize resolves a decoded request body into a canonical SearchQuery.
// Either the whole request normalizes or a *domain.ValidationError carrying
// every offending field is returned.
func Normalize(payload map[string]any) (domain.SearchQuery, error) {
	if payload == nil {
		payload = map[string]any{}
	}

	c := &collector{}
	var raw rawQuery
	for _, m := range matchers {
		if m.matches(payload) {
			raw = m.extract(payload, c)
			break
		}
	}
	if err := c.err(); err != nil {
		return domain.SearchQuery{}, err
	}

	return canonical(raw), nil
}

// canonical applies defaults and clamping in one place.
func canonical(raw rawQuery) domain.SearchQuery {
	mode := domain.Mode(raw.mode)
	if mode == "" {
		mode = domain.ModeAll
	}

	limit := domain.DefaultSearchLimit
	if raw.limit != nil {
		limit = *raw.limit
	}
	offset := 0
	if raw.offset != nil {
		offset = *raw.offset
	}

	return domain.SearchQuery{
		Keyword:              raw.keyword,
		Mode:                 mode,
		OriginCountries:      raw.origin,
		DestinationCountries: raw.destination,
		HSCodes:              raw.hs,
		Carrier:              raw.carrier,
		DateStart:            raw.dateStart,
		DateEnd:              raw.dateEnd,
		Page:                 domain.ClampPage(limit, offset, domain.MaxSearchLimit),
	}
}

func extractNested(p map[string]any, prefix string, c *collector) rawQuery {
	var raw rawQuery

	if search, ok := asObject(p["search"]); ok {
		raw.keyword = c.stringField(search, "q", prefix+"search.q")
		raw.mode = c.modeField(search, "mode", prefix+"search.mode")
	}
	if pag, ok := asObject(p["pagination"]); ok {
		raw.limit = c.intField(pag, "limit", prefix+"pagination.limit")
		raw.offset = c.intField(pag, "offset", prefix+"pagination.offset")
	}
	if filters, ok := asObject(p["filters"]); ok {
		fp := prefix + "filters."
		raw.origin = c.countryList(filters, "origin", fp+"origin")
		raw.destination = c.countryList(filters, "destination", fp+"destination")
		raw.hs = c.stringList(filters, "hs", fp+"hs")
		raw.carrier = c.stringField(filters, "carrier", fp+"carrier")
		raw.dateStart = c.dateField(filters, "date_start", fp+"date_start")
		raw.dateEnd = c.dateField(filters, "date_end", fp+"date_end")
	}
	return raw
}

func extractFlat(p map[string]any, c *collector) rawQuery {
	return rawQuery{
		keyword:     c.stringField(p, "q", "q"),
		mode:        c.modeField(p, "mode", "mode"),
		limit:       c.intField(p, "limit", "limit"),
		offset:      c.intField(p, "offset", "offset"),
		origin:      c.countryList(p, "origin", "origin"),
		destination: c.countryList(p, "destination", "destination"),
		hs:          c.stringList(p, "hs", "hs"),
		carrier:     c.stringField(p, "carrier", "carrier"),
		dateStart:   c.dateField(p, "date_start", "date_start"),
		dateEnd:     c.dateField(p, "date_end", "date_end"),
	}
}

func asObject(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

func hasObject(p map[string]any, key string) bool {
	_, ok := asObject(p[key])
	return ok
}
