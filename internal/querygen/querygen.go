// Package querygen compiles canonical search queries into parameterized SQL
// over the shipment fact table. Compilation is pure: no I/O, and the same
// input always yields byte-identical SQL and parameter lists.
//
// Optional filters compile to the literal predicate TRUE when unset, so the
// statement skeleton is fixed and values are always parameter-bound. Set
// membership filters expand into one named parameter per element.
package querygen

import (
	"fmt"
	"strings"
	"time"

	"github.com/lanesight/lanesight/internal/domain"
	"github.com/lanesight/lanesight/internal/warehouse"
)

// trailingWindow is the 12-month activity window: 365 days before query time.
const trailingWindow = 365 * 24 * time.Hour

// Statement is a compiled, parameter-bound SQL statement.
type Statement struct {
	SQL    string
	Params []warehouse.Param
}

// builder assembles predicates and their bound parameters in order.
type builder struct {
	preds  []string
	params []warehouse.Param
}

func (b *builder) bind(name string, value any) string {
	b.params = append(b.params, warehouse.Param{Name: name, Value: value})
	return "@" + name
}

// pred adds an always-present predicate slot; unset filters contribute TRUE.
func (b *builder) pred(p string) {
	b.preds = append(b.preds, p)
}

func (b *builder) where() string {
	return strings.Join(b.preds, "\n  AND ")
}

// effectiveDate is the date expression used consistently across the
// 12-month window, last activity, range filters, and detail ordering.
// The snapshot date stands in when the primary shipment date is absent.
const effectiveDate = "COALESCE(shipped_on, snapshot_date)"

// Compile turns a canonical SearchQuery into the single-pass company
// aggregation statement. now anchors the trailing 12-month window.
func Compile(q domain.SearchQuery, now time.Time) Statement {
	b := &builder{}
	filterPreds(b, q)

	since := b.bind("since", now.Add(-trailingWindow))
	limit := b.bind("limit", q.Page.Limit)
	offset := b.bind("offset", q.Page.Offset)

	sql := fmt.Sprintf(companySearchSQL, b.where(), since, limit, offset)
	return Statement{SQL: sql, Params: b.params}
}

// CompileCount compiles the distinct-company total over the same filter
// predicates, with no pagination and no activity window. The total a search
// reports must not depend on which page was requested, so an empty page can
// still be paired with the real match count.
func CompileCount(q domain.SearchQuery) Statement {
	b := &builder{}
	filterPreds(b, q)
	return Statement{SQL: fmt.Sprintf(companyCountSQL, b.where()), Params: b.params}
}

// filterPreds appends the eight fixed predicate slots shared by the
// aggregation and count statements.
func filterPreds(b *builder, q domain.SearchQuery) {
	if q.Keyword != "" {
		b.pred("company_name ILIKE '%' || " + b.bind("keyword", escapeLike(q.Keyword)) + " || '%' ESCAPE '\\'")
	} else {
		b.pred("TRUE")
	}
	if q.Mode != domain.ModeAll && q.Mode != "" {
		b.pred("mode = " + b.bind("mode", string(q.Mode)))
	} else {
		b.pred("TRUE")
	}
	b.pred(b.inList("origin_country", "origin", q.OriginCountries))
	b.pred(b.inList("dest_country", "dest", q.DestinationCountries))
	b.pred(b.inList("hs_code", "hs", q.HSCodes))
	if q.Carrier != "" {
		b.pred("carrier = " + b.bind("carrier", q.Carrier))
	} else {
		b.pred("TRUE")
	}
	if q.DateStart != nil {
		b.pred(effectiveDate + " >= " + b.bind("date_start", *q.DateStart))
	} else {
		b.pred("TRUE")
	}
	if q.DateEnd != nil {
		b.pred(effectiveDate + " <= " + b.bind("date_end", *q.DateEnd))
	} else {
		b.pred("TRUE")
	}
}

// escapeLike neutralizes LIKE metacharacters so a keyword only ever matches
// itself as a substring.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// inList compiles set membership with one named parameter per element,
// or TRUE when the set is empty.
func (b *builder) inList(column, prefix string, values []string) string {
	if len(values) == 0 {
		return "TRUE"
	}
	names := make([]string, len(values))
	for i, v := range values {
		names[i] = b.bind(fmt.Sprintf("%s_%d", prefix, i), v)
	}
	return column + " IN (" + strings.Join(names, ", ") + ")"
}

// companySearchSQL aggregates in a single pass over the filtered fact rows:
// grouping, window counting, frequency-ranked top lists, and the
// pre-pagination total via count(*) OVER (). LIMIT/OFFSET apply strictly
// after grouping.
const companySearchSQL = `WITH matched AS (
  SELECT
    shipment_id,
    company_id,
    company_name,
    ` + effectiveDate + ` AS effective_date,
    origin_country,
    dest_country,
    carrier
  FROM shipments
  WHERE %s
),
companies AS (
  SELECT
    company_id,
    min(company_name) AS company_name,
    count(*) FILTER (WHERE effective_date >= %s) AS shipments_12m,
    max(effective_date) AS last_activity
  FROM matched
  GROUP BY company_id
),
route_counts AS (
  SELECT
    company_id,
    origin_country || '→' || dest_country AS route,
    count(*) AS cnt,
    min(shipment_id) AS first_seen
  FROM matched
  GROUP BY company_id, origin_country, dest_country
),
route_ranked AS (
  SELECT
    company_id,
    route,
    row_number() OVER (PARTITION BY company_id ORDER BY cnt DESC, first_seen ASC) AS rk
  FROM route_counts
),
top_routes AS (
  SELECT company_id, list(route ORDER BY rk) AS routes
  FROM route_ranked
  WHERE rk <= 5
  GROUP BY company_id
),
carrier_counts AS (
  SELECT
    company_id,
    carrier,
    count(*) AS cnt,
    min(shipment_id) AS first_seen
  FROM matched
  WHERE carrier IS NOT NULL AND carrier <> ''
  GROUP BY company_id, carrier
),
carrier_ranked AS (
  SELECT
    company_id,
    carrier,
    row_number() OVER (PARTITION BY company_id ORDER BY cnt DESC, first_seen ASC) AS rk
  FROM carrier_counts
),
top_carriers AS (
  SELECT company_id, list(carrier ORDER BY rk) AS carriers
  FROM carrier_ranked
  WHERE rk <= 5
  GROUP BY company_id
)
SELECT
  c.company_id,
  c.company_name,
  c.shipments_12m,
  c.last_activity,
  COALESCE(r.routes, []) AS top_routes,
  COALESCE(t.carriers, []) AS top_carriers,
  count(*) OVER () AS total_count
FROM companies c
LEFT JOIN top_routes r USING (company_id)
LEFT JOIN top_carriers t USING (company_id)
ORDER BY c.shipments_12m DESC, c.company_id ASC
LIMIT %s OFFSET %s`

const companyCountSQL = `SELECT count(DISTINCT company_id) AS total_count
FROM shipments
WHERE %s`
