package querygen

import (
	"fmt"
	"time"

	"github.com/lanesight/lanesight/internal/domain"
)

// CompileShipments compiles the per-company drill-down scan. The effective
// date fallback is applied identically in the range filter and the ORDER BY
// so filtering and ordering never skew apart; insertion order breaks ties.
func CompileShipments(companyID string, dateStart, dateEnd *time.Time, page domain.Page) Statement {
	b := &builder{}

	b.pred("company_id = " + b.bind("company_id", companyID))
	if dateStart != nil {
		b.pred(effectiveDate + " >= " + b.bind("date_start", *dateStart))
	} else {
		b.pred("TRUE")
	}
	if dateEnd != nil {
		b.pred(effectiveDate + " <= " + b.bind("date_end", *dateEnd))
	} else {
		b.pred("TRUE")
	}

	limit := b.bind("limit", page.Limit)
	offset := b.bind("offset", page.Offset)

	sql := fmt.Sprintf(shipmentDetailSQL, b.where(), limit, offset)
	return Statement{SQL: sql, Params: b.params}
}

const shipmentDetailSQL = `SELECT
  ` + effectiveDate + ` AS shipped_on,
  mode,
  origin_country,
  dest_country,
  carrier,
  value_usd,
  weight_kg
FROM shipments
WHERE %s
ORDER BY ` + effectiveDate + ` DESC, shipment_id ASC
LIMIT %s OFFSET %s`
