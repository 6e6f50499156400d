package httpapi

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/oapi-codegen/runtime/types"

	"github.com/lanesight/lanesight/internal/domain"
	"github.com/lanesight/lanesight/internal/usecase/shipments"
)

// Wire DTOs. Field names are the snake_case equivalents of the canonical
// attributes; dates render as plain YYYY-MM-DD.

type companySummaryDTO struct {
	CompanyID    string      `json:"company_id"`
	CompanyName  string      `json:"company_name"`
	Shipments12M int64       `json:"shipments_12m"`
	LastActivity *types.Date `json:"last_activity"`
	TopRoutes    []string    `json:"top_routes"`
	TopCarriers  []string    `json:"top_carriers"`
}

type searchResponse struct {
	Rows  []companySummaryDTO `json:"rows"`
	Total int64               `json:"total"`
}

type shipmentDTO struct {
	ShippedOn     types.Date `json:"shipped_on"`
	Mode          string     `json:"mode"`
	OriginCountry string     `json:"origin_country"`
	DestCountry   string     `json:"dest_country"`
	Carrier       string     `json:"carrier,omitempty"`
	ValueUSD      *float64   `json:"value_usd,omitempty"`
	WeightKG      *float64   `json:"weight_kg,omitempty"`
}

type shipmentsResponse struct {
	Rows []shipmentDTO `json:"rows"`
}

type fieldErrorDTO struct {
	Field    string `json:"field"`
	Expected string `json:"expected"`
	Got      any    `json:"got"`
}

type errorResponse struct {
	Code        string          `json:"code"`
	Message     string          `json:"message"`
	FieldErrors []fieldErrorDTO `json:"field_errors,omitempty"`
}

func searchResponseFromDomain(res domain.SearchResult) searchResponse {
	out := searchResponse{Rows: make([]companySummaryDTO, 0, len(res.Rows)), Total: res.Total}
	for _, row := range res.Rows {
		dto := companySummaryDTO{
			CompanyID:    row.CompanyID,
			CompanyName:  row.CompanyName,
			Shipments12M: row.Shipments12M,
			TopRoutes:    emptyIfNil(row.TopRoutes),
			TopCarriers:  emptyIfNil(row.TopCarriers),
		}
		if row.LastActivity != nil {
			dto.LastActivity = &types.Date{Time: *row.LastActivity}
		}
		out.Rows = append(out.Rows, dto)
	}
	return out
}

func shipmentsResponseFromDomain(recs []domain.ShipmentRecord) shipmentsResponse {
	out := shipmentsResponse{Rows: make([]shipmentDTO, 0, len(recs))}
	for _, rec := range recs {
		var value, weight *float64
		if rec.ValueUSD != nil {
			v := *rec.ValueUSD
			value = &v
		}
		if rec.WeightKG != nil {
			wgt := *rec.WeightKG
			weight = &wgt
		}
		out.Rows = append(out.Rows, shipmentDTO{
			ShippedOn:     types.Date{Time: rec.ShippedOn},
			Mode:          string(rec.Mode),
			OriginCountry: rec.Origin,
			DestCountry:   rec.Destination,
			Carrier:       rec.Carrier,
			ValueUSD:      value,
			WeightKG:      weight,
		})
	}
	return out
}

func fieldErrorsToWire(fields []domain.FieldError) []fieldErrorDTO {
	out := make([]fieldErrorDTO, len(fields))
	for i, f := range fields {
		out[i] = fieldErrorDTO{Field: f.Field, Expected: f.Expected, Got: f.Got}
	}
	return out
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// shipmentRequestFromQuery validates the drill-down query parameters. Type
// mismatches reject the whole request with field-scoped detail, same
// contract as body normalization.
func shipmentRequestFromQuery(companyID string, q url.Values) (shipments.Request, error) {
	req := shipments.Request{CompanyID: companyID}
	var fields []domain.FieldError

	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			fields = append(fields, domain.FieldError{Field: "limit", Expected: "integer", Got: v})
		} else {
			req.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			fields = append(fields, domain.FieldError{Field: "offset", Expected: "integer", Got: v})
		} else {
			req.Offset = n
		}
	}
	for _, p := range []struct {
		name string
		dst  **time.Time
	}{
		{"date_start", &req.DateStart},
		{"date_end", &req.DateEnd},
	} {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			fields = append(fields, domain.FieldError{Field: p.name, Expected: "date (YYYY-MM-DD)", Got: v})
			continue
		}
		*p.dst = &t
	}

	if len(fields) > 0 {
		return shipments.Request{}, domain.NewValidationError(fields...)
	}
	if req.CompanyID == "" {
		return shipments.Request{}, fmt.Errorf("%w: company_id is required", domain.ErrInvalidArgument)
	}
	return req, nil
}
