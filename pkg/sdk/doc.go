// Package lanesight provides an embedded Go client for the lanesight
// company-shipment search engine backed by an embedded DuckDB warehouse.
//
// The client accepts the same request payloads as the HTTP API and runs
// them in-process:
//
//	client, _ := lanesight.New(ctx,
//	    lanesight.WithDuckDB("/var/lib/lanesight/warehouse.db"),
//	)
//	defer client.Close()
//
//	res, _ := client.SearchCompanies(ctx, map[string]any{
//	    "q":    "acme",
//	    "mode": "ocean",
//	})
//	for _, row := range res.Rows {
//	    fmt.Println(row.CompanyName, row.Shipments12M)
//	}
package lanesight
