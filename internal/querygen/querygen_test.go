package querygen

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/lanesight/lanesight/internal/domain"
)

var testNow = time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

func baseQuery() domain.SearchQuery {
	return domain.SearchQuery{
		Mode: domain.ModeAll,
		Page: domain.Page{Limit: 25, Offset: 0},
	}
}

func TestCompile_Deterministic(t *testing.T) {
	q := baseQuery()
	q.Keyword = "acme"
	q.OriginCountries = []string{"CN", "VN"}
	q.Mode = domain.ModeOcean

	a := Compile(q, testNow)
	b := Compile(q, testNow)
	if a.SQL != b.SQL {
		t.Error("SQL differs between identical compilations")
	}
	if !reflect.DeepEqual(a.Params, b.Params) {
		t.Errorf("params differ:\n%v\n%v", a.Params, b.Params)
	}
}

func TestCompile_UnsetFiltersAreTrue(t *testing.T) {
	stmt := Compile(baseQuery(), testNow)

	// Only since/limit/offset remain bound when no filter is set.
	wantParams := []string{"since", "limit", "offset"}
	if got := paramNames(stmt); !reflect.DeepEqual(got, wantParams) {
		t.Errorf("params = %v, want %v", got, wantParams)
	}
	if !strings.Contains(stmt.SQL, "TRUE") {
		t.Error("unset filters should compile to TRUE predicates")
	}
	if strings.Contains(stmt.SQL, "@keyword") || strings.Contains(stmt.SQL, "@mode") {
		t.Error("unset filters must not bind parameters")
	}
}

func TestCompile_SetFiltersBindOneParamPerElement(t *testing.T) {
	q := baseQuery()
	q.Keyword = "acme"
	q.Mode = domain.ModeAir
	q.OriginCountries = []string{"CN", "VN"}
	q.DestinationCountries = []string{"US"}
	q.HSCodes = []string{"8471", "8517"}
	q.Carrier = "Maersk"

	stmt := Compile(q, testNow)
	want := []string{
		"keyword", "mode",
		"origin_0", "origin_1",
		"dest_0",
		"hs_0", "hs_1",
		"carrier",
		"since", "limit", "offset",
	}
	if got := paramNames(stmt); !reflect.DeepEqual(got, want) {
		t.Errorf("params = %v, want %v", got, want)
	}
	if !strings.Contains(stmt.SQL, "origin_country IN (@origin_0, @origin_1)") {
		t.Errorf("missing origin IN clause:\n%s", stmt.SQL)
	}
	// No filter value may appear in the SQL text itself.
	for _, literal := range []string{"acme", "CN", "Maersk", "8471"} {
		if strings.Contains(stmt.SQL, literal) {
			t.Errorf("filter value %q leaked into SQL text", literal)
		}
	}
}

func TestCompile_TrailingWindowParam(t *testing.T) {
	stmt := Compile(baseQuery(), testNow)
	since := paramValue(t, stmt, "since").(time.Time)
	want := testNow.Add(-365 * 24 * time.Hour)
	if !since.Equal(want) {
		t.Errorf("since = %v, want %v", since, want)
	}
}

func TestCompile_PaginationAfterGrouping(t *testing.T) {
	q := baseQuery()
	q.Page = domain.Page{Limit: 5, Offset: 10}
	stmt := Compile(q, testNow)

	groupIdx := strings.LastIndex(stmt.SQL, "GROUP BY")
	limitIdx := strings.Index(stmt.SQL, "LIMIT @limit")
	if limitIdx < 0 {
		t.Fatalf("no LIMIT clause:\n%s", stmt.SQL)
	}
	if limitIdx < groupIdx {
		t.Error("LIMIT must apply after grouping, never on raw fact rows")
	}
	if paramValue(t, stmt, "limit") != 5 || paramValue(t, stmt, "offset") != 10 {
		t.Error("limit/offset params not bound from page")
	}
	if !strings.Contains(stmt.SQL, "count(*) OVER () AS total_count") {
		t.Error("total must come from a pre-pagination window count")
	}
}

func TestCompile_KeywordEscapesLikeMetacharacters(t *testing.T) {
	q := baseQuery()
	q.Keyword = `100%_raw\`
	stmt := Compile(q, testNow)

	if got := paramValue(t, stmt, "keyword"); got != `100\%\_raw\\` {
		t.Errorf("keyword param = %q, want metacharacters escaped", got)
	}
	if !strings.Contains(stmt.SQL, `ESCAPE '\'`) {
		t.Errorf("ILIKE predicate must declare its escape character:\n%s", stmt.SQL)
	}
}

func TestCompileCount(t *testing.T) {
	q := baseQuery()
	q.Keyword = "acme"
	q.OriginCountries = []string{"CN", "VN"}

	stmt := CompileCount(q)
	if !strings.Contains(stmt.SQL, "count(DISTINCT company_id)") {
		t.Errorf("count statement must count distinct companies:\n%s", stmt.SQL)
	}
	// Filter params only: no window anchor and no pagination.
	want := []string{"keyword", "origin_0", "origin_1"}
	if got := paramNames(stmt); !reflect.DeepEqual(got, want) {
		t.Errorf("params = %v, want %v", got, want)
	}
	if strings.Contains(stmt.SQL, "LIMIT") || strings.Contains(stmt.SQL, "OFFSET") {
		t.Error("count statement must not paginate")
	}

	b := CompileCount(q)
	if stmt.SQL != b.SQL || !reflect.DeepEqual(stmt.Params, b.Params) {
		t.Error("count compilation not deterministic")
	}
}

func TestCompile_ModeAllBindsNothing(t *testing.T) {
	q := baseQuery()
	q.Mode = domain.ModeAll
	stmt := Compile(q, testNow)
	for _, p := range stmt.Params {
		if p.Name == "mode" {
			t.Error("mode=all must not bind a mode parameter")
		}
	}
}

func TestCompile_EffectiveDateFallback(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	q := baseQuery()
	q.DateStart = &start
	stmt := Compile(q, testNow)
	if !strings.Contains(stmt.SQL, "COALESCE(shipped_on, snapshot_date) >= @date_start") {
		t.Errorf("date filter must use the snapshot fallback:\n%s", stmt.SQL)
	}
}

func TestCompileShipments(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	stmt := CompileShipments("c-1", &start, nil, domain.Page{Limit: 50, Offset: 0})

	want := []string{"company_id", "date_start", "limit", "offset"}
	if got := paramNames(stmt); !reflect.DeepEqual(got, want) {
		t.Errorf("params = %v, want %v", got, want)
	}
	// Filter and ordering must share the same effective-date expression.
	if strings.Count(stmt.SQL, "COALESCE(shipped_on, snapshot_date)") < 3 {
		t.Errorf("effective date fallback not applied consistently:\n%s", stmt.SQL)
	}
	if !strings.Contains(stmt.SQL, "ORDER BY COALESCE(shipped_on, snapshot_date) DESC, shipment_id ASC") {
		t.Errorf("wrong ordering clause:\n%s", stmt.SQL)
	}
}

func TestCompileShipments_Deterministic(t *testing.T) {
	a := CompileShipments("c-9", nil, nil, domain.Page{Limit: 10, Offset: 20})
	b := CompileShipments("c-9", nil, nil, domain.Page{Limit: 10, Offset: 20})
	if a.SQL != b.SQL || !reflect.DeepEqual(a.Params, b.Params) {
		t.Error("shipment compilation not deterministic")
	}
}

func paramNames(s Statement) []string {
	names := make([]string, len(s.Params))
	for i, p := range s.Params {
		names[i] = p.Name
	}
	return names
}

func paramValue(t *testing.T, s Statement, name string) any {
	t.Helper()
	for _, p := range s.Params {
		if p.Name == name {
			return p.Value
		}
	}
	t.Fatalf("param %q not bound", name)
	return nil
}
