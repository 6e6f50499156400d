package normalize

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/lanesight/lanesight/internal/domain"
)

func TestNormalize_EmptyPayloadDefaults(t *testing.T) {
	q, err := Normalize(map[string]any{})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	want := domain.SearchQuery{
		Mode: domain.ModeAll,
		Page: domain.Page{Limit: 25, Offset: 0},
	}
	if !reflect.DeepEqual(q, want) {
		t.Errorf("Normalize({}) = %+v, want %+v", q, want)
	}
}

func TestNormalize_NilPayload(t *testing.T) {
	q, err := Normalize(nil)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if q.Mode != domain.ModeAll || q.Page.Limit != 25 {
		t.Errorf("Normalize(nil) = %+v", q)
	}
}

func TestNormalize_FlatShape(t *testing.T) {
	q, err := Normalize(map[string]any{
		"q":      "acme",
		"mode":   "air",
		"limit":  float64(5),
		"offset": float64(10),
	})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if q.Keyword != "acme" || q.Mode != domain.ModeAir {
		t.Errorf("keyword/mode = %q/%q", q.Keyword, q.Mode)
	}
	if q.Page.Limit != 5 || q.Page.Offset != 10 {
		t.Errorf("page = %+v, want {5 10}", q.Page)
	}
}

func TestNormalize_NestedShape(t *testing.T) {
	q, err := Normalize(map[string]any{
		"search":     map[string]any{"q": "oceanx", "mode": "ocean"},
		"pagination": map[string]any{"limit": float64(1), "offset": float64(0)},
		"filters":    map[string]any{"origin": []any{"CN"}},
	})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if q.Keyword != "oceanx" || q.Mode != domain.ModeOcean {
		t.Errorf("keyword/mode = %q/%q", q.Keyword, q.Mode)
	}
	if !reflect.DeepEqual(q.OriginCountries, []string{"CN"}) {
		t.Errorf("origin = %v, want [CN]", q.OriginCountries)
	}
	if q.Page.Limit != 1 || q.Page.Offset != 0 {
		t.Errorf("page = %+v, want {1 0}", q.Page)
	}
}

// All three shapes carrying the same semantic content must normalize to the
// identical canonical query.
func TestNormalize_ShapeEquivalence(t *testing.T) {
	nested := map[string]any{
		"search":     map[string]any{"q": "acme", "mode": "air"},
		"pagination": map[string]any{"limit": float64(5), "offset": float64(10)},
		"filters": map[string]any{
			"origin":      []any{"CN", "VN"},
			"destination": []any{"US"},
			"hs":          []any{"8471"},
			"carrier":     "Maersk",
		},
	}
	shapes := map[string]map[string]any{
		"flat": {
			"q":           "acme",
			"mode":        "air",
			"limit":       float64(5),
			"offset":      float64(10),
			"origin":      "CN,VN",
			"destination": "US",
			"hs":          "8471",
			"carrier":     "Maersk",
		},
		"nested":        nested,
		"double-nested": {"data": nested},
	}

	var first *domain.SearchQuery
	for name, payload := range shapes {
		q, err := Normalize(payload)
		if err != nil {
			t.Fatalf("%s: Normalize: %v", name, err)
		}
		if first == nil {
			first = &q
			continue
		}
		if !reflect.DeepEqual(q, *first) {
			t.Errorf("%s shape diverged:\n got %+v\nwant %+v", name, q, *first)
		}
	}
}

// A matched higher-precedence shape wins as a whole; flat fields alongside
// it are ignored rather than merged.
func TestNormalize_ShapePrecedence(t *testing.T) {
	q, err := Normalize(map[string]any{
		"limit":      float64(99),
		"pagination": map[string]any{"limit": float64(7)},
	})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if q.Page.Limit != 7 {
		t.Errorf("limit = %d, want nested value 7", q.Page.Limit)
	}

	q, err = Normalize(map[string]any{
		"limit": float64(99),
		"data":  map[string]any{"pagination": map[string]any{"limit": float64(3)}},
	})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if q.Page.Limit != 3 {
		t.Errorf("limit = %d, want envelope value 3", q.Page.Limit)
	}
}

func TestNormalize_NumericStringCoercion(t *testing.T) {
	q, err := Normalize(map[string]any{"limit": "5", "offset": "10"})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if q.Page.Limit != 5 || q.Page.Offset != 10 {
		t.Errorf("page = %+v, want {5 10}", q.Page)
	}
}

func TestNormalize_BadLimitIsFieldError(t *testing.T) {
	_, err := Normalize(map[string]any{
		"pagination": map[string]any{"limit": "bad"},
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err is not *ValidationError: %v", err)
	}
	if len(verr.Fields) != 1 {
		t.Fatalf("fields = %+v, want exactly one", verr.Fields)
	}
	f := verr.Fields[0]
	if f.Field != "pagination.limit" || f.Expected != "integer" || f.Got != "bad" {
		t.Errorf("field = %+v", f)
	}
}

func TestNormalize_UnknownModeRejected(t *testing.T) {
	_, err := Normalize(map[string]any{"mode": "rail"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	var verr *domain.ValidationError
	if !errors.As(err, &verr) || verr.Fields[0].Field != "mode" {
		t.Errorf("err = %v", err)
	}
}

func TestNormalize_CollectsAllFieldErrors(t *testing.T) {
	_, err := Normalize(map[string]any{
		"mode":  "rail",
		"limit": "bad",
		"q":     float64(12),
	})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v", err)
	}
	if len(verr.Fields) != 3 {
		t.Errorf("fields = %+v, want 3 entries", verr.Fields)
	}
}

func TestNormalize_OutOfRangeClamped(t *testing.T) {
	q, err := Normalize(map[string]any{"limit": float64(1000), "offset": float64(-3)})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if q.Page.Limit != domain.MaxSearchLimit {
		t.Errorf("limit = %d, want %d", q.Page.Limit, domain.MaxSearchLimit)
	}
	if q.Page.Offset != 0 {
		t.Errorf("offset = %d, want 0", q.Page.Offset)
	}
}

func TestNormalize_FractionalLimitRejected(t *testing.T) {
	_, err := Normalize(map[string]any{"limit": 2.5})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestNormalize_CountryCodesUppercasedAndDeduped(t *testing.T) {
	q, err := Normalize(map[string]any{"origin": []any{"cn", "CN", "vn"}})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if !reflect.DeepEqual(q.OriginCountries, []string{"CN", "VN"}) {
		t.Errorf("origin = %v, want [CN VN]", q.OriginCountries)
	}
}

func TestNormalize_DateRange(t *testing.T) {
	q, err := Normalize(map[string]any{
		"filters": map[string]any{"date_start": "2026-01-01", "date_end": "2026-06-30"},
		"search":  map[string]any{},
	})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	wantStart := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	if q.DateStart == nil || !q.DateStart.Equal(wantStart) {
		t.Errorf("date_start = %v, want %v", q.DateStart, wantStart)
	}
	if q.DateEnd == nil {
		t.Fatal("date_end = nil")
	}

	_, err = Normalize(map[string]any{"date_start": "june 1st"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("bad date err = %v, want ErrValidation", err)
	}
}
