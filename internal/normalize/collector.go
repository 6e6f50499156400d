package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/lanesight/lanesight/internal/domain"
)

// dateLayout is the accepted wire format for date fields.
const dateLayout = "2006-01-02"

// collector accumulates field errors so a request is rejected with every
// offending field at once, never partially normalized.
type collector struct {
	fields []domain.FieldError
}

func (c *collector) add(field, expected string, got any) {
	c.fields = append(c.fields, domain.FieldError{Field: field, Expected: expected, Got: got})
}

func (c *collector) err() error {
	if len(c.fields) == 0 {
		return nil
	}
	return domain.NewValidationError(c.fields...)
}

// stringField extracts an optional string. Non-string values are rejected.
func (c *collector) stringField(p map[string]any, key, path string) string {
	v, ok := p[key]
	if !ok || v == nil {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		c.add(path, "string", v)
		return ""
	}
	return strings.TrimSpace(s)
}

// modeField extracts an optional mode token. An explicitly provided token
// outside the enum is a validation failure, never silently defaulted.
func (c *collector) modeField(p map[string]any, key, path string) string {
	s := c.stringField(p, key, path)
	if s == "" {
		return ""
	}
	if !domain.Mode(s).IsValid() {
		c.add(path, "one of air|ocean|all", s)
		return ""
	}
	return s
}

// intField extracts an optional integer. JSON numbers and decimal-looking
// strings ("5") coerce; anything else is a field-scoped error.
func (c *collector) intField(p map[string]any, key, path string) *int {
	v, ok := p[key]
	if !ok || v == nil {
		return nil
	}
	switch n := v.(type) {
	case int:
		return &n
	case int64:
		i := int(n)
		return &i
	case float64:
		if n != math.Trunc(n) {
			c.add(path, "integer", v)
			return nil
		}
		i := int(n)
		return &i
	case json.Number:
		i, err := strconv.Atoi(n.String())
		if err != nil {
			c.add(path, "integer", v)
			return nil
		}
		return &i
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			c.add(path, "integer", v)
			return nil
		}
		return &i
	default:
		c.add(path, "integer", v)
		return nil
	}
}

// stringList extracts an optional set of strings. Accepts a single string,
// a comma-separated string, or a list of strings. Order-preserving de-dup
// keeps compiled parameter lists deterministic.
func (c *collector) stringList(p map[string]any, key, path string) []string {
	v, ok := p[key]
	if !ok || v == nil {
		return nil
	}
	switch val := v.(type) {
	case string:
		return dedup(strings.Split(val, ","))
	case []any:
		out := make([]string, 0, len(val))
		for i, item := range val {
			s, ok := item.(string)
			if !ok {
				c.add(path+"["+strconv.Itoa(i)+"]", "string", item)
				continue
			}
			out = append(out, s)
		}
		return dedup(out)
	default:
		c.add(path, "string or list of strings", v)
		return nil
	}
}

// countryList is stringList with ISO country codes folded to upper case.
func (c *collector) countryList(p map[string]any, key, path string) []string {
	list := c.stringList(p, key, path)
	for i, s := range list {
		list[i] = strings.ToUpper(s)
	}
	return dedup(list)
}

// dateField extracts an optional YYYY-MM-DD date.
func (c *collector) dateField(p map[string]any, key, path string) *time.Time {
	s := c.stringField(p, key, path)
	if s == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		c.add(path, "date (YYYY-MM-DD)", s)
		return nil
	}
	return &t
}

func dedup(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := in[:0]
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
