package duckdb

import (
	"fmt"
	"regexp"

	"github.com/lanesight/lanesight/internal/warehouse"
)

var paramRef = regexp.MustCompile(`@([A-Za-z_][A-Za-z0-9_]*)`)

// bindPositional rewrites @name references to positional ? placeholders in
// order of appearance. Every reference must have a binding and every binding
// must be referenced, so compiler and runner cannot drift silently.
func bindPositional(sqlText string, params []warehouse.Param) (string, []any, error) {
	byName := make(map[string]any, len(params))
	for _, p := range params {
		if _, dup := byName[p.Name]; dup {
			return "", nil, fmt.Errorf("duplicate parameter %q", p.Name)
		}
		byName[p.Name] = p.Value
	}

	used := make(map[string]struct{}, len(params))
	var args []any
	var missing string

	bound := paramRef.ReplaceAllStringFunc(sqlText, func(ref string) string {
		name := ref[1:]
		value, ok := byName[name]
		if !ok {
			if missing == "" {
				missing = name
			}
			return ref
		}
		used[name] = struct{}{}
		args = append(args, value)
		return "?"
	})

	if missing != "" {
		return "", nil, fmt.Errorf("no binding for parameter %q", missing)
	}
	for _, p := range params {
		if _, ok := used[p.Name]; !ok {
			return "", nil, fmt.Errorf("parameter %q is bound but never referenced", p.Name)
		}
	}
	return bound, args, nil
}
