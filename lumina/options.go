package lumina

import (
	"fmt"
	"sort"
	"strconv"
)

// Filter is a single field constraint. Filters combine with logical AND and
// render in slice order, so callers control parameter order structurally.
type Filter struct {
	Field string
	Value any
}

// QueryOptions describes a list-style read: filters, relationship includes,
// sorting, field projection, free-text search, and pagination. The zero
// value means "no constraints". Options are a pure description; rendering
// them never mutates them.
type QueryOptions struct {
	Filters  []Filter
	Includes []string // dot-separated paths for nested relationships
	Sort     string   // field name, "-" prefix for descending
	Fields   []string
	Search   string
	Page     int // 0 = absent
	PerPage  int // 0 = absent
}

// OptionsFromMap normalizes a loosely-typed option map into QueryOptions.
// Both "perPage" and "per_page" are accepted, with "perPage" taking
// priority; the alias is collapsed here so nothing downstream ever sees it.
// Filters supplied as a map render in sorted key order, since Go maps carry
// no insertion order; use the Filters slice directly when order matters.
func OptionsFromMap(m map[string]any) QueryOptions {
	var opts QueryOptions
	if m == nil {
		return opts
	}

	if filters, ok := m["filters"].(map[string]any); ok {
		keys := make([]string, 0, len(filters))
		for k := range filters {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			opts.Filters = append(opts.Filters, Filter{Field: k, Value: filters[k]})
		}
	}
	opts.Includes = toStringSlice(m["includes"])
	opts.Fields = toStringSlice(m["fields"])
	if s, ok := m["sort"].(string); ok {
		opts.Sort = s
	}
	if s, ok := m["search"].(string); ok {
		opts.Search = s
	}
	if n, ok := toInt(m["page"]); ok {
		opts.Page = n
	}
	if n, ok := toInt(m["per_page"]); ok {
		opts.PerPage = n
	}
	if n, ok := toInt(m["perPage"]); ok {
		opts.PerPage = n
	}
	return opts
}

func toStringSlice(v any) []string {
	switch vv := v.(type) {
	case []string:
		return vv
	case []any:
		out := make([]string, 0, len(vv))
		for _, item := range vv {
			out = append(out, fmt.Sprintf("%v", item))
		}
		return out
	default:
		return nil
	}
}

func toInt(v any) (int, bool) {
	switch vv := v.(type) {
	case int:
		return vv, true
	case int64:
		return int(vv), true
	case float64:
		return int(vv), true
	case string:
		n, err := strconv.Atoi(vv)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
