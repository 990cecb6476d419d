package records

import (
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/startsoft-dev/lumina-client/internal/domain"
)

// parseListOpts decodes the query string grammar shared by every listing
// endpoint: filter[field]=value pairs, comma-separated include and fields
// lists, a single sort field, a search term, and page/per_page.
func parseListOpts(q url.Values) domain.ListOpts {
	opts := domain.ListOpts{
		Sort:     q.Get("sort"),
		Search:   q.Get("search"),
		Includes: splitCSV(q.Get("include")),
		Fields:   splitCSV(q.Get("fields")),
		Page:     atoiOrZero(q.Get("page")),
		PerPage:  atoiOrZero(q.Get("per_page")),
	}

	for key, values := range q {
		field, ok := filterField(key)
		if !ok || len(values) == 0 {
			continue
		}
		opts.Filters = append(opts.Filters, domain.Filter{Field: field, Value: values[0]})
	}
	return opts
}

// filterField extracts f from a "filter[f]" query key.
func filterField(key string) (string, bool) {
	inner, ok := strings.CutPrefix(key, "filter[")
	if !ok {
		return "", false
	}
	field, ok := strings.CutSuffix(inner, "]")
	if !ok || field == "" {
		return "", false
	}
	return field, true
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// responseFields is the projection applied when flattening records for a
// response: the requested fields widened with the include roots, so that
// embedded relations survive a fields= projection.
func responseFields(opts domain.ListOpts) []string {
	if len(opts.Fields) == 0 {
		return nil
	}
	fields := slices.Clone(opts.Fields)
	for _, inc := range opts.Includes {
		root, _, _ := strings.Cut(inc, ".")
		if !slices.Contains(fields, root) {
			fields = append(fields, root)
		}
	}
	return fields
}
