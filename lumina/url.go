package lumina

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// BuildQueryURL renders a list-endpoint URL for the given model and tenant.
// Parameters append in a fixed order (filters, include, sort, fields,
// search, page, per_page) and omitted option groups never appear, so
// identical options always produce the identical string. The function is
// pure: no I/O, no hidden state.
func BuildQueryURL(model, tenant string, opts QueryOptions) (string, error) {
	return buildURL(tenant, []string{model}, opts, true)
}

// BuildResourceURL renders a single-resource URL (/<tenant>/<model>/<id>).
// Only filters, include, sort, and fields apply; pagination and search have
// no meaning for a single record.
func BuildResourceURL(model, tenant, id string, opts QueryOptions) (string, error) {
	if strings.TrimSpace(id) == "" {
		return "", newConfigurationError("resource id is required")
	}
	opts.Search = ""
	opts.Page = 0
	opts.PerPage = 0
	return buildURL(tenant, []string{model, id}, opts, false)
}

// buildURL assembles /<tenant>/<segments...> plus the encoded option groups.
// withPagination gates search/page/per_page for list-style endpoints.
func buildURL(tenant string, segments []string, opts QueryOptions, withPagination bool) (string, error) {
	tenant = strings.TrimSpace(tenant)
	if tenant == "" {
		return "", newConfigurationError("tenant identifier is required")
	}

	var b strings.Builder
	b.WriteString("/")
	b.WriteString(url.PathEscape(tenant))
	for _, seg := range segments {
		b.WriteString("/")
		b.WriteString(url.PathEscape(seg))
	}

	query := encodeOptions(opts, withPagination)
	if query != "" {
		b.WriteString("?")
		b.WriteString(query)
	}
	return b.String(), nil
}

// encodeOptions renders the option groups in their contractual order.
// Filter keys keep their surrounding brackets literal (filter[status]=...);
// keys and values are percent-encoded individually.
func encodeOptions(opts QueryOptions, withPagination bool) string {
	var params []string
	add := func(key, value string) {
		params = append(params, key+"="+url.QueryEscape(value))
	}

	for _, f := range opts.Filters {
		add("filter["+url.QueryEscape(f.Field)+"]", stringify(f.Value))
	}
	if len(opts.Includes) > 0 {
		add("include", strings.Join(opts.Includes, ","))
	}
	if opts.Sort != "" {
		add("sort", opts.Sort)
	}
	if len(opts.Fields) > 0 {
		add("fields", strings.Join(opts.Fields, ","))
	}
	if withPagination {
		if opts.Search != "" {
			add("search", opts.Search)
		}
		if opts.Page > 0 {
			add("page", strconv.Itoa(opts.Page))
		}
		if opts.PerPage > 0 {
			add("per_page", strconv.Itoa(opts.PerPage))
		}
	}
	return strings.Join(params, "&")
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
