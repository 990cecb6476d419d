package lumina

import (
	"net/http"
	"net/textproto"
	"strconv"
)

// Pagination metadata travels exclusively in these response headers, never
// in the JSON body. Lookups are case-insensitive.
const (
	HeaderCurrentPage = "Current-Page"
	HeaderLastPage    = "Last-Page"
	HeaderPerPage     = "Per-Page"
	HeaderTotal       = "Total"
)

// PaginationMeta describes the position of a page within a list result.
type PaginationMeta struct {
	CurrentPage int `json:"currentPage"`
	LastPage    int `json:"lastPage"`
	PerPage     int `json:"perPage"`
	Total       int `json:"total"`
}

// ExtractPagination reads the four pagination headers from h. It returns nil
// only when none of the four headers is present at all. A header that is
// present but does not parse as a finite integer falls back to that field's
// default (1, 1, 15, 0 respectively); a literal "0" is a successful
// parse, not a fallback.
func ExtractPagination(h http.Header) *PaginationMeta {
	current, okCurrent := headerValue(h, HeaderCurrentPage)
	last, okLast := headerValue(h, HeaderLastPage)
	perPage, okPer := headerValue(h, HeaderPerPage)
	total, okTotal := headerValue(h, HeaderTotal)

	if !okCurrent && !okLast && !okPer && !okTotal {
		return nil
	}

	return &PaginationMeta{
		CurrentPage: parseOrDefault(current, 1),
		LastPage:    parseOrDefault(last, 1),
		PerPage:     parseOrDefault(perPage, 15),
		Total:       parseOrDefault(total, 0),
	}
}

// headerValue distinguishes "header absent" from "header present but empty",
// which h.Get alone cannot.
func headerValue(h http.Header, name string) (string, bool) {
	vs, ok := h[textproto.CanonicalMIMEHeaderKey(name)]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}

func parseOrDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
