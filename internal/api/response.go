package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/startsoft-dev/lumina-client/internal/domain"
)

// Pagination travels in response headers, never in the body. List bodies
// are bare JSON arrays.
const (
	HeaderCurrentPage = "Current-Page"
	HeaderLastPage    = "Last-Page"
	HeaderPerPage     = "Per-Page"
	HeaderTotal       = "Total"
)

// WriteJSON marshals v as JSON and writes it to w with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write JSON response", "error", err)
	}
}

// WritePaginated writes results as a bare JSON array with the page position
// in the response headers.
func WritePaginated(w http.ResponseWriter, status int, results []map[string]any, p domain.Pagination) {
	if results == nil {
		results = []map[string]any{}
	}
	h := w.Header()
	h.Set(HeaderCurrentPage, strconv.Itoa(p.CurrentPage))
	h.Set(HeaderLastPage, strconv.Itoa(p.LastPage))
	h.Set(HeaderPerPage, strconv.Itoa(p.PerPage))
	h.Set(HeaderTotal, strconv.Itoa(p.Total))
	WriteJSON(w, status, results)
}
