package admin

import (
	"database/sql"
	"net/http"
)

// RegisterRoutes registers all admin API endpoints on the mux.
func RegisterRoutes(mux *http.ServeMux, db *sql.DB) {
	h := &Handler{db: db}

	mux.HandleFunc("GET /_lumina/health", h.Health)
	mux.HandleFunc("POST /_lumina/reset", h.Reset)
	mux.HandleFunc("POST /_lumina/seed", h.SeedData)
}
