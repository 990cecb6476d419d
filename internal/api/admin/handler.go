package admin

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/startsoft-dev/lumina-client/internal/api"
	"github.com/startsoft-dev/lumina-client/internal/seed"
)

// Handler serves the admin API at /_lumina/. These endpoints exist for test
// harnesses and local development, not for clients.
type Handler struct {
	db *sql.DB
}

// dataTableNames lists all data tables in foreign-key-safe deletion order.
var dataTableNames = []string{
	"audits",
	"records",
	"invitations",
	"users",
	"tenants",
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.db.PingContext(r.Context()); err != nil {
		api.WriteError(w, http.StatusInternalServerError,
			api.NewInternalError(err.Error(), api.CorrelationID(r.Context())))
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Reset drops all data from all tables and re-runs the seeds.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := ResetData(r.Context(), h.db); err != nil {
		api.WriteError(w, http.StatusInternalServerError,
			api.NewInternalError(err.Error(), api.CorrelationID(r.Context())))
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// SeedData runs seed data without dropping existing data first.
func (h *Handler) SeedData(w http.ResponseWriter, r *http.Request) {
	if err := seed.Seed(r.Context(), h.db); err != nil {
		api.WriteError(w, http.StatusInternalServerError,
			api.NewInternalError(err.Error(), api.CorrelationID(r.Context())))
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ResetData clears all data tables and re-seeds. Exported for reuse by tests.
func ResetData(ctx context.Context, db *sql.DB) error {
	for _, table := range dataTableNames {
		if _, err := db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", table)); err != nil { //nolint:gosec // table names are hardcoded constants
			return fmt.Errorf("clear table %s: %w", table, err)
		}
	}
	return seed.Seed(ctx, db)
}
