package records

import (
	"net/http"

	"github.com/startsoft-dev/lumina-client/internal/store"
)

// RegisterRoutes adds the generic record endpoints to the mux. Literal
// segments (trashed, restore, force-delete, audit) take precedence over the
// {id} wildcard, so record ids may not collide with them.
func RegisterRoutes(mux *http.ServeMux, s *store.Store) {
	h := &Handler{store: s}

	mux.HandleFunc("GET /{tenant}/{model}", h.List)
	mux.HandleFunc("POST /{tenant}/{model}", h.Create)
	mux.HandleFunc("GET /{tenant}/{model}/trashed", h.Trashed)
	mux.HandleFunc("GET /{tenant}/{model}/{id}", h.Get)
	mux.HandleFunc("PUT /{tenant}/{model}/{id}", h.Update)
	mux.HandleFunc("DELETE /{tenant}/{model}/{id}", h.Delete)
	mux.HandleFunc("POST /{tenant}/{model}/{id}/restore", h.Restore)
	mux.HandleFunc("DELETE /{tenant}/{model}/{id}/force-delete", h.ForceDelete)
	mux.HandleFunc("GET /{tenant}/{model}/{id}/audit", h.Audit)
}
