package operations

import (
	"net/http"

	"github.com/startsoft-dev/lumina-client/internal/store"
)

// RegisterRoutes adds the nested-operations endpoint to the mux. The literal
// segment outranks the generic /{tenant}/{model} pattern, so batch requests
// never land in the record handlers.
func RegisterRoutes(mux *http.ServeMux, s *store.Store) {
	h := &Handler{store: s}

	mux.HandleFunc("POST /{tenant}/nested-operations", h.Execute)
}
