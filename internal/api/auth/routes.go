package auth

import (
	"net/http"

	"github.com/startsoft-dev/lumina-client/internal/store"
)

// RegisterRoutes adds the session endpoints to the mux.
func RegisterRoutes(mux *http.ServeMux, s *store.Store, secret string) {
	h := &Handler{store: s, secret: secret}

	mux.HandleFunc("POST /login", h.Login)
	mux.HandleFunc("POST /invitations/accept", h.AcceptInvitation)
}
