package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/startsoft-dev/lumina-client/internal/api"
	"github.com/startsoft-dev/lumina-client/internal/domain"
	"github.com/startsoft-dev/lumina-client/internal/store"
)

// sessionTTL bounds how long an issued token stays valid.
const sessionTTL = 24 * time.Hour

// Handler serves the tenant-less session endpoints: login and invitation
// acceptance. Both hand back an HS256 session token scoped to the user's
// tenant.
type Handler struct {
	store  *store.Store
	secret string
}

type sessionResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// Login handles POST /login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	corrID := api.CorrelationID(r.Context())

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		api.WriteError(w, http.StatusBadRequest, api.NewValidationError("Email and password are required", corrID))
		return
	}

	user, err := h.store.Users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, store.ErrInvalidCredentials) {
			api.WriteError(w, http.StatusUnauthorized, &api.Error{
				Status:        "error",
				Message:       "Invalid email or password",
				CorrelationID: corrID,
				Category:      api.CategoryUnauthorized,
			})
			return
		}
		api.WriteError(w, http.StatusInternalServerError, api.NewInternalError(err.Error(), corrID))
		return
	}

	h.writeSession(w, r, user)
}

// AcceptInvitation handles POST /invitations/accept. Redeeming a valid token
// creates the invited user and logs them in.
func (h *Handler) AcceptInvitation(w http.ResponseWriter, r *http.Request) {
	corrID := api.CorrelationID(r.Context())

	var req struct {
		Token    string `json:"token"`
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" || req.Password == "" {
		api.WriteError(w, http.StatusBadRequest, api.NewValidationError("Invitation token and password are required", corrID))
		return
	}

	user, err := h.store.Users.AcceptInvitation(r.Context(), req.Token, req.Name, req.Password)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			api.WriteError(w, http.StatusNotFound, api.NewNotFoundError("Invitation not found or already redeemed", corrID))
			return
		}
		api.WriteError(w, http.StatusInternalServerError, api.NewInternalError(err.Error(), corrID))
		return
	}

	h.writeSession(w, r, user)
}

func (h *Handler) writeSession(w http.ResponseWriter, r *http.Request, user *domain.User) {
	corrID := api.CorrelationID(r.Context())

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":    user.ID,
		"email":  user.Email,
		"tenant": user.Tenant,
		"exp":    time.Now().Add(sessionTTL).Unix(),
		"iat":    time.Now().Unix(),
	})
	signed, err := token.SignedString([]byte(h.secret))
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, api.NewInternalError(err.Error(), corrID))
		return
	}

	api.WriteJSON(w, http.StatusOK, sessionResponse{Token: signed, User: user})
}
