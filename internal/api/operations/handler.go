package operations

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/startsoft-dev/lumina-client/internal/api"
	"github.com/startsoft-dev/lumina-client/internal/domain"
	"github.com/startsoft-dev/lumina-client/internal/store"
)

// Handler serves the atomic nested-operations endpoint.
type Handler struct {
	store *store.Store
}

type batchRequest struct {
	Operations []domain.Operation `json:"operations"`
}

// Execute handles POST /{tenant}/nested-operations. The batch runs inside
// one transaction; any failure rolls everything back and comes out as a 422
// with the TRANSACTION_FAILED category.
func (h *Handler) Execute(w http.ResponseWriter, r *http.Request) {
	corrID := api.CorrelationID(r.Context())

	tenant, err := h.store.Tenants.Resolve(r.Context(), r.PathValue("tenant"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			api.WriteError(w, http.StatusNotFound, api.NewNotFoundError("Tenant not found", corrID))
			return
		}
		api.WriteError(w, http.StatusInternalServerError, api.NewInternalError(err.Error(), corrID))
		return
	}

	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, api.NewValidationError("Request body must be a JSON object with an operations array", corrID))
		return
	}
	if len(req.Operations) == 0 {
		api.WriteError(w, http.StatusBadRequest, api.NewValidationError("Operations array must not be empty", corrID))
		return
	}

	results, err := h.store.Operations.Execute(r.Context(), tenant.ID, req.Operations)
	if err != nil {
		var txErr *store.TransactionError
		if errors.As(err, &txErr) {
			api.WriteError(w, http.StatusUnprocessableEntity, api.NewTransactionError(txErr.Error(), corrID))
			return
		}
		api.WriteError(w, http.StatusInternalServerError, api.NewInternalError(err.Error(), corrID))
		return
	}

	api.WriteJSON(w, http.StatusOK, results)
}
