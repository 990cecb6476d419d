package records

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/startsoft-dev/lumina-client/internal/api"
	"github.com/startsoft-dev/lumina-client/internal/domain"
	"github.com/startsoft-dev/lumina-client/internal/store"
)

// Handler serves the tenant-scoped generic record endpoints. The model name
// is whatever the client puts in the path; there is no schema to declare.
type Handler struct {
	store *store.Store
}

// resolveTenant maps the {tenant} path segment (slug or id) to a tenant.
// A nil return means the 404 has already been written.
func (h *Handler) resolveTenant(w http.ResponseWriter, r *http.Request) *domain.Tenant {
	tenant, err := h.store.Tenants.Resolve(r.Context(), r.PathValue("tenant"))
	if err != nil {
		corrID := api.CorrelationID(r.Context())
		if errors.Is(err, store.ErrNotFound) {
			api.WriteError(w, http.StatusNotFound, api.NewNotFoundError("Tenant not found", corrID))
		} else {
			api.WriteError(w, http.StatusInternalServerError, api.NewInternalError(err.Error(), corrID))
		}
		return nil
	}
	return tenant
}

// List handles GET /{tenant}/{model}.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, false)
}

// Trashed handles GET /{tenant}/{model}/trashed. Same grammar as List, but
// over soft-deleted records only.
func (h *Handler) Trashed(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, true)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, trashed bool) {
	tenant := h.resolveTenant(w, r)
	if tenant == nil {
		return
	}
	corrID := api.CorrelationID(r.Context())

	opts := parseListOpts(r.URL.Query())
	opts.Trashed = trashed

	page, err := h.store.Records.List(r.Context(), tenant.ID, r.PathValue("model"), opts)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, api.NewValidationError(err.Error(), corrID))
		return
	}

	fields := responseFields(opts)
	results := make([]map[string]any, len(page.Records))
	for i, rec := range page.Records {
		results[i] = rec.Flatten(fields)
	}
	api.WritePaginated(w, http.StatusOK, results, page.Pagination)
}

// Get handles GET /{tenant}/{model}/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	tenant := h.resolveTenant(w, r)
	if tenant == nil {
		return
	}
	corrID := api.CorrelationID(r.Context())
	opts := parseListOpts(r.URL.Query())

	rec, err := h.store.Records.Get(r.Context(), tenant.ID, r.PathValue("model"), r.PathValue("id"), opts.Includes)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			api.WriteError(w, http.StatusNotFound, api.NewNotFoundError("Record not found", corrID))
			return
		}
		api.WriteError(w, http.StatusInternalServerError, api.NewInternalError(err.Error(), corrID))
		return
	}
	api.WriteJSON(w, http.StatusOK, rec.Flatten(responseFields(opts)))
}

// Create handles POST /{tenant}/{model}.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	tenant := h.resolveTenant(w, r)
	if tenant == nil {
		return
	}
	corrID := api.CorrelationID(r.Context())
	model := r.PathValue("model")

	data, ok := decodeBody(w, r)
	if !ok {
		return
	}

	rec, err := h.store.Records.Create(r.Context(), tenant.ID, model, data)
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, api.NewInternalError(err.Error(), corrID))
		return
	}
	if err := h.store.Audits.Append(r.Context(), tenant.ID, model, rec.ID, domain.AuditCreated, data); err != nil {
		api.WriteError(w, http.StatusInternalServerError, api.NewInternalError(err.Error(), corrID))
		return
	}
	api.WriteJSON(w, http.StatusCreated, rec.Flatten(nil))
}

// Update handles PUT /{tenant}/{model}/{id}. Submitted fields merge into the
// record; absent fields keep their values.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	tenant := h.resolveTenant(w, r)
	if tenant == nil {
		return
	}
	corrID := api.CorrelationID(r.Context())
	model, id := r.PathValue("model"), r.PathValue("id")

	data, ok := decodeBody(w, r)
	if !ok {
		return
	}

	rec, err := h.store.Records.Update(r.Context(), tenant.ID, model, id, data)
	if err != nil {
		h.writeRecordError(w, r, err)
		return
	}
	if err := h.store.Audits.Append(r.Context(), tenant.ID, model, rec.ID, domain.AuditUpdated, data); err != nil {
		api.WriteError(w, http.StatusInternalServerError, api.NewInternalError(err.Error(), corrID))
		return
	}
	api.WriteJSON(w, http.StatusOK, rec.Flatten(nil))
}

// Delete handles DELETE /{tenant}/{model}/{id}: a soft delete.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	tenant := h.resolveTenant(w, r)
	if tenant == nil {
		return
	}
	corrID := api.CorrelationID(r.Context())
	model, id := r.PathValue("model"), r.PathValue("id")

	rec, err := h.store.Records.SoftDelete(r.Context(), tenant.ID, model, id)
	if err != nil {
		h.writeRecordError(w, r, err)
		return
	}
	if err := h.store.Audits.Append(r.Context(), tenant.ID, model, rec.ID, domain.AuditDeleted, nil); err != nil {
		api.WriteError(w, http.StatusInternalServerError, api.NewInternalError(err.Error(), corrID))
		return
	}
	api.WriteJSON(w, http.StatusOK, rec.Flatten(nil))
}

// Restore handles POST /{tenant}/{model}/{id}/restore.
func (h *Handler) Restore(w http.ResponseWriter, r *http.Request) {
	tenant := h.resolveTenant(w, r)
	if tenant == nil {
		return
	}
	corrID := api.CorrelationID(r.Context())
	model, id := r.PathValue("model"), r.PathValue("id")

	rec, err := h.store.Records.Restore(r.Context(), tenant.ID, model, id)
	if err != nil {
		h.writeRecordError(w, r, err)
		return
	}
	if err := h.store.Audits.Append(r.Context(), tenant.ID, model, rec.ID, domain.AuditRestored, nil); err != nil {
		api.WriteError(w, http.StatusInternalServerError, api.NewInternalError(err.Error(), corrID))
		return
	}
	api.WriteJSON(w, http.StatusOK, rec.Flatten(nil))
}

// ForceDelete handles DELETE /{tenant}/{model}/{id}/force-delete. The record
// is gone for good; only the audit trail remembers it.
func (h *Handler) ForceDelete(w http.ResponseWriter, r *http.Request) {
	tenant := h.resolveTenant(w, r)
	if tenant == nil {
		return
	}
	corrID := api.CorrelationID(r.Context())
	model, id := r.PathValue("model"), r.PathValue("id")

	if err := h.store.Records.ForceDelete(r.Context(), tenant.ID, model, id); err != nil {
		h.writeRecordError(w, r, err)
		return
	}
	if err := h.store.Audits.Append(r.Context(), tenant.ID, model, id, domain.AuditForceDelete, nil); err != nil {
		api.WriteError(w, http.StatusInternalServerError, api.NewInternalError(err.Error(), corrID))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Audit handles GET /{tenant}/{model}/{id}/audit, newest entries first.
func (h *Handler) Audit(w http.ResponseWriter, r *http.Request) {
	tenant := h.resolveTenant(w, r)
	if tenant == nil {
		return
	}
	corrID := api.CorrelationID(r.Context())
	q := r.URL.Query()

	page, err := h.store.Audits.List(r.Context(), tenant.ID, r.PathValue("model"), r.PathValue("id"),
		atoiOrZero(q.Get("page")), atoiOrZero(q.Get("per_page")))
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, api.NewInternalError(err.Error(), corrID))
		return
	}

	results := make([]map[string]any, len(page.Entries))
	for i, entry := range page.Entries {
		results[i] = map[string]any{
			"id":         entry.ID,
			"action":     entry.Action,
			"changes":    entry.Changes,
			"created_at": entry.CreatedAt,
		}
	}
	api.WritePaginated(w, http.StatusOK, results, page.Pagination)
}

func (h *Handler) writeRecordError(w http.ResponseWriter, r *http.Request, err error) {
	corrID := api.CorrelationID(r.Context())
	if errors.Is(err, store.ErrNotFound) {
		api.WriteError(w, http.StatusNotFound, api.NewNotFoundError("Record not found", corrID))
		return
	}
	api.WriteError(w, http.StatusInternalServerError, api.NewInternalError(err.Error(), corrID))
}

// decodeBody reads a JSON object body. An empty body is an empty record.
func decodeBody(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	var data map[string]any
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		corrID := api.CorrelationID(r.Context())
		api.WriteError(w, http.StatusBadRequest, api.NewValidationError("Request body must be a JSON object", corrID))
		return nil, false
	}
	if data == nil {
		data = map[string]any{}
	}
	return data, true
}
