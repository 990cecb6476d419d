package lumina

import (
	"context"
	"net/http"
)

// ModelClient performs tenant-scoped CRUD against one model. Handles are
// cheap; create them per call if convenient.
type ModelClient struct {
	client *Client
	name   string
}

// List fetches a page of records matching opts.
func (m *ModelClient) List(ctx context.Context, tenant string, opts QueryOptions) (*QueryResponse, error) {
	path, err := BuildQueryURL(m.name, tenant, opts)
	if err != nil {
		return nil, err
	}
	return m.client.list(ctx, path)
}

// Trashed fetches soft-deleted records with the same option grammar as List.
func (m *ModelClient) Trashed(ctx context.Context, tenant string, opts QueryOptions) (*QueryResponse, error) {
	path, err := buildURL(tenant, []string{m.name, "trashed"}, opts, true)
	if err != nil {
		return nil, err
	}
	return m.client.list(ctx, path)
}

// Get fetches a single record. Only includes, filters, sort, and fields
// apply from opts.
func (m *ModelClient) Get(ctx context.Context, tenant, id string, opts QueryOptions) (Record, error) {
	path, err := BuildResourceURL(m.name, tenant, id, opts)
	if err != nil {
		return nil, err
	}
	var rec Record
	if _, err := m.client.do(ctx, http.MethodGet, path, nil, &rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Create inserts a new record from the raw field mapping.
func (m *ModelClient) Create(ctx context.Context, tenant string, data Record) (Record, error) {
	path, err := buildURL(tenant, []string{m.name}, QueryOptions{}, false)
	if err != nil {
		return nil, err
	}
	var rec Record
	if _, err := m.client.do(ctx, http.MethodPost, path, data, &rec); err != nil {
		return nil, err
	}
	m.client.invalidate(m.name)
	return rec, nil
}

// Update replaces the record's fields with data. The id travels only in the
// path, never duplicated into the body.
func (m *ModelClient) Update(ctx context.Context, tenant, id string, data Record) (Record, error) {
	path, err := BuildResourceURL(m.name, tenant, id, QueryOptions{})
	if err != nil {
		return nil, err
	}
	var rec Record
	if _, err := m.client.do(ctx, http.MethodPut, path, data, &rec); err != nil {
		return nil, err
	}
	m.client.invalidate(m.name)
	return rec, nil
}

// Delete soft-deletes the record; Restore reverses it.
func (m *ModelClient) Delete(ctx context.Context, tenant, id string) error {
	path, err := BuildResourceURL(m.name, tenant, id, QueryOptions{})
	if err != nil {
		return err
	}
	if _, err := m.client.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return err
	}
	m.client.invalidate(m.name)
	return nil
}

// Restore brings a soft-deleted record back.
func (m *ModelClient) Restore(ctx context.Context, tenant, id string) (Record, error) {
	path, err := buildResourceActionURL(m.name, tenant, id, "restore")
	if err != nil {
		return nil, err
	}
	var rec Record
	if _, err := m.client.do(ctx, http.MethodPost, path, nil, &rec); err != nil {
		return nil, err
	}
	m.client.invalidate(m.name)
	return rec, nil
}

// ForceDelete permanently removes the record. Irreversible.
func (m *ModelClient) ForceDelete(ctx context.Context, tenant, id string) error {
	path, err := buildResourceActionURL(m.name, tenant, id, "force-delete")
	if err != nil {
		return err
	}
	if _, err := m.client.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return err
	}
	m.client.invalidate(m.name)
	return nil
}

// Audit fetches the record's audit trail, newest first. page and perPage
// of 0 fall back to the backend defaults.
func (m *ModelClient) Audit(ctx context.Context, tenant, id string, page, perPage int) (*QueryResponse, error) {
	if id == "" {
		return nil, newConfigurationError("resource id is required")
	}
	path, err := buildURL(tenant, []string{m.name, id, "audit"}, QueryOptions{Page: page, PerPage: perPage}, true)
	if err != nil {
		return nil, err
	}
	return m.client.list(ctx, path)
}

func buildResourceActionURL(model, tenant, id, action string) (string, error) {
	if id == "" {
		return "", newConfigurationError("resource id is required")
	}
	return buildURL(tenant, []string{model, id, action}, QueryOptions{}, false)
}

// list runs a GET returning a JSON array body plus header pagination.
func (c *Client) list(ctx context.Context, path string) (*QueryResponse, error) {
	var data []Record
	header, err := c.do(ctx, http.MethodGet, path, nil, &data)
	if err != nil {
		return nil, err
	}
	return &QueryResponse{Data: data, Pagination: ExtractPagination(header)}, nil
}
