package domain

// Record is one row of a tenant's model: an opaque field mapping plus the
// lifecycle metadata the server maintains.
type Record struct {
	ID        string
	TenantID  string
	Model     string
	Data      map[string]any
	CreatedAt string
	UpdatedAt string
	DeletedAt string // empty when the record is live
}

// Reserved response keys. Data fields with these names are shadowed by the
// server-maintained values.
const (
	KeyID        = "id"
	KeyCreatedAt = "created_at"
	KeyUpdatedAt = "updated_at"
	KeyDeletedAt = "deleted_at"
)

// Flatten renders the record the way it travels on the wire: data fields
// merged with the metadata keys. fields, when non-empty, projects the data
// portion; metadata keys are always present.
func (r *Record) Flatten(fields []string) map[string]any {
	out := make(map[string]any, len(r.Data)+4)
	if len(fields) == 0 {
		for k, v := range r.Data {
			out[k] = v
		}
	} else {
		for _, f := range fields {
			if v, ok := r.Data[f]; ok {
				out[f] = v
			}
		}
	}
	out[KeyID] = r.ID
	out[KeyCreatedAt] = r.CreatedAt
	out[KeyUpdatedAt] = r.UpdatedAt
	if r.DeletedAt != "" {
		out[KeyDeletedAt] = r.DeletedAt
	}
	return out
}

// Filter is one field = value constraint; filters AND together.
type Filter struct {
	Field string
	Value string
}

// ListOpts holds the parameters for listing records.
type ListOpts struct {
	Filters  []Filter
	Includes []string
	Sort     string // field name, "-" prefix for descending
	Fields   []string
	Search   string
	Page     int
	PerPage  int
	Trashed  bool // list soft-deleted records instead of live ones
}

// Pagination describes a page position. It travels in response headers.
type Pagination struct {
	CurrentPage int
	LastPage    int
	PerPage     int
	Total       int
}

// RecordPage is one page of records plus its position.
type RecordPage struct {
	Records    []*Record
	Pagination Pagination
}
