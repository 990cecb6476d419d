package domain

// Audit actions recorded for record mutations.
const (
	AuditCreated     = "created"
	AuditUpdated     = "updated"
	AuditDeleted     = "deleted"
	AuditRestored    = "restored"
	AuditForceDelete = "force_deleted"
)

// Audit is one entry of a record's mutation trail.
type Audit struct {
	ID        int64          `json:"id"`
	TenantID  string         `json:"-"`
	Model     string         `json:"model"`
	RecordID  string         `json:"record_id"`
	Action    string         `json:"action"`
	Changes   map[string]any `json:"changes,omitempty"`
	CreatedAt string         `json:"created_at"`
}

// AuditPage is one page of audit entries plus its position.
type AuditPage struct {
	Entries    []*Audit
	Pagination Pagination
}
