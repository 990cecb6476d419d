package store

import (
	"database/sql"
	"fmt"
)

// ErrNotFound is returned when a requested tenant, record, or user does not
// exist (or is outside the caller's tenant scope).
var ErrNotFound = fmt.Errorf("not found")

// ErrInvalidCredentials is returned by Authenticate on a wrong password.
var ErrInvalidCredentials = fmt.Errorf("invalid credentials")

// Store holds all sub-stores used by the server.
type Store struct {
	DB         *sql.DB
	Tenants    TenantStore
	Records    RecordStore
	Audits     AuditStore
	Users      UserStore
	Operations OperationStore
}

// New creates a Store with all sub-stores initialized.
func New(db *sql.DB) *Store {
	return &Store{
		DB:         db,
		Tenants:    NewSQLiteTenantStore(db),
		Records:    NewSQLiteRecordStore(db),
		Audits:     NewSQLiteAuditStore(db),
		Users:      NewSQLiteUserStore(db),
		Operations: NewSQLiteOperationStore(db),
	}
}
