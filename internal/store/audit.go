package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/startsoft-dev/lumina-client/internal/domain"
)

// AuditStore defines the interface for the record mutation trail.
type AuditStore interface {
	Append(ctx context.Context, tenantID, model, recordID, action string, changes map[string]any) error
	List(ctx context.Context, tenantID, model, recordID string, page, perPage int) (*domain.AuditPage, error)
}

// SQLiteAuditStore implements AuditStore backed by SQLite.
type SQLiteAuditStore struct {
	db *sql.DB
}

// NewSQLiteAuditStore creates a new SQLiteAuditStore.
func NewSQLiteAuditStore(db *sql.DB) *SQLiteAuditStore {
	return &SQLiteAuditStore{db: db}
}

// Append records one mutation.
func (s *SQLiteAuditStore) Append(ctx context.Context, tenantID, model, recordID, action string, changes map[string]any) error {
	return appendAudit(ctx, s.db, tenantID, model, recordID, action, changes)
}

// appendAudit writes an audit row against q, which may be a transaction.
func appendAudit(ctx context.Context, q dbtx, tenantID, model, recordID, action string, changes map[string]any) error {
	var raw []byte
	if len(changes) > 0 {
		var err error
		raw, err = json.Marshal(changes)
		if err != nil {
			return fmt.Errorf("encode audit changes: %w", err)
		}
	}

	_, err := q.ExecContext(ctx,
		`INSERT INTO audits (tenant_id, model, record_id, action, changes, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		tenantID, model, recordID, action, nullableString(raw), now(),
	)
	if err != nil {
		return fmt.Errorf("insert audit: %w", err)
	}
	return nil
}

func nullableString(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}

// List returns one page of a record's audit trail, newest first.
func (s *SQLiteAuditStore) List(ctx context.Context, tenantID, model, recordID string, page, perPage int) (*domain.AuditPage, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	var total int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM audits WHERE tenant_id = ? AND model = ? AND record_id = ?`,
		tenantID, model, recordID,
	).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count audits: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, action, changes, created_at FROM audits
		 WHERE tenant_id = ? AND model = ? AND record_id = ?
		 ORDER BY id DESC LIMIT ? OFFSET ?`,
		tenantID, model, recordID, perPage, (page-1)*perPage,
	)
	if err != nil {
		return nil, fmt.Errorf("list audits: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []*domain.Audit
	for rows.Next() {
		entry := &domain.Audit{TenantID: tenantID, Model: model, RecordID: recordID}
		var changes sql.NullString
		if err := rows.Scan(&entry.ID, &entry.Action, &changes, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit: %w", err)
		}
		if changes.Valid {
			if err := json.Unmarshal([]byte(changes.String), &entry.Changes); err != nil {
				return nil, fmt.Errorf("decode audit %d changes: %w", entry.ID, err)
			}
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audits: %w", err)
	}

	lastPage := (total + perPage - 1) / perPage
	if lastPage < 1 {
		lastPage = 1
	}

	return &domain.AuditPage{
		Entries: entries,
		Pagination: domain.Pagination{
			CurrentPage: page,
			LastPage:    lastPage,
			PerPage:     perPage,
			Total:       total,
		},
	}, nil
}
