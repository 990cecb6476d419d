package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/startsoft-dev/lumina-client/internal/domain"
)

// TenantStore defines the interface for tenant lookup and creation.
type TenantStore interface {
	Resolve(ctx context.Context, slug string) (*domain.Tenant, error)
	Create(ctx context.Context, slug, name string) (*domain.Tenant, error)
}

// SQLiteTenantStore implements TenantStore backed by SQLite.
type SQLiteTenantStore struct {
	db *sql.DB
}

// NewSQLiteTenantStore creates a new SQLiteTenantStore.
func NewSQLiteTenantStore(db *sql.DB) *SQLiteTenantStore {
	return &SQLiteTenantStore{db: db}
}

// Resolve looks up a tenant by slug (the path segment form) or by id.
func (s *SQLiteTenantStore) Resolve(ctx context.Context, slug string) (*domain.Tenant, error) {
	t := &domain.Tenant{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, slug, name, created_at FROM tenants WHERE slug = ? OR id = ?`,
		slug, slug,
	).Scan(&t.ID, &t.Slug, &t.Name, &t.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("resolve tenant %q: %w", slug, err)
	}
	return t, nil
}

// Create inserts a new tenant.
func (s *SQLiteTenantStore) Create(ctx context.Context, slug, name string) (*domain.Tenant, error) {
	t := &domain.Tenant{
		ID:        uuid.NewString(),
		Slug:      slug,
		Name:      name,
		CreatedAt: now(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tenants (id, slug, name, created_at) VALUES (?, ?, ?, ?)`,
		t.ID, t.Slug, t.Name, t.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert tenant: %w", err)
	}
	return t, nil
}
