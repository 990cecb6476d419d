package store

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"database/sql"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"

	"github.com/startsoft-dev/lumina-client/internal/domain"
)

// UserStore defines the interface for accounts and invitations.
type UserStore interface {
	Create(ctx context.Context, email, name, password, tenantID string) (*domain.User, error)
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
	InvitationByToken(ctx context.Context, token string) (*domain.Invitation, error)
	AcceptInvitation(ctx context.Context, token, name, password string) (*domain.User, error)
}

// SQLiteUserStore implements UserStore backed by SQLite.
type SQLiteUserStore struct {
	db *sql.DB
}

// NewSQLiteUserStore creates a new SQLiteUserStore.
func NewSQLiteUserStore(db *sql.DB) *SQLiteUserStore {
	return &SQLiteUserStore{db: db}
}

// HashPassword returns the stored form of a password. SHA-256 keeps the dev
// server dependency-free; production deployments sit behind a real identity
// provider.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// Create inserts a new user into the given tenant.
func (s *SQLiteUserStore) Create(ctx context.Context, email, name, password, tenantID string) (*domain.User, error) {
	u := &domain.User{
		ID:        uuid.NewString(),
		Email:     email,
		Name:      name,
		TenantID:  tenantID,
		CreatedAt: now(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, name, password_hash, tenant_id, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.Name, HashPassword(password), u.TenantID, u.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	if err := s.db.QueryRowContext(ctx, `SELECT slug FROM tenants WHERE id = ?`, tenantID).Scan(&u.Tenant); err != nil {
		return nil, fmt.Errorf("resolve user tenant: %w", err)
	}
	return u, nil
}

// Authenticate verifies email/password and returns the matching user.
// Unknown emails and wrong passwords both return ErrInvalidCredentials so
// callers cannot distinguish them.
func (s *SQLiteUserStore) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	u := &domain.User{}
	var hash string
	err := s.db.QueryRowContext(ctx,
		`SELECT u.id, u.email, u.name, u.password_hash, u.tenant_id, t.slug, u.created_at
		 FROM users u JOIN tenants t ON t.id = u.tenant_id
		 WHERE u.email = ?`,
		email,
	).Scan(&u.ID, &u.Email, &u.Name, &hash, &u.TenantID, &u.Tenant, &u.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user %q: %w", email, err)
	}

	if subtle.ConstantTimeCompare([]byte(hash), []byte(HashPassword(password))) != 1 {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// InvitationByToken looks up an unredeemed invitation.
func (s *SQLiteUserStore) InvitationByToken(ctx context.Context, token string) (*domain.Invitation, error) {
	inv := &domain.Invitation{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, token, email, tenant_id, accepted, created_at FROM invitations WHERE token = ?`,
		token,
	).Scan(&inv.ID, &inv.Token, &inv.Email, &inv.TenantID, &inv.Accepted, &inv.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("lookup invitation: %w", err)
	}
	return inv, nil
}

// AcceptInvitation redeems an invitation: creates the invited user and
// marks the invitation accepted, atomically.
func (s *SQLiteUserStore) AcceptInvitation(ctx context.Context, token, name, password string) (*domain.User, error) {
	inv, err := s.InvitationByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if inv.Accepted {
		return nil, fmt.Errorf("invitation already accepted: %w", ErrNotFound)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin accept invitation: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	u := &domain.User{
		ID:        uuid.NewString(),
		Email:     inv.Email,
		Name:      name,
		TenantID:  inv.TenantID,
		CreatedAt: now(),
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO users (id, email, name, password_hash, tenant_id, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.Name, HashPassword(password), u.TenantID, u.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("insert invited user: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE invitations SET accepted = TRUE WHERE id = ?`, inv.ID,
	); err != nil {
		return nil, fmt.Errorf("mark invitation accepted: %w", err)
	}

	if err := tx.QueryRowContext(ctx, `SELECT slug FROM tenants WHERE id = ?`, u.TenantID).Scan(&u.Tenant); err != nil {
		return nil, fmt.Errorf("resolve invited user tenant: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit accept invitation: %w", err)
	}
	return u, nil
}
