package seed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/startsoft-dev/lumina-client/internal/store"
)

// Development fixtures. The acme tenant has a user and sample content; the
// globex tenant has an open invitation.
const (
	AcmeSlug        = "acme"
	GlobexSlug      = "globex"
	UserEmail       = "ada@acme.test"
	UserPassword    = "secret"
	InvitationToken = "globex-invite-token"
)

// Seed inserts the standard development fixtures. It is idempotent; rows
// that already exist are left untouched.
func Seed(ctx context.Context, db *sql.DB) error {
	s := store.New(db)

	acmeID, err := ensureTenant(ctx, s, AcmeSlug, "Acme Inc")
	if err != nil {
		return err
	}
	globexID, err := ensureTenant(ctx, s, GlobexSlug, "Globex Corp")
	if err != nil {
		return err
	}

	if err := ensureUser(ctx, db, s, UserEmail, "Ada Lovelace", UserPassword, acmeID); err != nil {
		return err
	}
	if err := ensureInvitation(ctx, db, InvitationToken, "new-hire@globex.test", globexID); err != nil {
		return err
	}
	return sampleRecords(ctx, db, s, acmeID)
}

func ensureTenant(ctx context.Context, s *store.Store, slug, name string) (string, error) {
	tenant, err := s.Tenants.Resolve(ctx, slug)
	if err == nil {
		return tenant.ID, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return "", fmt.Errorf("resolve tenant %s: %w", slug, err)
	}
	tenant, err = s.Tenants.Create(ctx, slug, name)
	if err != nil {
		return "", fmt.Errorf("seed tenant %s: %w", slug, err)
	}
	return tenant.ID, nil
}

func ensureUser(ctx context.Context, db *sql.DB, s *store.Store, email, name, password, tenantID string) error {
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE email = ?`, email).Scan(&n); err != nil {
		return fmt.Errorf("check user %s: %w", email, err)
	}
	if n > 0 {
		return nil
	}
	if _, err := s.Users.Create(ctx, email, name, password, tenantID); err != nil {
		return fmt.Errorf("seed user %s: %w", email, err)
	}
	return nil
}

func ensureInvitation(ctx context.Context, db *sql.DB, token, email, tenantID string) error {
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM invitations WHERE token = ?`, token).Scan(&n); err != nil {
		return fmt.Errorf("check invitation: %w", err)
	}
	if n > 0 {
		return nil
	}
	if _, err := db.ExecContext(ctx,
		`INSERT INTO invitations (id, token, email, tenant_id, created_at) VALUES (?, ?, ?, ?, datetime('now'))`,
		"seed-invitation-1", token, email, tenantID,
	); err != nil {
		return fmt.Errorf("seed invitation: %w", err)
	}
	return nil
}

// sampleRecords gives the acme tenant a small content graph to poke at:
// one author with two posts, one of them soft-deleted.
func sampleRecords(ctx context.Context, db *sql.DB, s *store.Store, tenantID string) error {
	var n int
	if err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM records WHERE tenant_id = ? AND model = 'authors'`, tenantID,
	).Scan(&n); err != nil {
		return fmt.Errorf("check sample records: %w", err)
	}
	if n > 0 {
		return nil
	}

	author, err := s.Records.Create(ctx, tenantID, "authors", map[string]any{"name": "Ada Lovelace"})
	if err != nil {
		return fmt.Errorf("seed author: %w", err)
	}

	if _, err := s.Records.Create(ctx, tenantID, "posts", map[string]any{
		"title":     "Welcome",
		"status":    "published",
		"author_id": author.ID,
	}); err != nil {
		return fmt.Errorf("seed post: %w", err)
	}

	draft, err := s.Records.Create(ctx, tenantID, "posts", map[string]any{
		"title":     "Abandoned draft",
		"status":    "draft",
		"author_id": author.ID,
	})
	if err != nil {
		return fmt.Errorf("seed draft: %w", err)
	}
	if _, err := s.Records.SoftDelete(ctx, tenantID, "posts", draft.ID); err != nil {
		return fmt.Errorf("trash seed draft: %w", err)
	}
	return nil
}
