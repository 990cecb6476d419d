package auth_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"

	"github.com/startsoft-dev/lumina-client/internal/api"
	"github.com/startsoft-dev/lumina-client/internal/api/auth"
	"github.com/startsoft-dev/lumina-client/internal/database"
	"github.com/startsoft-dev/lumina-client/internal/store"
	"github.com/startsoft-dev/lumina-client/internal/testhelpers"
)

const testSecret = "auth-test-secret"

func setupServer(t *testing.T) (*httptest.Server, *store.Store) {
	t.Helper()
	db := testhelpers.NewTestDB(t)
	ctx := context.Background()

	if err := database.Migrate(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	s := store.New(db)
	tenant, err := s.Tenants.Create(ctx, "acme", "Acme Inc")
	if err != nil {
		t.Fatalf("create tenant: %v", err)
	}
	if _, err := s.Users.Create(ctx, "ada@acme.test", "Ada", "secret", tenant.ID); err != nil {
		t.Fatalf("create user: %v", err)
	}
	_, err = s.DB.ExecContext(ctx,
		`INSERT INTO invitations (id, token, email, tenant_id, created_at) VALUES (?, ?, ?, ?, ?)`,
		"inv-1", "tok-123", "grace@acme.test", tenant.ID, "2026-01-01T00:00:00.000Z",
	)
	if err != nil {
		t.Fatalf("insert invitation: %v", err)
	}

	mux := http.NewServeMux()
	auth.RegisterRoutes(mux, s, testSecret)

	srv := httptest.NewServer(api.Chain(mux, api.RequestID()))
	t.Cleanup(srv.Close)
	return srv, s
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", bytes.NewReader([]byte(body)))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	return resp
}

func decodeSession(t *testing.T, resp *http.Response) (string, map[string]any) {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	var body struct {
		Token string         `json:"token"`
		User  map[string]any `json:"user"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	return body.Token, body.User
}

func TestLogin(t *testing.T) {
	srv, _ := setupServer(t)

	resp := post(t, srv.URL+"/login", `{"email":"ada@acme.test","password":"secret"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	token, user := decodeSession(t, resp)
	if token == "" {
		t.Fatal("expected session token")
	}
	if user["email"] != "ada@acme.test" || user["tenant"] != "acme" {
		t.Errorf("user = %v", user)
	}

	// The token verifies against the configured secret and carries the
	// tenant claim.
	parsed, err := jwt.Parse(token, func(tk *jwt.Token) (any, error) {
		return []byte(testSecret), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("parse token: %v", err)
	}
	claims := parsed.Claims.(jwt.MapClaims)
	if claims["tenant"] != "acme" {
		t.Errorf("tenant claim = %v", claims["tenant"])
	}
}

func TestLoginWrongPassword(t *testing.T) {
	srv, _ := setupServer(t)

	resp := post(t, srv.URL+"/login", `{"email":"ada@acme.test","password":"wrong"}`)
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}

	var apiErr api.Error
	if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if apiErr.Category != api.CategoryUnauthorized {
		t.Errorf("category = %q", apiErr.Category)
	}
}

func TestLoginMissingFields(t *testing.T) {
	srv, _ := setupServer(t)

	resp := post(t, srv.URL+"/login", `{"email":"ada@acme.test"}`)
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestAcceptInvitation(t *testing.T) {
	srv, s := setupServer(t)

	resp := post(t, srv.URL+"/invitations/accept", `{"token":"tok-123","name":"Grace","password":"hunter2"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	token, user := decodeSession(t, resp)
	if token == "" {
		t.Fatal("expected session token")
	}
	if user["email"] != "grace@acme.test" {
		t.Errorf("user = %v", user)
	}

	// The invited user can authenticate afterwards.
	if _, err := s.Users.Authenticate(context.Background(), "grace@acme.test", "hunter2"); err != nil {
		t.Errorf("authenticate invited user: %v", err)
	}

	// Redeeming twice fails.
	again := post(t, srv.URL+"/invitations/accept", `{"token":"tok-123","name":"Grace","password":"hunter2"}`)
	defer func() { _ = again.Body.Close() }()
	if again.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 on second redeem, got %d", again.StatusCode)
	}
}

func TestAcceptInvitationUnknownToken(t *testing.T) {
	srv, _ := setupServer(t)

	resp := post(t, srv.URL+"/invitations/accept", `{"token":"nope","name":"X","password":"y"}`)
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}
