package conformance_test

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/startsoft-dev/lumina-client/internal/seed"
	"github.com/startsoft-dev/lumina-client/lumina"
)

const tenant = seed.AcmeSlug

// resetServer returns the server to its seeded state.
func resetServer(t *testing.T) {
	t.Helper()
	resp, err := http.Post(serverURL+"/_lumina/reset", "application/json", nil)
	if err != nil {
		t.Fatalf("reset server: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		t.Fatalf("reset server failed: status=%d body=%s", resp.StatusCode, string(b))
	}
}

// newClient resets the server and returns a client logged in as the seeded
// acme user.
func newClient(t *testing.T) *lumina.Client {
	t.Helper()
	resetServer(t)

	client, err := lumina.New(lumina.Config{BaseURL: serverURL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.Login(context.Background(), seed.UserEmail, seed.UserPassword); err != nil {
		t.Fatalf("login: %v", err)
	}
	return client
}

// mustCreate creates a record through the client and fails the test on error.
func mustCreate(t *testing.T, client *lumina.Client, model string, data lumina.Record) lumina.Record {
	t.Helper()
	rec, err := client.Model(model).Create(context.Background(), tenant, data)
	if err != nil {
		t.Fatalf("create %s: %v", model, err)
	}
	return rec
}

// recordID extracts the id field of a record.
func recordID(t *testing.T, rec lumina.Record) string {
	t.Helper()
	id, ok := rec["id"].(string)
	if !ok || id == "" {
		t.Fatalf("expected record id, got %v", rec["id"])
	}
	return id
}
