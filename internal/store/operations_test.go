package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/startsoft-dev/lumina-client/internal/domain"
	"github.com/startsoft-dev/lumina-client/internal/store"
)

var _ store.OperationStore = (*store.SQLiteOperationStore)(nil)

func TestOperationsCreateChain(t *testing.T) {
	s, tenantID := setupStore(t)
	ctx := context.Background()

	results, err := s.Operations.Execute(ctx, tenantID, []domain.Operation{
		{Action: domain.ActionCreate, Model: "authors", Data: map[string]any{"name": "Ada"}},
		{Action: domain.ActionCreate, Model: "posts", Data: map[string]any{
			"title":     "Hello",
			"author_id": "$0.id",
		}},
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}

	authorID, _ := results[0]["id"].(string)
	if authorID == "" {
		t.Fatal("expected author id in first result")
	}
	if results[1]["author_id"] != authorID {
		t.Errorf("author_id = %v, want %v", results[1]["author_id"], authorID)
	}

	// The chained value is persisted, not just echoed.
	postID, _ := results[1]["id"].(string)
	rec, err := s.Records.Get(ctx, tenantID, "posts", postID, nil)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.Data["author_id"] != authorID {
		t.Errorf("persisted author_id = %v, want %v", rec.Data["author_id"], authorID)
	}
}

func TestOperationsUpdateAndDeleteByReference(t *testing.T) {
	s, tenantID := setupStore(t)
	ctx := context.Background()

	results, err := s.Operations.Execute(ctx, tenantID, []domain.Operation{
		{Action: domain.ActionCreate, Model: "posts", Data: map[string]any{"title": "v1"}},
		{Action: domain.ActionUpdate, Model: "posts", ID: "$0.id", Data: map[string]any{"title": "v2"}},
		{Action: domain.ActionDelete, Model: "posts", ID: "$0.id"},
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if results[1]["title"] != "v2" {
		t.Errorf("updated title = %v, want v2", results[1]["title"])
	}
	if results[2]["deleted_at"] == nil || results[2]["deleted_at"] == "" {
		t.Error("expected delete result to carry deleted_at")
	}

	id, _ := results[0]["id"].(string)
	if _, err := s.Records.Get(ctx, tenantID, "posts", id, nil); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected record soft deleted, got %v", err)
	}
}

func TestOperationsRollbackOnFailure(t *testing.T) {
	s, tenantID := setupStore(t)
	ctx := context.Background()

	_, err := s.Operations.Execute(ctx, tenantID, []domain.Operation{
		{Action: domain.ActionCreate, Model: "posts", Data: map[string]any{"title": "x"}},
		{Action: domain.ActionUpdate, Model: "posts", ID: "missing", Data: map[string]any{"title": "y"}},
	})
	var txErr *store.TransactionError
	if !errors.As(err, &txErr) {
		t.Fatalf("expected TransactionError, got %v", err)
	}
	if txErr.OpIndex != 1 {
		t.Errorf("OpIndex = %d, want 1", txErr.OpIndex)
	}

	// The first create must have been rolled back.
	page, err := s.Records.List(ctx, tenantID, "posts", domain.ListOpts{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Records) != 0 {
		t.Errorf("records after rollback = %d, want 0", len(page.Records))
	}
}

func TestOperationsUnresolvableReference(t *testing.T) {
	s, tenantID := setupStore(t)
	ctx := context.Background()

	_, err := s.Operations.Execute(ctx, tenantID, []domain.Operation{
		{Action: domain.ActionCreate, Model: "posts", Data: map[string]any{"title": "x"}},
		{Action: domain.ActionCreate, Model: "comments", Data: map[string]any{"post_id": "$0.nope"}},
	})
	var txErr *store.TransactionError
	if !errors.As(err, &txErr) {
		t.Fatalf("expected TransactionError, got %v", err)
	}
	if txErr.OpIndex != 1 {
		t.Errorf("OpIndex = %d, want 1", txErr.OpIndex)
	}
}

func TestOperationsNestedReferenceValues(t *testing.T) {
	s, tenantID := setupStore(t)
	ctx := context.Background()

	results, err := s.Operations.Execute(ctx, tenantID, []domain.Operation{
		{Action: domain.ActionCreate, Model: "authors", Data: map[string]any{"name": "Ada"}},
		{Action: domain.ActionCreate, Model: "posts", Data: map[string]any{
			"meta": map[string]any{"author_id": "$0.id"},
			"tags": []any{"$0.name", "plain"},
		}},
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	meta, ok := results[1]["meta"].(map[string]any)
	if !ok {
		t.Fatalf("expected meta map, got %T", results[1]["meta"])
	}
	if meta["author_id"] != results[0]["id"] {
		t.Errorf("nested author_id = %v, want %v", meta["author_id"], results[0]["id"])
	}
	tags, ok := results[1]["tags"].([]any)
	if !ok || len(tags) != 2 {
		t.Fatalf("expected two tags, got %v", results[1]["tags"])
	}
	if tags[0] != "Ada" || tags[1] != "plain" {
		t.Errorf("tags = %v, want [Ada plain]", tags)
	}
}

func TestOperationsWriteAuditEntries(t *testing.T) {
	s, tenantID := setupStore(t)
	ctx := context.Background()

	results, err := s.Operations.Execute(ctx, tenantID, []domain.Operation{
		{Action: domain.ActionCreate, Model: "posts", Data: map[string]any{"title": "x"}},
		{Action: domain.ActionUpdate, Model: "posts", ID: "$0.id", Data: map[string]any{"title": "y"}},
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	id, _ := results[0]["id"].(string)
	trail, err := s.Audits.List(ctx, tenantID, "posts", id, 1, 15)
	if err != nil {
		t.Fatalf("list audits: %v", err)
	}
	if len(trail.Entries) != 2 {
		t.Fatalf("audit entries = %d, want 2", len(trail.Entries))
	}
	// Newest first.
	if trail.Entries[0].Action != domain.AuditUpdated || trail.Entries[1].Action != domain.AuditCreated {
		t.Errorf("audit order = %s, %s", trail.Entries[0].Action, trail.Entries[1].Action)
	}
}
