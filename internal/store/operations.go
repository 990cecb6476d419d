package store

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/startsoft-dev/lumina-client/internal/domain"
)

// OperationStore defines the interface for atomic operation batches.
type OperationStore interface {
	Execute(ctx context.Context, tenantID string, ops []domain.Operation) ([]map[string]any, error)
}

// TransactionError reports why a batch could not complete. The whole batch
// is rolled back; callers must assume zero side effects.
type TransactionError struct {
	OpIndex int
	Reason  string
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("operation %d failed: %s", e.OpIndex, e.Reason)
}

// SQLiteOperationStore implements OperationStore. All operations of a batch
// run inside one SQLite transaction, in submission order, and $N.fieldPath
// tokens are resolved against the results of earlier operations before each
// step executes.
type SQLiteOperationStore struct {
	db *sql.DB
}

// NewSQLiteOperationStore creates a new SQLiteOperationStore.
func NewSQLiteOperationStore(db *sql.DB) *SQLiteOperationStore {
	return &SQLiteOperationStore{db: db}
}

// Execute runs the batch atomically and returns one flattened result per
// operation, in submission order. Any failure (unknown action, missing
// record, unresolvable reference) rolls the whole transaction back and
// returns a *TransactionError.
func (s *SQLiteOperationStore) Execute(ctx context.Context, tenantID string, ops []domain.Operation) ([]map[string]any, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin batch: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	results := make([]map[string]any, 0, len(ops))
	for i, op := range ops {
		result, err := executeOperation(ctx, tx, tenantID, op, results)
		if err != nil {
			if txErr, ok := err.(*TransactionError); ok {
				txErr.OpIndex = i
				return nil, txErr
			}
			return nil, &TransactionError{OpIndex: i, Reason: err.Error()}
		}
		results = append(results, result)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit batch: %w", err)
	}
	return results, nil
}

func executeOperation(ctx context.Context, tx *sql.Tx, tenantID string, op domain.Operation, results []map[string]any) (map[string]any, error) {
	data, err := resolveMap(op.Data, results)
	if err != nil {
		return nil, err
	}
	idValue, err := resolveValue(op.ID, results)
	if err != nil {
		return nil, err
	}

	switch op.Action {
	case domain.ActionCreate:
		rec, err := insertRecord(ctx, tx, tenantID, op.Model, data)
		if err != nil {
			return nil, err
		}
		if err := appendAudit(ctx, tx, tenantID, op.Model, rec.ID, domain.AuditCreated, data); err != nil {
			return nil, err
		}
		return rec.Flatten(nil), nil

	case domain.ActionUpdate:
		id := fmt.Sprintf("%v", idValue)
		rec, err := updateRecord(ctx, tx, tenantID, op.Model, id, data)
		if err != nil {
			return nil, err
		}
		if err := appendAudit(ctx, tx, tenantID, op.Model, rec.ID, domain.AuditUpdated, data); err != nil {
			return nil, err
		}
		return rec.Flatten(nil), nil

	case domain.ActionDelete:
		id := fmt.Sprintf("%v", idValue)
		rec, err := softDeleteRecord(ctx, tx, tenantID, op.Model, id)
		if err != nil {
			return nil, err
		}
		if err := appendAudit(ctx, tx, tenantID, op.Model, rec.ID, domain.AuditDeleted, nil); err != nil {
			return nil, err
		}
		return rec.Flatten(nil), nil

	default:
		return nil, &TransactionError{Reason: fmt.Sprintf("unknown action %q", op.Action)}
	}
}

// referencePattern matches $<N>.<fieldPath> tokens. The server validates
// references independently of whatever client produced the batch.
var referencePattern = regexp.MustCompile(`^\$(\d+)\.(.+)$`)

// resolveValue substitutes a reference token with the addressed field of an
// earlier result. Non-token values pass through; maps and slices resolve
// recursively.
func resolveValue(v any, results []map[string]any) (any, error) {
	switch vv := v.(type) {
	case string:
		m := referencePattern.FindStringSubmatch(vv)
		if m == nil {
			return v, nil
		}
		index, err := strconv.Atoi(m[1])
		if err != nil {
			return v, nil
		}
		if index >= len(results) {
			return nil, &TransactionError{Reason: fmt.Sprintf("reference %q points past the available results", vv)}
		}
		resolved, err := lookupFieldPath(results[index], m[2])
		if err != nil {
			return nil, &TransactionError{Reason: fmt.Sprintf("reference %q: %s", vv, err)}
		}
		return resolved, nil

	case map[string]any:
		return resolveMap(vv, results)

	case []any:
		out := make([]any, len(vv))
		for i, item := range vv {
			resolved, err := resolveValue(item, results)
			if err != nil {
				return nil, err
			}
			out[i] = resolved
		}
		return out, nil

	default:
		return v, nil
	}
}

func resolveMap(data map[string]any, results []map[string]any) (map[string]any, error) {
	if data == nil {
		return nil, nil
	}
	out := make(map[string]any, len(data))
	for k, v := range data {
		resolved, err := resolveValue(v, results)
		if err != nil {
			return nil, err
		}
		out[k] = resolved
	}
	return out, nil
}

// lookupFieldPath walks a dot-separated path through nested result maps.
func lookupFieldPath(result map[string]any, path string) (any, error) {
	current := any(result)
	for _, seg := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("field %q is not addressable", seg)
		}
		current, ok = m[seg]
		if !ok {
			return nil, fmt.Errorf("field %q does not exist on the referenced result", seg)
		}
	}
	return current, nil
}
