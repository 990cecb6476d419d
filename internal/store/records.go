package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/startsoft-dev/lumina-client/internal/domain"
)

// Listing defaults. Clients override per_page up to the cap.
const (
	defaultPerPage = 15
	maxPerPage     = 100
)

// RecordStore defines the interface for tenant-scoped record persistence.
type RecordStore interface {
	Create(ctx context.Context, tenantID, model string, data map[string]any) (*domain.Record, error)
	Get(ctx context.Context, tenantID, model, id string, includes []string) (*domain.Record, error)
	List(ctx context.Context, tenantID, model string, opts domain.ListOpts) (*domain.RecordPage, error)
	Update(ctx context.Context, tenantID, model, id string, data map[string]any) (*domain.Record, error)
	SoftDelete(ctx context.Context, tenantID, model, id string) (*domain.Record, error)
	Restore(ctx context.Context, tenantID, model, id string) (*domain.Record, error)
	ForceDelete(ctx context.Context, tenantID, model, id string) error
}

// SQLiteRecordStore implements RecordStore backed by SQLite. Record fields
// live in a JSON blob; filters and sorting go through json_extract.
type SQLiteRecordStore struct {
	db *sql.DB
}

// NewSQLiteRecordStore creates a new SQLiteRecordStore.
func NewSQLiteRecordStore(db *sql.DB) *SQLiteRecordStore {
	return &SQLiteRecordStore{db: db}
}

// Create inserts a new record with the given fields.
func (s *SQLiteRecordStore) Create(ctx context.Context, tenantID, model string, data map[string]any) (*domain.Record, error) {
	return insertRecord(ctx, s.db, tenantID, model, data)
}

// Get retrieves a single live record, resolving relationship includes.
func (s *SQLiteRecordStore) Get(ctx context.Context, tenantID, model, id string, includes []string) (*domain.Record, error) {
	rec, err := getRecord(ctx, s.db, tenantID, model, id, false)
	if err != nil {
		return nil, err
	}
	if err := resolveIncludes(ctx, s.db, tenantID, []*domain.Record{rec}, includes); err != nil {
		return nil, err
	}
	return rec, nil
}

// Update merges data into the record's existing fields.
func (s *SQLiteRecordStore) Update(ctx context.Context, tenantID, model, id string, data map[string]any) (*domain.Record, error) {
	return updateRecord(ctx, s.db, tenantID, model, id, data)
}

// SoftDelete marks the record deleted; it stays retrievable via the trashed
// listing until restored or force-deleted.
func (s *SQLiteRecordStore) SoftDelete(ctx context.Context, tenantID, model, id string) (*domain.Record, error) {
	return softDeleteRecord(ctx, s.db, tenantID, model, id)
}

// Restore brings a soft-deleted record back to the live set.
func (s *SQLiteRecordStore) Restore(ctx context.Context, tenantID, model, id string) (*domain.Record, error) {
	return restoreRecord(ctx, s.db, tenantID, model, id)
}

// ForceDelete permanently removes the record, live or trashed.
func (s *SQLiteRecordStore) ForceDelete(ctx context.Context, tenantID, model, id string) error {
	return forceDeleteRecord(ctx, s.db, tenantID, model, id)
}

// List returns a page of records matching opts.
func (s *SQLiteRecordStore) List(ctx context.Context, tenantID, model string, opts domain.ListOpts) (*domain.RecordPage, error) {
	where := []string{"tenant_id = ?", "model = ?"}
	args := []any{tenantID, model}

	if opts.Trashed {
		where = append(where, "deleted_at IS NOT NULL")
	} else {
		where = append(where, "deleted_at IS NULL")
	}

	for _, f := range opts.Filters {
		path, err := jsonPath(f.Field)
		if err != nil {
			return nil, err
		}
		where = append(where, fmt.Sprintf("CAST(json_extract(data, '%s') AS TEXT) = ?", path))
		args = append(args, f.Value)
	}

	if opts.Search != "" {
		where = append(where, `data LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(opts.Search)+"%")
	}

	whereSQL := strings.Join(where, " AND ")

	var total int
	countQuery := "SELECT COUNT(*) FROM records WHERE " + whereSQL
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count records: %w", err)
	}

	orderSQL, err := orderClause(opts.Sort)
	if err != nil {
		return nil, err
	}

	page := opts.Page
	if page < 1 {
		page = 1
	}
	perPage := opts.PerPage
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	query := "SELECT id, data, created_at, updated_at, COALESCE(deleted_at, '') FROM records WHERE " +
		whereSQL + " " + orderSQL + " LIMIT ? OFFSET ?"
	rows, err := s.db.QueryContext(ctx, query, append(args, perPage, (page-1)*perPage)...)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []*domain.Record
	for rows.Next() {
		rec, err := scanRecord(rows, tenantID, model)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}

	if err := resolveIncludes(ctx, s.db, tenantID, records, opts.Includes); err != nil {
		return nil, err
	}

	lastPage := (total + perPage - 1) / perPage
	if lastPage < 1 {
		lastPage = 1
	}

	return &domain.RecordPage{
		Records: records,
		Pagination: domain.Pagination{
			CurrentPage: page,
			LastPage:    lastPage,
			PerPage:     perPage,
			Total:       total,
		},
	}, nil
}

// orderClause renders the ORDER BY for a sort option. Metadata columns sort
// directly; everything else goes through json_extract. The id tie-breaker
// keeps pages stable.
func orderClause(sortOpt string) (string, error) {
	if sortOpt == "" {
		return "ORDER BY created_at ASC, id ASC", nil
	}

	dir := "ASC"
	field := sortOpt
	if strings.HasPrefix(field, "-") {
		dir = "DESC"
		field = field[1:]
	}

	switch field {
	case "id", "created_at", "updated_at":
		return fmt.Sprintf("ORDER BY %s %s, id ASC", field, dir), nil
	}

	path, err := jsonPath(field)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("ORDER BY json_extract(data, '%s') %s, id ASC", path, dir), nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner, tenantID, model string) (*domain.Record, error) {
	rec := &domain.Record{TenantID: tenantID, Model: model}
	var raw string
	if err := row.Scan(&rec.ID, &raw, &rec.CreatedAt, &rec.UpdatedAt, &rec.DeletedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan record: %w", err)
	}
	if err := json.Unmarshal([]byte(raw), &rec.Data); err != nil {
		return nil, fmt.Errorf("decode record %s data: %w", rec.ID, err)
	}
	return rec, nil
}

// insertRecord creates a record against q, which may be a transaction.
func insertRecord(ctx context.Context, q dbtx, tenantID, model string, data map[string]any) (*domain.Record, error) {
	if data == nil {
		data = map[string]any{}
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode record data: %w", err)
	}

	id := uuid.NewString()
	ts := now()
	_, err = q.ExecContext(ctx,
		`INSERT INTO records (id, tenant_id, model, data, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, tenantID, model, string(raw), ts, ts,
	)
	if err != nil {
		return nil, fmt.Errorf("insert record: %w", err)
	}

	return &domain.Record{
		ID:        id,
		TenantID:  tenantID,
		Model:     model,
		Data:      data,
		CreatedAt: ts,
		UpdatedAt: ts,
	}, nil
}

// getRecord fetches one record. includeDeleted widens the lookup to trashed
// records (needed by restore and force-delete).
func getRecord(ctx context.Context, q dbtx, tenantID, model, id string, includeDeleted bool) (*domain.Record, error) {
	query := `SELECT id, data, created_at, updated_at, COALESCE(deleted_at, '') FROM records
		WHERE id = ? AND tenant_id = ? AND model = ?`
	if !includeDeleted {
		query += " AND deleted_at IS NULL"
	}
	return scanRecord(q.QueryRowContext(ctx, query, id, tenantID, model), tenantID, model)
}

// updateRecord merges data into the record's fields.
func updateRecord(ctx context.Context, q dbtx, tenantID, model, id string, data map[string]any) (*domain.Record, error) {
	rec, err := getRecord(ctx, q, tenantID, model, id, false)
	if err != nil {
		return nil, err
	}

	for k, v := range data {
		rec.Data[k] = v
	}
	raw, err := json.Marshal(rec.Data)
	if err != nil {
		return nil, fmt.Errorf("encode record data: %w", err)
	}

	rec.UpdatedAt = now()
	_, err = q.ExecContext(ctx,
		`UPDATE records SET data = ?, updated_at = ? WHERE id = ? AND tenant_id = ? AND model = ?`,
		string(raw), rec.UpdatedAt, id, tenantID, model,
	)
	if err != nil {
		return nil, fmt.Errorf("update record: %w", err)
	}
	return rec, nil
}

func softDeleteRecord(ctx context.Context, q dbtx, tenantID, model, id string) (*domain.Record, error) {
	rec, err := getRecord(ctx, q, tenantID, model, id, false)
	if err != nil {
		return nil, err
	}

	ts := now()
	if _, err := q.ExecContext(ctx,
		`UPDATE records SET deleted_at = ?, updated_at = ? WHERE id = ? AND tenant_id = ? AND model = ?`,
		ts, ts, id, tenantID, model,
	); err != nil {
		return nil, fmt.Errorf("soft delete record: %w", err)
	}
	rec.DeletedAt = ts
	rec.UpdatedAt = ts
	return rec, nil
}

func restoreRecord(ctx context.Context, q dbtx, tenantID, model, id string) (*domain.Record, error) {
	rec, err := getRecord(ctx, q, tenantID, model, id, true)
	if err != nil {
		return nil, err
	}
	if rec.DeletedAt == "" {
		// Already live; restoring is a no-op.
		return rec, nil
	}

	ts := now()
	if _, err := q.ExecContext(ctx,
		`UPDATE records SET deleted_at = NULL, updated_at = ? WHERE id = ? AND tenant_id = ? AND model = ?`,
		ts, id, tenantID, model,
	); err != nil {
		return nil, fmt.Errorf("restore record: %w", err)
	}
	rec.DeletedAt = ""
	rec.UpdatedAt = ts
	return rec, nil
}

func forceDeleteRecord(ctx context.Context, q dbtx, tenantID, model, id string) error {
	res, err := q.ExecContext(ctx,
		`DELETE FROM records WHERE id = ? AND tenant_id = ? AND model = ?`,
		id, tenantID, model,
	)
	if err != nil {
		return fmt.Errorf("force delete record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("force delete record: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// resolveIncludes embeds related records into each record's data under the
// relationship name. "author" reads the author_id field and loads the
// matching record from the pluralized model; dot-separated paths recurse
// into the embedded record.
func resolveIncludes(ctx context.Context, q dbtx, tenantID string, records []*domain.Record, includes []string) error {
	if len(includes) == 0 {
		return nil
	}
	for _, rec := range records {
		for _, path := range includes {
			if err := embedRelation(ctx, q, tenantID, rec.Data, strings.Split(path, ".")); err != nil {
				return err
			}
		}
	}
	return nil
}

func embedRelation(ctx context.Context, q dbtx, tenantID string, data map[string]any, segments []string) error {
	if len(segments) == 0 {
		return nil
	}
	rel := segments[0]

	embedded, ok := data[rel].(map[string]any)
	if !ok {
		refID, ok := data[rel+"_id"].(string)
		if !ok || refID == "" {
			return nil // nothing to embed; includes are best-effort
		}
		related, err := getRecord(ctx, q, tenantID, pluralize(rel), refID, false)
		if err != nil {
			if err == ErrNotFound {
				return nil
			}
			return err
		}
		embedded = related.Flatten(nil)
		data[rel] = embedded
	}

	return embedRelation(ctx, q, tenantID, embedded, segments[1:])
}
